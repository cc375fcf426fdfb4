package main

import (
	"fmt"
	"os"

	"github.com/terraincognita07/kgjournal/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "kgjournal: %v\n", err)
		os.Exit(1)
	}
}
