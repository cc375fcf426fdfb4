package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var errEmptyPassword = errors.New("password is empty")

// readPassword prompts on out and reads one line from in. Echo is turned off
// when in is a terminal.
func readPassword(in io.Reader, out io.Writer, prompt string) (string, error) {
	if in == nil {
		return "", errors.New("stdin unavailable")
	}
	fmt.Fprint(out, prompt)

	if file, ok := in.(*os.File); ok {
		restore, err := disableEcho(file)
		if err == nil {
			defer func() {
				restore()
				fmt.Fprintln(out)
			}()
		}
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	password := strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(password) == "" {
		return "", errEmptyPassword
	}
	return password, nil
}
