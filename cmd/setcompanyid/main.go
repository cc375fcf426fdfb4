package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/terraincognita07/kgjournal/internal/logging"
	"github.com/terraincognita07/kgjournal/internal/trigger"
)

func main() {
	logger, err := logging.New(os.Stdout, os.Getenv("LOG_FORMAT"), os.Getenv("LOG_LEVEL"))
	if err != nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
		logger.Warn("invalid logging settings, using defaults", "error", err)
	}
	lambda.Start(trigger.SetCompanyID(logger))
}
