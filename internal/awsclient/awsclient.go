// Package awsclient loads the shared AWS configuration for the S3 export sink
// and the Cognito directory.
package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

// Settings left empty fall back to the SDK's default chain (environment,
// shared profile, instance role).
type Settings struct {
	Region          string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

func Load(ctx context.Context, settings Settings) (aws.Config, error) {
	options := make([]func(*config.LoadOptions) error, 0, 3)
	if settings.Region != "" {
		options = append(options, config.WithRegion(settings.Region))
	}
	if settings.Profile != "" {
		options = append(options, config.WithSharedConfigProfile(settings.Profile))
	}
	if settings.AccessKeyID != "" || settings.SecretAccessKey != "" {
		if settings.AccessKeyID == "" || settings.SecretAccessKey == "" {
			return aws.Config{}, fmt.Errorf("static AWS credentials need both an access key id and a secret")
		}
		options = append(options, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			settings.AccessKeyID,
			settings.SecretAccessKey,
			settings.SessionToken,
		)))
	}

	cfg, err := config.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	if cfg.Region == "" {
		return aws.Config{}, fmt.Errorf("AWS region is not configured")
	}
	return cfg, nil
}
