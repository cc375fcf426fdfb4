// Package export provides the destinations an export can be written to.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// FileSink writes exports under a local directory.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) *FileSink {
	return &FileSink{dir: dir}
}

func (sink *FileSink) Put(_ context.Context, name string, _ string, body []byte) (string, error) {
	if err := os.MkdirAll(sink.dir, 0o750); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	target := filepath.Join(sink.dir, filepath.Base(name))
	if err := os.WriteFile(target, body, 0o600); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return target, nil
}

type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Options struct {
	Bucket   string
	Prefix   string
	Endpoint string
}

// S3Sink uploads exports to a bucket, optionally under a key prefix.
type S3Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewS3Sink(client PutObjectAPI, options S3Options) (*S3Sink, error) {
	if strings.TrimSpace(options.Bucket) == "" {
		return nil, fmt.Errorf("S3 export bucket is required")
	}
	return &S3Sink{
		client: client,
		bucket: options.Bucket,
		prefix: strings.Trim(options.Prefix, "/"),
	}, nil
}

// NewS3Client builds a client; a custom endpoint switches to path-style
// addressing for S3-compatible stores such as MinIO.
func NewS3Client(cfg aws.Config, options S3Options) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if options.Endpoint != "" {
			o.BaseEndpoint = aws.String(options.Endpoint)
			o.UsePathStyle = true
		}
	})
}

func (sink *S3Sink) Put(ctx context.Context, name string, contentType string, body []byte) (string, error) {
	key := path.Base(name)
	if sink.prefix != "" {
		key = sink.prefix + "/" + key
	}
	_, err := sink.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(sink.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return "", fmt.Errorf("upload export to s3://%s/%s: %w", sink.bucket, key, err)
	}
	return fmt.Sprintf("s3://%s/%s", sink.bucket, key), nil
}
