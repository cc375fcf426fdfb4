package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (fake *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	fake.input = params
	body, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	fake.body = body
	if fake.err != nil {
		return nil, fake.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestFileSinkWritesUnderDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	sink := NewFileSink(dir)

	location, err := sink.Put(context.Background(), "../escape.json", "application/json", []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if want := filepath.Join(dir, "escape.json"); location != want {
		t.Fatalf("location = %q, want %q", location, want)
	}

	written, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(written) != `{"ok":true}` {
		t.Fatalf("unexpected file content %q", written)
	}
}

func TestS3SinkUploadsWithPrefix(t *testing.T) {
	fake := &fakeS3{}
	sink, err := NewS3Sink(fake, S3Options{Bucket: "journal-exports", Prefix: "/nightly/"})
	if err != nil {
		t.Fatalf("NewS3Sink() unexpected error: %v", err)
	}

	location, err := sink.Put(context.Background(), "kgjournal-export-u1.json", "application/json", []byte("{}"))
	if err != nil {
		t.Fatalf("Put() unexpected error: %v", err)
	}
	if location != "s3://journal-exports/nightly/kgjournal-export-u1.json" {
		t.Fatalf("unexpected location %q", location)
	}
	if got := aws.ToString(fake.input.Bucket); got != "journal-exports" {
		t.Fatalf("unexpected bucket %q", got)
	}
	if got := aws.ToString(fake.input.Key); got != "nightly/kgjournal-export-u1.json" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := aws.ToString(fake.input.ContentType); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if !bytes.Equal(fake.body, []byte("{}")) {
		t.Fatalf("unexpected body %q", fake.body)
	}
}

func TestS3SinkWrapsUploadFailure(t *testing.T) {
	uploadErr := errors.New("access denied")
	sink, err := NewS3Sink(&fakeS3{err: uploadErr}, S3Options{Bucket: "journal-exports"})
	if err != nil {
		t.Fatalf("NewS3Sink() unexpected error: %v", err)
	}

	if _, err := sink.Put(context.Background(), "export.json", "application/json", []byte("{}")); !errors.Is(err, uploadErr) {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}

func TestNewS3SinkRequiresBucket(t *testing.T) {
	if _, err := NewS3Sink(&fakeS3{}, S3Options{}); err == nil {
		t.Fatal("expected NewS3Sink() to require a bucket")
	}
}

func TestNewS3ClientHonoursEndpoint(t *testing.T) {
	client := NewS3Client(aws.Config{Region: "us-east-2"}, S3Options{Endpoint: "http://localhost:9000"})
	options := client.Options()
	if !options.UsePathStyle {
		t.Fatal("expected path-style addressing for a custom endpoint")
	}
	if got := aws.ToString(options.BaseEndpoint); got != "http://localhost:9000" {
		t.Fatalf("unexpected base endpoint %q", got)
	}
}
