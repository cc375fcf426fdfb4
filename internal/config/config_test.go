package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func mustLoad(t *testing.T, path string) Config {
	t.Helper()
	cfg, err := Load(New(), path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	cfg := mustLoad(t, "")

	if cfg.Port != "8080" || cfg.DBPath != "data/kgjournal.db" {
		t.Fatalf("unexpected port/db path %q %q", cfg.Port, cfg.DBPath)
	}
	if cfg.TriggerTimeout != 3*time.Second || cfg.TokenTTL != time.Hour {
		t.Fatalf("unexpected durations trigger=%s ttl=%s", cfg.TriggerTimeout, cfg.TokenTTL)
	}
	if !cfg.UsesDefaultSecret() {
		t.Fatal("expected the placeholder secret by default")
	}
	if cfg.Cognito.Enabled() {
		t.Fatal("expected Cognito to be disabled by default")
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("unexpected location %v", cfg.Location())
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("KGJOURNAL_PORT", "9090")
	t.Setenv("KGJOURNAL_TRIGGER_TIMEOUT", "750ms")
	t.Setenv("KGJOURNAL_COOKIE_SECURE", "true")
	t.Setenv("KGJOURNAL_EXPORT_S3_BUCKET", "journal-exports")
	t.Setenv("KGJOURNAL_COGNITO_USER_POOL_ID", "eu-west-1_abc")

	cfg := mustLoad(t, "")

	if cfg.Port != "9090" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.TriggerTimeout != 750*time.Millisecond {
		t.Fatalf("unexpected trigger timeout %s", cfg.TriggerTimeout)
	}
	if !cfg.CookieSecure {
		t.Fatal("expected secure cookies")
	}
	if cfg.ExportS3.Bucket != "journal-exports" {
		t.Fatalf("unexpected bucket %q", cfg.ExportS3.Bucket)
	}
	if !cfg.Cognito.Enabled() {
		t.Fatal("expected Cognito to be enabled")
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kgjournal.yaml")
	content := []byte("port: \"7000\"\nsecret_key: from-file\ncognito:\n  region: eu-central-1\naws:\n  region: us-east-1\n")
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := mustLoad(t, path)

	if cfg.Port != "7000" {
		t.Fatalf("unexpected port %q", cfg.Port)
	}
	if cfg.UsesDefaultSecret() {
		t.Fatal("expected the secret from the file")
	}
	if got := cfg.CognitoAWS().Region; got != "eu-central-1" {
		t.Fatalf("unexpected cognito region %q", got)
	}
	if cfg.AWS.Region != "us-east-1" {
		t.Fatalf("unexpected aws region %q", cfg.AWS.Region)
	}
}

func TestLoadRejectsMissingConfigFile(t *testing.T) {
	if _, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero trigger timeout", key: "KGJOURNAL_TRIGGER_TIMEOUT", value: "0s"},
		{name: "unknown timezone", key: "KGJOURNAL_TZ", value: "Mars/Olympus"},
		{name: "blank secret", key: "KGJOURNAL_SECRET_KEY", value: "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(New(), ""); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
