package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewJSONLoggerHonoursLevel(t *testing.T) {
	var out bytes.Buffer
	logger, err := New(&out, "json", "warn")
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	logger.Info("hidden")
	logger.Warn("shown", "user", "u1")

	var entry map[string]any
	if err := json.Unmarshal(out.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON entry, got %q: %v", out.String(), err)
	}
	if entry["msg"] != "shown" || entry["user"] != "u1" {
		t.Fatalf("unexpected entry %#v", entry)
	}
}

func TestNewRejectsUnknownSettings(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "xml", "info"); err == nil {
		t.Fatal("expected unknown format to be rejected")
	}
	if _, err := New(&bytes.Buffer{}, "text", "loud"); err == nil {
		t.Fatal("expected unknown level to be rejected")
	}
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel(" DEBUG ")
	if err != nil {
		t.Fatalf("ParseLevel() unexpected error: %v", err)
	}
	if level != slog.LevelDebug {
		t.Fatalf("ParseLevel() = %v, want debug", level)
	}
}
