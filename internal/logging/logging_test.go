package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewRespectsCustomWriter(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Writer: &buf})
	logger.Info("custom writer")

	if !strings.Contains(buf.String(), "msg=\"custom writer\"") {
		t.Fatalf("expected text output in custom writer, got %q", buf.String())
	}
}

func TestNewJSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Writer: &buf, Format: "JSON"})
	logger.Info("serving", "url", "http://localhost:8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected JSON output, got %q: %v", buf.String(), err)
	}
	if entry["url"] != "http://localhost:8080" {
		t.Fatalf("url = %v, want http://localhost:8080", entry["url"])
	}
}

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tc := range testCases {
		if got := ParseLevel(tc.input); got != tc.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Writer: &buf, Level: "warn"})
	logger.Info("hidden")
	logger.Warn("shown")

	if strings.Contains(buf.String(), "hidden") {
		t.Errorf("info record should be filtered at warn level: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn record missing: %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	logger := WithComponent(New(Config{Writer: &buf}), "registry")
	logger.Info("hello")

	if !strings.Contains(buf.String(), "component=registry") {
		t.Fatalf("expected component attribute, got %q", buf.String())
	}
	if WithComponent(nil, "x") == nil {
		t.Fatal("WithComponent(nil) should fall back to the default logger")
	}
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("Discard logger should not enable error records")
	}
}
