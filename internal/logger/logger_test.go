package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriterFormats(t *testing.T) {
	var text bytes.Buffer
	NewWithWriter(&text, "dev", "info").Info("hello", slog.String("k", "v"))
	if !strings.Contains(text.String(), "msg=hello") || !strings.Contains(text.String(), "k=v") {
		t.Fatalf("expected text output, got %q", text.String())
	}

	var js bytes.Buffer
	NewWithWriter(&js, "prod", "info").Info("hello", slog.String("k", "v"))
	var entry map[string]any
	if err := json.Unmarshal(js.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", js.String(), err)
	}
	if entry["msg"] != "hello" || entry["k"] != "v" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewWithWriterLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "prod", "warn")
	log.Info("dropped")
	log.Warn("kept")

	if strings.Contains(buf.String(), "dropped") || !strings.Contains(buf.String(), "kept") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
