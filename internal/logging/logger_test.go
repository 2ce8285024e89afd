package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "spool.log")
	logger, err := New(Options{Level: "info", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("hello", String("k", "v"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &record); err != nil {
		t.Fatalf("log line not json: %v (%q)", err, data)
	}
	if record["msg"] != "hello" || record["k"] != "v" {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestConsoleHandlerFormatsComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	NewComponentLogger(logger, "framecache").Info("stored frame", String("size", "4096"))

	line := buf.String()
	if !strings.Contains(line, "[framecache]") {
		t.Fatalf("component missing from %q", line)
	}
	if !strings.Contains(line, "stored frame") || !strings.Contains(line, "size=4096") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info leaked past warn level: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn suppressed: %q", out)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := NewNop()
	// Must not panic and must report disabled at every level.
	logger.Error("dropped")
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("nop logger should be disabled")
	}
}
