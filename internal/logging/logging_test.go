package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewWritesJSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "datviewer.log")
	log, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.Info("done rendering traces")
	log.Debug("hidden at info level")
	_ = log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d log lines, want 1: %q", len(lines), b)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["msg"] != "done rendering traces" {
		t.Fatalf("msg = %v", entry["msg"])
	}
}

func TestTraceFlagEnablesDebug(t *testing.T) {
	SetTraceLogEnabled(true)
	defer SetTraceLogEnabled(false)
	log, err := New(Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if ce := log.Check(zapcore.DebugLevel, "debug"); ce == nil {
		t.Fatal("debug level not enabled with trace flag")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
