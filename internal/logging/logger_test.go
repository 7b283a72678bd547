package logging_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audiovert/internal/config"
	"audiovert/internal/logging"
)

func newFileLogger(t *testing.T) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audiovert.log")
	return path, func() string {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(data)
	}
}

func TestConsoleLoggerFormatsComponentAndFields(t *testing.T) {
	path, read := newFileLogger(t)
	logger, closeFn, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{path}, RunID: "run-1"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeFn() //nolint:errcheck

	logging.NewComponentLogger(logger, "planner").Info("planned task",
		logging.String(logging.FieldPath, "a b.flac"),
		logging.Int(logging.FieldTask, 3),
	)
	logger.Debug("hidden")

	content := read()
	for _, want := range []string{"INFO planner: planned task", `path="a b.flac"`, "task=3", "run_id=run-1"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
	if strings.Contains(content, "hidden") {
		t.Fatalf("debug record leaked at info level: %q", content)
	}
	if strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information at info level, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	path, read := newFileLogger(t)
	logger, closeFn, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeFn() //nolint:errcheck

	logger.Debug("message with caller")
	if content := read(); !strings.Contains(content, "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestJSONLoggerEmitsStructuredRecords(t *testing.T) {
	path, read := newFileLogger(t)
	logger, closeFn, err := logging.New(logging.Options{Format: "json", Level: "warn", OutputPaths: []string{path}, RunID: "abc"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closeFn() //nolint:errcheck

	logger.Warn("encode failed", logging.Error(errors.New("boom")))

	var record map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record["level"] != "warn" || record["msg"] != "encode failed" || record["error"] != "boom" || record["run_id"] != "abc" {
		t.Fatalf("unexpected record %v", record)
	}
	if _, ok := record["ts"]; !ok {
		t.Fatalf("expected ts key in %v", record)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "info"
	cfg.Logging.File = filepath.Join(t.TempDir(), "logs", "audiovert.log")

	logger, closeFn, err := logging.NewFromConfig(&cfg, "run")
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello")
	if err := closeFn(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(cfg.Logging.File)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected message in file, got %q", data)
	}
}

func TestParseLevel(t *testing.T) {
	if logging.ParseLevel("debug").String() != "DEBUG" {
		t.Fatal("debug")
	}
	if logging.ParseLevel("bogus").String() != "WARN" {
		t.Fatal("fallback should be warn")
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "x")
	logger.Error("discarded")
}
