package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pitchctl/internal/config"
	"pitchctl/internal/logging"
	"pitchctl/internal/services"
)

func TestNewFromConfigWritesConsoleAndFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	var stderr bytes.Buffer
	logger, closer, err := logging.NewFromConfig(&cfg, &stderr)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	defer closer.Close()

	logger.Debug("debug only in file")
	logger.Info("visible everywhere", logging.String("pitch_id", "p1"))

	if strings.Contains(stderr.String(), "debug only in file") {
		t.Fatalf("expected debug record to be filtered from console, got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "visible everywhere") || !strings.Contains(stderr.String(), "pitch_id=p1") {
		t.Fatalf("expected info record on console, got %q", stderr.String())
	}

	content, err := os.ReadFile(cfg.LogFilePath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected both records in log file, got %d lines: %q", len(lines), content)
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &record); err != nil {
		t.Fatalf("log file line is not JSON: %v", err)
	}
	if record["msg"] != "debug only in file" || record["level"] != "debug" {
		t.Fatalf("unexpected file record: %v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")
	if strings.Contains(buf.String(), ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", buf.String())
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")
	if !strings.Contains(buf.String(), "logger_test.go:") {
		t.Fatalf("expected caller information in debug logs, got %q", buf.String())
	}
}

func TestConsoleLoggerRendersComponentPrefix(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "gateway").Warn("slow response", logging.String("path", "/p1/transcript"))
	out := buf.String()
	if !strings.Contains(out, "WARN gateway: slow response") {
		t.Fatalf("expected component prefix, got %q", out)
	}
	if strings.Contains(out, "component=") {
		t.Fatalf("component should not be repeated as a field, got %q", out)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithPitchID(context.Background(), "p1")
	ctx = services.WithPipeline(ctx, "synthesis")
	ctx = services.WithRequestID(ctx, "req-9")
	logging.WithContext(ctx, logger).Info("polled")

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record[logging.FieldPitchID] != "p1" || record[logging.FieldPipeline] != "synthesis" || record[logging.FieldCorrelationID] != "req-9" {
		t.Fatalf("missing context fields: %v", record)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(logger, "document list unavailable", "documents_no_data",
		logging.String(logging.FieldImpact, "cached document set kept"))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record[logging.FieldEventType] != "documents_no_data" {
		t.Fatalf("expected event type, got %v", record)
	}
	if record[logging.FieldImpact] != "cached document set kept" {
		t.Fatalf("expected caller impact preserved, got %v", record)
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error hint, got %v", record)
	}
}

func TestErrorWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger, _, err := logging.New(logging.Options{Format: "json", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.ErrorWithContext(logger, "session not saved", "session_save_failed",
		logging.Error(errors.New("database is locked")))

	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record["level"] != "error" {
		t.Fatalf("expected error level, got %v", record["level"])
	}
	if record[logging.FieldEventType] != "session_save_failed" {
		t.Fatalf("expected event type, got %v", record)
	}
	if record[logging.FieldErrorHint] != "check logs for details" {
		t.Fatalf("expected default error hint, got %v", record)
	}

	buf.Reset()
	logging.ErrorWithContext(logger, "polling stopped", "poll_stopped",
		logging.String(logging.FieldErrorHint, "raise --timeout"))
	record = nil
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &record); err != nil {
		t.Fatalf("decode json record: %v", err)
	}
	if record[logging.FieldErrorHint] != "raise --timeout" {
		t.Fatalf("expected caller hint preserved, got %v", record)
	}
}

func TestNewCreatesLogDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pitchctl.log")
	_, closer, err := logging.New(logging.Options{Writer: &bytes.Buffer{}, FilePath: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	defer closer.Close()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected log file to exist: %v", err)
	}
}
