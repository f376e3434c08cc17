package logging

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	log.Debug("test_message_from_logging_test")
	_ = log.Sync()

	f, err := os.Open(filepath.Join(dir, FileName))
	if err != nil {
		t.Fatalf("log file missing: %v", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		t.Fatalf("log file is empty")
	}
	var line map[string]any
	if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
		t.Fatalf("log line is not json: %v", err)
	}
	if line["msg"] != "test_message_from_logging_test" || line["level"] != "debug" {
		t.Fatalf("unexpected log line: %v", line)
	}
	if _, ok := line["ts"]; !ok {
		t.Fatalf("want ts key, got %v", line)
	}
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	log, err := NewLogger(t.TempDir(), "chatty")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if log.Core().Enabled(zapcore.DebugLevel) {
		t.Fatalf("debug must be disabled at the fallback level")
	}
	if !log.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info must be enabled")
	}
}
