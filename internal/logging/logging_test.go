package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewWithoutPathIsNop(t *testing.T) {
	logger, err := New("  ", false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(zap.ErrorLevel) {
		t.Fatal("expected a no-op logger")
	}
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "checkin.log")
	logger, err := New(path, true)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Debug("nag burst scheduled", zap.String("session_id", "s-1"))
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(raw)
	for _, want := range []string{`"msg":"nag burst scheduled"`, `"session_id":"s-1"`, `"logger":"checkin"`} {
		if !strings.Contains(line, want) {
			t.Fatalf("log line missing %s: %s", want, line)
		}
	}
}

func TestNewDefaultLevelSkipsDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkin.log")
	logger, err := New(path, false)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if logger.Core().Enabled(zap.DebugLevel) {
		t.Fatal("debug should be disabled by default")
	}
}
