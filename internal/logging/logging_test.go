package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestLevelFromEnvDefault(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	if got := LevelFromEnv(); got != DefaultLevel {
		t.Fatalf("LevelFromEnv() = %q, want %q", got, DefaultLevel)
	}
}

func TestLevelFromEnvSet(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	if got := LevelFromEnv(); got != "debug" {
		t.Fatalf("LevelFromEnv() = %q, want debug", got)
	}
}

func TestComponentFieldInLogfmtOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Formatter: log.LogfmtFormatter})
	logger = logger.With("component", "sender")
	logger.Info("hello")

	if !strings.Contains(buf.String(), "component=sender") {
		t.Fatalf("expected component field in output, got %q", buf.String())
	}
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	logger := New("receiver", "not-a-level", false)
	if logger == nil {
		t.Fatal("expected a non-nil logger even with an invalid level string")
	}
}
