package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "warn", Output: &buf})

	logger.Info("hidden")
	logger.Warn("shown", "edges", 5)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "edges=5") {
		t.Errorf("expected warn message with key/value, got %q", out)
	}
}

func TestNewUnknownLevelFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: "chatty", Output: &buf})
	logger.Debug("debug")
	logger.Info("info")

	out := buf.String()
	if strings.Contains(out, "debug") || !strings.Contains(out, "info") {
		t.Errorf("unknown level should behave like info, got %q", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}
