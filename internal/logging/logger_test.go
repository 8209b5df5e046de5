package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	cases := map[string]zapcore.Level{
		"":        zapcore.InfoLevel,
		"debug":   zapcore.DebugLevel,
		"WARNING": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
	}
	for level, want := range cases {
		logger, err := New(level)
		if err != nil {
			t.Fatalf("New(%q) failed: %v", level, err)
		}
		if !logger.Core().Enabled(want) {
			t.Errorf("New(%q): expected %s to be enabled", level, want)
		}
		if want > zapcore.DebugLevel && logger.Core().Enabled(want-1) {
			t.Errorf("New(%q): expected %s to be disabled", level, want-1)
		}
	}

	if _, err := New("verbose"); err == nil {
		t.Error("Expected an error for an unknown level")
	}
}
