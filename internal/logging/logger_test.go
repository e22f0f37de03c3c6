package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbose, debug bool
		want           zapcore.Level
	}{
		{false, false, zapcore.WarnLevel},
		{true, false, zapcore.InfoLevel},
		{false, true, zapcore.DebugLevel},
		{true, true, zapcore.DebugLevel},
	}
	for _, tt := range tests {
		if got := Level(tt.verbose, tt.debug); got != tt.want {
			t.Fatalf("Level(%v, %v) = %v, want %v", tt.verbose, tt.debug, got, tt.want)
		}
	}
}

func TestNewHonorsLevel(t *testing.T) {
	logger, err := New(zapcore.WarnLevel)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer logger.Sync()
	if logger.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !logger.Core().Enabled(zapcore.WarnLevel) {
		t.Fatalf("warn should be enabled at warn level")
	}
}
