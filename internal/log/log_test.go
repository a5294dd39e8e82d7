package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelForVerbosity(t *testing.T) {
	tests := []struct {
		name      string
		verbosity int
		expected  slog.Level
	}{
		{name: "no flag", verbosity: 0, expected: slog.LevelWarn},
		{name: "negative treated as quiet", verbosity: -1, expected: slog.LevelWarn},
		{name: "single v", verbosity: 1, expected: slog.LevelInfo},
		{name: "double v", verbosity: 2, expected: slog.LevelDebug},
		{name: "many v", verbosity: 10, expected: slog.LevelDebug},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevelForVerbosity(tt.verbosity))
		})
	}
}

func TestNewLoggerWithWriter(t *testing.T) {
	t.Run("quiet logger drops info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, 0)

		logger.Info("hidden")
		logger.Warn("shown", "name", "foo")

		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
		assert.Contains(t, buf.String(), "name=foo")
	})

	t.Run("debug logger keeps everything", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLoggerWithWriter(&buf, 2)

		logger.Debug("debug message")
		logger.Error("error message")

		assert.Contains(t, buf.String(), "debug message")
		assert.Contains(t, buf.String(), "error message")
	})
}

func TestInit(t *testing.T) {
	for _, verbosity := range []int{0, 1, 2} {
		Init(verbosity)
		assert.NotNil(t, GetLogger())
	}
}
