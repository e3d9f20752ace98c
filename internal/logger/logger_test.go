package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected log.Level
	}{
		{"debug", log.DebugLevel},
		{"INFO", log.InfoLevel},
		{"warn", log.WarnLevel},
		{"error", log.ErrorLevel},
		{"fatal", log.FatalLevel},
		{"verbose", log.WarnLevel},
		{"", log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLogLevel(tt.input))
		})
	}
}

func TestConfigure(t *testing.T) {
	t.Cleanup(func() { _ = Configure("warn", "", false) })

	t.Run("flag wins over environment", func(t *testing.T) {
		t.Setenv("SHELLY_LOG_LEVEL", "error")
		require.NoError(t, Configure("debug", "", false))
		assert.Equal(t, log.DebugLevel, Logger.GetLevel())
	})

	t.Run("environment used without flag", func(t *testing.T) {
		t.Setenv("SHELLY_LOG_LEVEL", "ERROR")
		require.NoError(t, Configure("", "", false))
		assert.Equal(t, log.ErrorLevel, Logger.GetLevel())
	})

	t.Run("test mode forces warn", func(t *testing.T) {
		require.NoError(t, Configure("debug", "", true))
		assert.Equal(t, log.WarnLevel, Logger.GetLevel())
	})

	t.Run("component loggers follow level and file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "shelly.log")
		require.NoError(t, Configure("info", path, false))

		NewStyledLogger("Shell").Info("Starting session", "session", "abc")
		Debug("hidden")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Starting session")
		assert.Contains(t, string(data), "Shell")
		assert.NotContains(t, string(data), "hidden")
	})

	t.Run("unwritable log file", func(t *testing.T) {
		err := Configure("info", filepath.Join(t.TempDir(), "missing", "shelly.log"), false)
		assert.Error(t, err)
	})
}
