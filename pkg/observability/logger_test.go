package observability

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"verbose", InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLogLevel(tt.input))
		})
	}
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", DebugLevel.String())
	assert.Equal(t, "INFO", InfoLevel.String())
	assert.Equal(t, "WARN", WarnLevel.String())
	assert.Equal(t, "ERROR", ErrorLevel.String())
}

func TestNewLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, FormatText, &buf)

	t.Run("debug not logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Debug("debug message")
		assert.Zero(t, buf.Len())
	})

	t.Run("info logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Info("info message")
		assert.Contains(t, buf.String(), "info message")
	})

	t.Run("warn logged at info level", func(t *testing.T) {
		buf.Reset()
		logger.Warn("warn message")
		assert.Contains(t, buf.String(), "level=warning")
	})
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(DebugLevel, FormatJSON, &buf)

	logger.WithField("subscriber", "Alice").Debug("record loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "record loaded", entry["msg"])
	assert.Equal(t, "Alice", entry["subscriber"])
}

func TestNewLogger_DefaultOutput(t *testing.T) {
	logger := NewLogger(ErrorLevel, FormatText, nil)
	assert.Equal(t, logrus.ErrorLevel, logger.GetLevel())
}

func TestAddDefaultFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(InfoLevel, FormatJSON, &buf)
	AddDefaultFields(logger, logrus.Fields{"session_id": "abc", "component": "cli"})

	logger.WithField("component", "records").Info("hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "abc", entry["session_id"])
	assert.Equal(t, "records", entry["component"])
	assert.Equal(t, "hello", entry["msg"])
}
