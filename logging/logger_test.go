package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel("debug"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warn"))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("info"))
	assert.Equal(t, LogLevelInfo, ParseLevel("gibberish"))
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LogLevelDebug.String())
	assert.Equal(t, "ERROR", LogLevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Level: LogLevelInfo, Format: "json", Output: &buf})
	logger.Info("kernel.start", "providers", 2)

	var entry map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "kernel.start", entry["msg"])
	assert.Equal(t, float64(2), entry["providers"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Level: LogLevelInfo, Format: "text", Output: &buf})
	logger.Warn("memory.mapping_half_missing", "id", "abc")

	assert.True(t, strings.Contains(buf.String(), "memory.mapping_half_missing"))
	assert.True(t, strings.Contains(buf.String(), "id=abc"))
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	logger := New(Config{Level: LogLevelWarn, Format: "text", Output: &buf})
	logger.Debug("hidden")
	logger.Info("also hidden")
	logger.Error("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestOrNoOp(t *testing.T) {
	assert.IsType(t, NoOpLogger{}, OrNoOp(nil))

	logger := New(Config{})
	assert.Same(t, logger, OrNoOp(logger))
}
