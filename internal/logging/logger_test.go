package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewLogger_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "prod", "warn")

	logger.Info("[Test] hidden")
	assert.Zero(t, buf.Len())

	logger.Warn("[Test] shown", slog.String("object_key", "calls/a.json"))
	out := buf.String()
	assert.Contains(t, out, "[Test] shown")
	assert.Contains(t, out, "object_key=calls/a.json")
	assert.NotContains(t, out, "\x1b[")
}
