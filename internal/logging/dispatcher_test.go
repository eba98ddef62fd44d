package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestDispatcherLogger_Debug(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.DebugLevel))

	dl.Debug("command dispatched", "command", ":MOVE:", "args", 2)

	entry := decodeLine(t, &buf)
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "command dispatched", entry["message"])
	assert.Equal(t, ":MOVE:", entry["command"])
	assert.Equal(t, float64(2), entry["args"])
}

func TestDispatcherLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Info("handler registered", "command", ":ENTER:")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, ":ENTER:", entry["command"])
}

func TestDispatcherLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf).Level(zerolog.ErrorLevel))

	dl.Info("filtered")
	assert.Zero(t, buf.Len())

	dl.Error("handler failed", "code", 500, "reason", "internal")
	entry := decodeLine(t, &buf)
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, float64(500), entry["code"])
	assert.Equal(t, "internal", entry["reason"])
}

func TestDispatcherLogger_KeyValues(t *testing.T) {
	var buf bytes.Buffer
	dl := NewDispatcherLogger(zerolog.New(&buf))

	dl.Info("pairs", "k", "v", "dangling")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "v", entry["k"])
	assert.Equal(t, "dispatcher", entry["component"])
	assert.NotContains(t, entry, "dangling")
}

func TestDispatcherLogger_NoFields(t *testing.T) {
	var buf bytes.Buffer
	NewDispatcherLogger(zerolog.New(&buf)).Info("bare")

	entry := decodeLine(t, &buf)
	assert.Equal(t, "bare", entry["message"])
}

func TestConsoleDispatcherLogger(t *testing.T) {
	var buf bytes.Buffer
	dl := NewConsoleDispatcherLogger(&buf, "warn")

	dl.Info("hidden")
	dl.Error("shown", "command", ":KEY:")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, ":KEY:")
}

func TestConsoleDispatcherLogger_BadLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	dl := NewConsoleDispatcherLogger(&buf, "loud")

	dl.Debug("hidden")
	dl.Info("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestDispatcherLogger_ImplementsInterface(t *testing.T) {
	var _ interface {
		Debug(msg string, keysAndValues ...any)
		Info(msg string, keysAndValues ...any)
		Error(msg string, keysAndValues ...any)
	} = NewDispatcherLogger(zerolog.Nop())
}
