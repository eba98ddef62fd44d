package logging

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// captureStdout points osStdout at a pipe until the returned func is called.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	r, w, err := osPipe()
	require.NoError(t, err)
	orig := osStdout
	osStdout = w
	return func() string {
		w.Close()
		osStdout = orig
		b, _ := io.ReadAll(r)
		r.Close()
		return string(b)
	}
}

func TestSetup_Destination(t *testing.T) {
	t.Run("file", func(t *testing.T) {
		done := captureStdout(t)
		var file bytes.Buffer
		m := NewSlogManager()
		m.Setup(&file, "info", nil)
		m.Logger().Info("lineup opened")

		assert.Empty(t, done())
		assert.Contains(t, file.String(), "lineup opened")
		assert.Contains(t, file.String(), "logging initialized")
	})

	t.Run("stdout", func(t *testing.T) {
		done := captureStdout(t)
		m := NewSlogManager()
		m.Setup(nil, "info", nil)
		m.Logger().Info("lineup opened")

		assert.Contains(t, done(), "lineup opened")
	})
}

func TestSetup_Levels(t *testing.T) {
	tests := []struct {
		level     string
		debugSeen bool
		infoSeen  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, false},
		{"nonsense", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, tt.level, nil)
			buf.Reset()

			m.Logger().Debug("dbg line")
			m.Logger().Info("info line")

			assert.Equal(t, tt.debugSeen, bytes.Contains(buf.Bytes(), []byte("dbg line")))
			assert.Equal(t, tt.infoSeen, bytes.Contains(buf.Bytes(), []byte("info line")))
		})
	}
}

func TestSetup_TimesAreUTC(t *testing.T) {
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", nil)

	assert.Regexp(t, `time=\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z`, buf.String())
}

func TestSetup_ReplacesLogger(t *testing.T) {
	var first, second bytes.Buffer
	m := NewSlogManager()

	m.Setup(&first, "info", nil)
	m.Logger().Info("one")
	m.Setup(&second, "info", nil)
	m.Logger().Info("two")

	assert.NotContains(t, first.String(), "two")
	assert.Contains(t, second.String(), "two")
}

func TestSetup_WithSession(t *testing.T) {
	var buf bytes.Buffer
	key := "2_attack_offense"
	m := NewSlogManager()
	m.Setup(&buf, "info", nil, WithSession(func() []slog.Attr {
		return []slog.Attr{slog.String("snapshot", key)}
	}))

	m.Logger().Info("committed")
	assert.Contains(t, buf.String(), "snapshot=2_attack_offense")

	key = "2_block_defense"
	buf.Reset()
	m.Logger().Info("committed")
	assert.Contains(t, buf.String(), "snapshot=2_block_defense")
}

func TestSetup_WithHandler(t *testing.T) {
	var file, extra bytes.Buffer
	m := NewSlogManager()
	m.Setup(&file, "info", nil, WithHandler(slog.NewJSONHandler(&extra, nil)), WithHandler(nil))

	m.Logger().Info("both sinks", "tool", "polygon")

	assert.Contains(t, file.String(), "both sinks")
	assert.Contains(t, extra.String(), `"tool":"polygon"`)
}

func TestSetup_WithOTelProvider(t *testing.T) {
	provider := sdklog.NewLoggerProvider()
	var buf bytes.Buffer
	m := NewSlogManager()
	m.Setup(&buf, "info", provider)

	m.Logger().Info("bridged")
	assert.Contains(t, buf.String(), "bridged")
	assert.Contains(t, buf.String(), "sinks=2")
	assert.NoError(t, m.Flush(context.Background()))
}

func TestManager_BeforeSetup(t *testing.T) {
	m := NewSlogManager()
	assert.Equal(t, slog.Default(), m.Logger())
	assert.NoError(t, m.Flush(context.Background()))
	m.WriteLog(":LOG:", "dropped", "info")
}

func TestWriteLog(t *testing.T) {
	tests := []struct {
		level string
		want  string
	}{
		{"debug", "level=DEBUG"},
		{"INFO", "level=INFO"},
		{"warn", "level=WARN"},
		{"Error", "level=ERROR"},
		{"", "level=INFO"},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			m := NewSlogManager()
			m.Setup(&buf, "debug", nil)
			buf.Reset()

			m.WriteLog(":LOG:", "rotation reviewed", tt.level)

			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "rotation reviewed")
			assert.Contains(t, out, "command=:LOG:")
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"Warn":    slog.LevelWarn,
		"ERROR":   slog.LevelError,
		"warn+2":  slog.LevelWarn + 2,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func TestNewGELFHandler(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	h, w, err := NewGELFHandler(conn.LocalAddr().String(), "info")
	require.NoError(t, err)
	defer w.Close()

	slog.New(h).Info("snapshot saved", "key", "1_serve_defense")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	packet := make([]byte, 65536)
	n, _, err := conn.ReadFrom(packet)
	require.NoError(t, err)

	var msg map[string]any
	require.NoError(t, json.Unmarshal(inflate(t, packet[:n]), &msg))
	assert.Contains(t, msg["short_message"], "snapshot saved")
	assert.Contains(t, msg["short_message"], "1_serve_defense")
}

func TestNewGELFHandler_BadAddress(t *testing.T) {
	_, _, err := NewGELFHandler("not-an-address", "info")
	assert.Error(t, err)
}

func inflate(t *testing.T, b []byte) []byte {
	t.Helper()
	var r io.Reader = bytes.NewReader(b)
	switch {
	case len(b) > 1 && b[0] == 0x1f && b[1] == 0x8b:
		zr, err := gzip.NewReader(r)
		require.NoError(t, err)
		r = zr
	case len(b) > 0 && b[0] == 0x78:
		zr, err := zlib.NewReader(r)
		require.NoError(t, err)
		r = zr
	}
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return out
}
