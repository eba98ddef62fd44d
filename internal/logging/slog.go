package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// swapped by tests
var (
	osStdout = os.Stdout
	osPipe   = os.Pipe
)

// SlogManager owns the process logger: a text sink (log file or stdout),
// any extra sinks, and the OTel bridge when a provider is given.
type SlogManager struct {
	logger      *slog.Logger
	logProvider *sdklog.LoggerProvider
}

// Option adjusts how Setup assembles the handler chain.
type Option func(*setupOptions)

type setupOptions struct {
	session AttrSource
	extra   []slog.Handler
}

// WithSession stamps every record with the attributes of src.
func WithSession(src AttrSource) Option {
	return func(o *setupOptions) { o.session = src }
}

// WithHandler adds another sink next to the file/console handler.
func WithHandler(h slog.Handler) Option {
	return func(o *setupOptions) {
		if h != nil {
			o.extra = append(o.extra, h)
		}
	}
}

func NewSlogManager() *SlogManager {
	return &SlogManager{}
}

// parseLevel accepts the slog level names in any case, with an optional
// offset ("warn+2"). Anything else is INFO.
func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func utcTime(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.TimeKey || a.Value.Kind() != slog.KindTime {
		return a
	}
	return slog.String(a.Key, a.Value.Time().UTC().Format(time.RFC3339))
}

func handlerOptions(level string) *slog.HandlerOptions {
	return &slog.HandlerOptions{Level: parseLevel(level), ReplaceAttr: utcTime}
}

// Setup (re)builds the logger. Records go to file when one is given and to
// stdout otherwise. A nil provider disables the OTel bridge.
func (m *SlogManager) Setup(file io.Writer, level string, provider *sdklog.LoggerProvider, opts ...Option) {
	var o setupOptions
	for _, opt := range opts {
		opt(&o)
	}

	var out io.Writer = osStdout
	if file != nil {
		out = file
	}
	sinks := append([]slog.Handler{slog.NewTextHandler(out, handlerOptions(level))}, o.extra...)
	if provider != nil {
		sinks = append(sinks, otelslog.NewHandler("courtplan", otelslog.WithLoggerProvider(provider)))
	}

	var handler slog.Handler = NewFanout(sinks...)
	if o.session != nil {
		handler = NewSessionHandler(handler, o.session)
	}

	m.logProvider = provider
	m.logger = slog.New(handler)
	m.logger.Info("logging initialized", "level", parseLevel(level).String(), "sinks", len(sinks))
}

// Logger returns slog.Default until Setup has run.
func (m *SlogManager) Logger() *slog.Logger {
	if m.logger == nil {
		return slog.Default()
	}
	return m.logger
}

// Flush pushes buffered OTel records to their exporters.
func (m *SlogManager) Flush(ctx context.Context) error {
	if m.logProvider == nil {
		return nil
	}
	return m.logProvider.ForceFlush(ctx)
}

// WriteLog records a line supplied by a replay script.
func (m *SlogManager) WriteLog(command, data, level string) {
	if m.logger == nil {
		return
	}
	m.logger.Log(context.Background(), parseLevel(level), data, "command", command)
}
