package logging

import (
	"io"

	"github.com/rs/zerolog"
)

// DispatcherLogger satisfies dispatcher.Logger on top of zerolog. Command
// traces fire on every pointer event, so they get their own sink instead of
// the slog chain.
type DispatcherLogger struct {
	zl zerolog.Logger
}

func NewDispatcherLogger(zl zerolog.Logger) *DispatcherLogger {
	return &DispatcherLogger{zl: zl.With().Str("component", "dispatcher").Logger()}
}

// NewConsoleDispatcherLogger writes plain console lines to w. Unknown levels
// fall back to info.
func NewConsoleDispatcherLogger(w io.Writer, level string) *DispatcherLogger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	cw := zerolog.ConsoleWriter{Out: w, NoColor: true, TimeFormat: "15:04:05.000"}
	return NewDispatcherLogger(zerolog.New(cw).Level(lvl).With().Timestamp().Logger())
}

// emit hands the pairs to zerolog as a field list. A dangling key is dropped.
func (l *DispatcherLogger) emit(lvl zerolog.Level, msg string, kv []any) {
	ev := l.zl.WithLevel(lvl)
	if len(kv) > 0 {
		ev = ev.Fields(kv)
	}
	ev.Msg(msg)
}

func (l *DispatcherLogger) Debug(msg string, kv ...any) { l.emit(zerolog.DebugLevel, msg, kv) }

func (l *DispatcherLogger) Info(msg string, kv ...any) { l.emit(zerolog.InfoLevel, msg, kv) }

func (l *DispatcherLogger) Error(msg string, kv ...any) { l.emit(zerolog.ErrorLevel, msg, kv) }
