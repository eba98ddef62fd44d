package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// Fanout delivers each record to every sink that accepts its level. A failing
// sink does not stop delivery to the others; Handle joins their errors.
type Fanout struct {
	sinks []slog.Handler
}

// NewFanout drops nil sinks.
func NewFanout(sinks ...slog.Handler) *Fanout {
	f := &Fanout{}
	for _, h := range sinks {
		if h != nil {
			f.sinks = append(f.sinks, h)
		}
	}
	return f
}

// Len is the number of attached sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(f.sinks, func(h slog.Handler) bool {
		return h.Enabled(ctx, level)
	})
}

func (f *Fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f.sinks {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f *Fanout) derive(fn func(slog.Handler) slog.Handler) *Fanout {
	out := &Fanout{sinks: make([]slog.Handler, len(f.sinks))}
	for i, h := range f.sinks {
		out.sinks[i] = fn(h)
	}
	return out
}

func (f *Fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (f *Fanout) WithGroup(name string) slog.Handler {
	if name == "" {
		return f
	}
	return f.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

// AttrSource yields attributes that change while the process runs, such as
// the snapshot currently being edited.
type AttrSource func() []slog.Attr

// SessionHandler stamps every record with the attributes of an AttrSource,
// read at the moment the record is handled. Empty string values are skipped
// so records logged before a lineup is open stay clean.
type SessionHandler struct {
	next   slog.Handler
	source AttrSource
}

func NewSessionHandler(next slog.Handler, source AttrSource) *SessionHandler {
	return &SessionHandler{next: next, source: source}
}

func (h *SessionHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *SessionHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.source != nil {
		for _, a := range h.source() {
			if a.Value.Kind() == slog.KindString && a.Value.String() == "" {
				continue
			}
			r.AddAttrs(a)
		}
	}
	return h.next.Handle(ctx, r)
}

func (h *SessionHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewSessionHandler(h.next.WithAttrs(attrs), h.source)
}

func (h *SessionHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return NewSessionHandler(h.next.WithGroup(name), h.source)
}
