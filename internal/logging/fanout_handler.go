package logging

import (
	"context"
	"log/slog"
)

// NoopHandler discards all log output.
type NoopHandler struct{}

func (NoopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (NoopHandler) Handle(context.Context, slog.Record) error { return nil }
func (NoopHandler) WithAttrs([]slog.Attr) slog.Handler        { return NoopHandler{} }
func (NoopHandler) WithGroup(string) slog.Handler             { return NoopHandler{} }

// multiHandler sends each record to every sink whose level admits it. The
// console and the log file use it to share one logger.
type multiHandler []slog.Handler

func newFanoutHandler(handlers ...slog.Handler) slog.Handler {
	var sinks multiHandler
	for _, h := range handlers {
		if h != nil {
			sinks = append(sinks, h)
		}
	}
	switch len(sinks) {
	case 0:
		return NoopHandler{}
	case 1:
		return sinks[0]
	}
	return sinks
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var firstErr error
	last := len(m) - 1
	for i, h := range m {
		if !h.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if i != last {
			rec = record.Clone()
		}
		if err := h.Handle(ctx, rec); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	return m.derive(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m multiHandler) derive(fn func(slog.Handler) slog.Handler) multiHandler {
	next := make(multiHandler, len(m))
	for i, h := range m {
		next[i] = fn(h)
	}
	return next
}
