package logging

import (
	"context"
	"log/slog"
)

// FieldSessionID ties every line of one CLI invocation together in the log
// file.
const FieldSessionID = "session_id"

// fileSink decorates the JSON log file handler. Every record carries the
// session ID, and render fields found on the context (render_id, stage,
// profile) are added unless the logger already bound them. That lets
// InfoContext calls from backends land in the file with their render.
type fileSink struct {
	base      slog.Handler
	sessionID string
	bound     map[string]bool
}

func newFileSink(base slog.Handler, sessionID string) slog.Handler {
	if base == nil {
		return NoopHandler{}
	}
	return &fileSink{base: base, sessionID: sessionID}
}

func (h *fileSink) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *fileSink) Handle(ctx context.Context, record slog.Record) error {
	present := make(map[string]bool, record.NumAttrs())
	record.Attrs(func(a slog.Attr) bool {
		present[a.Key] = true
		return true
	})
	for _, field := range ContextFields(ctx) {
		if !h.bound[field.Key] && !present[field.Key] {
			record.AddAttrs(field)
		}
	}
	if h.sessionID != "" {
		record.AddAttrs(slog.String(FieldSessionID, h.sessionID))
	}
	return h.base.Handle(ctx, record)
}

func (h *fileSink) WithAttrs(attrs []slog.Attr) slog.Handler {
	bound := make(map[string]bool, len(h.bound)+len(attrs))
	for k := range h.bound {
		bound[k] = true
	}
	for _, a := range attrs {
		bound[a.Key] = true
	}
	return &fileSink{base: h.base.WithAttrs(attrs), sessionID: h.sessionID, bound: bound}
}

func (h *fileSink) WithGroup(name string) slog.Handler {
	return &fileSink{base: h.base.WithGroup(name), sessionID: h.sessionID, bound: h.bound}
}
