package logging

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Attr aliases slog.Attr so callers only import this package.
type Attr = slog.Attr

func Any(key string, value any) Attr { return slog.Any(key, value) }
func Duration(key string, value time.Duration) Attr { return slog.Duration(key, value) }
func Float64(key string, value float64) Attr { return slog.Float64(key, value) }
func Int(key string, value int) Attr { return slog.Int(key, value) }
func Int64(key string, value int64) Attr { return slog.Int64(key, value) }
func String(key string, value string) Attr { return slog.String(key, value) }
func Alert(value string) Attr { return slog.String(FieldAlert, value) }

// Error records err under "error"; nil renders as "<nil>".
func Error(err error) Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.Any("error", err)
}

// ErrorKind tags err with its render error kind, or "unknown" when it carries
// none.
func ErrorKind(err error) Attr {
	kind := "unknown"
	var classifier interface{ ErrorKind() string }
	if errors.As(err, &classifier) {
		kind = classifier.ErrorKind()
	}
	return slog.String(FieldErrorKind, kind)
}

// NewNop returns a logger that drops everything.
func NewNop() *slog.Logger {
	return slog.New(NoopHandler{})
}

// NewComponentLogger scopes logger to a component. A nil logger yields a
// no-op base.
func NewComponentLogger(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	return logger.With(String(FieldComponent, component))
}

// HasAttrKey reports whether attrs contains key.
func HasAttrKey(attrs []Attr, key string) bool {
	for _, a := range attrs {
		if a.Key == key {
			return true
		}
	}
	return false
}

// FieldImpact describes what a warning means for the render output.
const FieldImpact = "impact"

const defaultErrorHint = "check logs for details"

// WarnWithContext logs a warning that always states its event type, a hint,
// and the impact on the render.
func WarnWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
		String(FieldImpact, "render continued with warnings"),
	)
	logger.LogAttrs(context.Background(), slog.LevelWarn, msg, attrs...)
}

// ErrorWithContext logs an error that always states its event type and a hint.
func ErrorWithContext(logger *slog.Logger, msg, eventType string, attrs ...Attr) {
	if logger == nil {
		return
	}
	attrs = withDefaults(attrs,
		String(FieldEventType, eventType),
		String(FieldErrorHint, defaultErrorHint),
	)
	logger.LogAttrs(context.Background(), slog.LevelError, msg, attrs...)
}

// withDefaults appends each default whose key attrs does not already set.
func withDefaults(attrs []Attr, defaults ...Attr) []Attr {
	for _, d := range defaults {
		if !HasAttrKey(attrs, d.Key) {
			attrs = append(attrs, d)
		}
	}
	return attrs
}
