package logging

import (
	"context"
	"log/slog"

	"splicer/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldRenderID is the standardized structured logging key for render identifiers.
	FieldRenderID = "render_id"
	// FieldStage is the standardized structured logging key for renderer stages.
	FieldStage = "stage"
	// FieldProfile is the standardized structured logging key for render profile names.
	FieldProfile = "profile"
	// FieldEventType classifies a log line for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step for the operator.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries the services.Kind of a failure.
	FieldErrorKind = "error_kind"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
	// FieldProgressStage, FieldProgressPercent and FieldProgressMessage describe backend progress.
	FieldProgressStage   = "progress_stage"
	FieldProgressPercent = "progress_percent"
	FieldProgressMessage = "progress_message"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.RenderIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRenderID, id))
	}
	if stage, ok := services.StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	if name, ok := services.ProfileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldProfile, name))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return slog.New(logger.Handler().WithAttrs(fields))
}
