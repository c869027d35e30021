package render

import (
	"log/slog"
	"time"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the base logger; a component logger is derived from it.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProgress registers a callback for backend progress updates.
func WithProgress(fn func(Progress)) Option {
	return func(r *Renderer) { r.progress = fn }
}

// WithRecorder journals the render to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Renderer) { r.recorder = rec }
}

// WithTimeout bounds the backend run. Expiry fails the render as cancelled.
func WithTimeout(d time.Duration) Option {
	return func(r *Renderer) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithSurplusPolicy decides how groups the profile does not consume are treated.
func WithSurplusPolicy(p SurplusPolicy) Option {
	return func(r *Renderer) { r.surplus = p }
}

// WithDurationProbe verifies the finished output lasts as long as the
// rendered description, within tolerance.
func WithDurationProbe(probe DurationProbe, tolerance time.Duration) Option {
	return func(r *Renderer) {
		r.probe = probe
		if tolerance >= 0 {
			r.tolerance = tolerance
		}
	}
}

// WithID overrides the generated render ID.
func WithID(id string) Option {
	return func(r *Renderer) {
		if id != "" {
			r.id = id
		}
	}
}
