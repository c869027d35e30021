// Package logging assembles structured slog loggers and formatting helpers used
// across splicer.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so renderer and backend code can
// tag log lines with render IDs, stages, and profile names. When a log
// directory is configured the console stream is teed into a JSON log file
// stamped with a per-invocation session ID. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
//
// Prefer these constructors over hand-rolled slog setup so new components emit
// data with the same shape and routing as the rest of the tool.
package logging
