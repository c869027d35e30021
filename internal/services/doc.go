// Package services defines shared utilities consumed by the timeline model, the
// renderer, and the external tool integrations.
//
// Key responsibilities:
//   - The closed Kind taxonomy and the *Error type every model and renderer
//     failure is reported through, with sentinels for errors.Is matching.
//   - Tool-level markers plus the Wrap helper used when ffmpeg, ffprobe, or
//     drapto fail.
//   - Context helpers that stamp render IDs, stage names, and profile names for
//     logging.
//
// Use these helpers when wiring new backend logic so failures stay typed and
// log lines keep the same shape across the pipeline.
package services
