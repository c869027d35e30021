// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Inspect executes ffprobe and returns the parsed Result; helper methods on
// Result expose stream counts, duration, size, and bitrate. Prober adapts
// Inspect to the timeline's source inspector and the renderer's duration
// probe, caching source lookups by path.
package ffprobe
