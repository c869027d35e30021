// Package drapto finishes renders as AV1 through the Drapto encoder.
//
// Backend wraps another render backend: the timeline is first rendered to a
// lossless Matroska intermediate in a scratch directory, then handed to an
// Encoder. Library links the Drapto Go library directly; CLI shells out to a
// drapto binary and parses its --progress-json stream. Both report progress
// as render.Progress values so the renderer's logging and sampling apply
// unchanged.
package drapto
