// Package render validates a timeline against a render profile and drives a
// rendering backend to produce the output file.
//
// A Renderer is a small state machine:
//
//	Created -> Validated -> Rendering -> Completed | Failed
//
// Validation runs before any backend work and never touches the filesystem,
// so a profile/content mismatch cannot leave a partial output behind. During
// Render the renderer holds an exclusive lock next to the output path, lets
// the backend write a temporary sibling file, and moves it into place only on
// success. Every failure is a typed *services.Error; cancellation and
// timeouts surface as KindCancelled.
//
// One Renderer performs at most one render. Independent renderers targeting
// different output paths share no state and may run concurrently.
package render
