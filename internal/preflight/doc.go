// Package preflight provides readiness checks for the filesystem paths and
// external tools that splicer depends on.
//
// These checks run in two contexts:
//   - `splicer render` calls RunAll before rendering. If a directory check
//     fails the render is refused before any encoder starts.
//   - `splicer status` adds CheckSystemDeps and ProbeEncoders to show which
//     tools and codecs the configured profiles can use.
//
// Checks for optional features are skipped when the feature is disabled.
package preflight
