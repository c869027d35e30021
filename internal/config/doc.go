// Package config loads, normalizes, and validates splicer configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPLICER_FFMPEG. The Config type centralizes the knobs the CLI and renderer
// need: tool locations, render policy, the run history database, logging, and
// user-defined render profiles layered over the built-in catalog.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
