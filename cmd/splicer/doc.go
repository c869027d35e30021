// Package main hosts the splicer CLI entrypoint and command graph.
//
// The Cobra-based command tree reads timeline XML documents, renders them
// through the configured backends, and reports on profiles, run history, and
// the readiness of external tools. It centralizes configuration resolution
// and structured logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
