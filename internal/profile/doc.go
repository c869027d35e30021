// Package profile describes render targets: which content kinds an output
// expects and the encoding settings passed to the rendering backend.
//
// Catalog holds the built-in profiles plus any defined in configuration.
package profile
