// Package deps reports whether the external binaries splicer shells out to
// are installed.
package deps
