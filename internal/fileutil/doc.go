// Package fileutil holds the file moves used to commit rendered outputs:
// temporary sibling paths, cross-filesystem moves with verified copies, and
// small existence helpers.
package fileutil
