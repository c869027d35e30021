// Package timeline models composable audio/video editing projects.
//
// A Timeline owns ordered Audio and Video Groups; each Group owns Tracks; each
// Track owns Clips and the Transitions anchored between them. Everything is
// created through explicit add-operations which enforce the structural rules
// (positive video dimensions, clip kinds matching their group, transition
// windows inside the overlap of their anchors) and report violations as typed
// *services.Error values.
//
// Clip durations are either given (source out minus source in) or resolved
// lazily through a SourceInspector the first time they are needed. Describe
// snapshots the resolved structure into the Description handed to rendering
// backends.
//
// A Timeline is not safe for concurrent mutation. Treat it as read-only while
// a renderer holds it.
package timeline
