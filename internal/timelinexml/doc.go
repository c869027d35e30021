// Package timelinexml reads and writes timelines in the <timeline> XML
// interchange format.
//
// Times are seconds. Groups carry their media type, frame rate, and preview
// mode; video groups add bit depth and frame size. Clips are written with
// their resolved start/stop on the timeline and mstart into the source.
// Transitions carry their effect, anchor indices, and <param> children.
//
// Decoding rebuilds a timeline through the timeline package's add operations,
// so every structural invariant is enforced on input.
package timelinexml
