// Package ffmpeg renders timeline descriptions by driving the ffmpeg CLI.
//
// A job becomes a single ffmpeg invocation: every non-marker clip is an
// input, each group is composed by one filter_complex chain, and the chains
// are mapped into the output container selected by the profile. Video groups
// overlay their clips onto a black canvas of the group's size; audio groups
// mix delayed clips over a silent bed. Both are bounded to the description
// duration so groups stay in sync.
//
// Progress is read from ffmpeg's -progress stream on stdout. Failures carry
// the tail of ffmpeg's stderr.
package ffmpeg
