package ffmpeg

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"splicer/internal/profile"
	"splicer/internal/timeline"
)

// BuildArgs assembles the full ffmpeg command line for a graph.
func (b *Backend) BuildArgs(graph *Graph, p profile.Profile, outputPath string, duration string) []string {
	args := []string{"-hide_banner", "-nostdin", "-nostats", "-y", "-loglevel", b.logLevel, "-progress", "pipe:1"}
	if b.threads > 0 {
		args = append(args, "-threads", strconv.Itoa(b.threads))
	}
	for _, input := range graph.Inputs {
		args = append(args, "-i", input)
	}
	args = append(args, "-filter_complex", graph.String())
	for _, out := range graph.Outputs {
		args = append(args, "-map", "["+out.Label+"]")
	}
	args = append(args, codecArgs(p, graph)...)
	args = append(args, "-t", duration)
	if c := strings.TrimSpace(p.Container); c != "" {
		args = append(args, "-f", c)
	}
	return append(args, outputPath)
}

// codecArgs maps profile encoding fields to ffmpeg flags. Quality selects
// constant-quality mode and takes precedence over the video bitrate.
func codecArgs(p profile.Profile, graph *Graph) []string {
	var args []string
	if graph.HasKind(timeline.Video) {
		if p.VideoCodec != "" {
			args = append(args, "-c:v", p.VideoCodec)
		}
		switch {
		case p.Quality > 0:
			args = append(args, "-crf", strconv.Itoa(p.Quality))
		case p.VideoBitrate != "":
			args = append(args, "-b:v", p.VideoBitrate)
		}
	}
	if graph.HasKind(timeline.Audio) {
		if p.AudioCodec != "" {
			args = append(args, "-c:a", p.AudioCodec)
		}
		if p.AudioBitrate != "" {
			args = append(args, "-b:a", p.AudioBitrate)
		}
		if p.SampleRate > 0 {
			args = append(args, "-ar", strconv.Itoa(p.SampleRate))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(p.Extra)) {
		flag := strings.TrimSpace(key)
		if flag == "" {
			continue
		}
		args = append(args, "-"+strings.TrimPrefix(flag, "-"))
		if v := p.Extra[key]; v != "" {
			args = append(args, v)
		}
	}
	return args
}
