package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"splicer/internal/services"
	"splicer/internal/timeline"
)

const (
	defaultSampleRate = 48000
	defaultSimilarity = 0.1
)

// Graph is a composed filter graph plus the inputs it reads.
type Graph struct {
	Inputs  []string
	Filters []string
	Outputs []Output
}

// Output is a labelled stream produced by the graph.
type Output struct {
	Label string
	Kind  timeline.MediaKind
}

// String joins the filter chains into a filter_complex argument.
func (g *Graph) String() string {
	return strings.Join(g.Filters, ";")
}

// HasKind reports whether the graph produces a stream of the kind.
func (g *Graph) HasKind(kind timeline.MediaKind) bool {
	for _, out := range g.Outputs {
		if out.Kind == kind {
			return true
		}
	}
	return false
}

// BuildGraph composes the filter graph for a description.
func BuildGraph(desc *timeline.Description, sampleRate int) (*Graph, error) {
	if desc == nil {
		return nil, services.NewError(services.KindInvalidArgument, "render", "timeline description is required")
	}
	if desc.Duration <= 0 {
		return nil, services.NewError(services.KindInvalidArgument, "render", "timeline has no content to render")
	}
	if sampleRate <= 0 {
		sampleRate = defaultSampleRate
	}
	b := &graphBuilder{graph: &Graph{}, duration: desc.Duration, sampleRate: sampleRate}
	for _, g := range desc.Groups {
		switch g.Kind {
		case timeline.Video:
			if err := b.videoGroup(g, desc.FrameRate); err != nil {
				return nil, err
			}
		case timeline.Audio:
			b.audioGroup(g)
		default:
			return nil, services.NewError(services.KindInvalidArgument, "render", fmt.Sprintf("group %d has unknown kind", g.Index))
		}
	}
	return b.graph, nil
}

type graphBuilder struct {
	graph      *Graph
	duration   time.Duration
	sampleRate int
}

func (b *graphBuilder) input(source string) int {
	b.graph.Inputs = append(b.graph.Inputs, source)
	return len(b.graph.Inputs) - 1
}

func (b *graphBuilder) add(format string, args ...any) {
	b.graph.Filters = append(b.graph.Filters, fmt.Sprintf(format, args...))
}

func (b *graphBuilder) videoGroup(g timeline.GroupDescription, fallbackRate float64) error {
	if g.Width <= 0 || g.Height <= 0 {
		return services.NewError(services.KindInvalidArgument, "render", fmt.Sprintf("video group %d has no frame size", g.Index))
	}
	fps := g.FrameRate
	if fps <= 0 {
		fps = fallbackRate
	}
	if fps <= 0 {
		fps = timeline.DefaultFrameRate
	}
	rate := formatFloat(fps)
	current := fmt.Sprintf("g%dbase", g.Index)
	b.add("color=c=black:s=%dx%d:r=%s:d=%s,format=yuva420p[%s]", g.Width, g.Height, rate, seconds(b.duration), current)

	layer := 0
	for _, tr := range g.Tracks {
		for _, c := range tr.Clips {
			if c.Marker {
				continue
			}
			in := b.input(c.Source)
			label := fmt.Sprintf("g%dt%dc%d", g.Index, tr.Index, c.Index)
			chain := []string{
				fmt.Sprintf("trim=start=%s:end=%s", seconds(c.SourceIn), seconds(c.SourceOut)),
				"setpts=PTS-STARTPTS",
				"fps=" + rate,
				fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", g.Width, g.Height),
				fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2:color=black@0", g.Width, g.Height),
				"format=yuva420p",
				fmt.Sprintf("setpts=PTS+%s/TB", seconds(c.Start)),
			}
			for _, t := range tr.Transitions {
				chain = append(chain, videoEffects(t, c.Index, t.From, t.To)...)
			}
			for _, t := range g.Transitions {
				chain = append(chain, videoEffects(t, tr.Index, t.From, t.To)...)
			}
			b.add("[%d:v]%s[%s]", in, strings.Join(chain, ","), label)
			next := fmt.Sprintf("g%dl%d", g.Index, layer)
			b.add("[%s][%s]overlay=eof_action=pass:format=auto[%s]", current, label, next)
			current = next
			layer++
		}
	}
	out := fmt.Sprintf("v%d", g.Index)
	b.add("[%s]format=yuv420p[%s]", current, out)
	b.graph.Outputs = append(b.graph.Outputs, Output{Label: out, Kind: timeline.Video})
	return nil
}

// videoEffects returns the filters applied to the layer at position pos for a
// transition between anchors from and to. Only the upper anchor is filtered;
// the lower one shows through.
func videoEffects(t timeline.TransitionDescription, pos, from, to int) []string {
	upper := max(from, to)
	if pos != upper {
		return nil
	}
	start := seconds(t.Start)
	length := seconds(t.End - t.Start)
	enable := fmt.Sprintf("enable='between(t,%s,%s)'", start, seconds(t.End))
	switch strings.ToLower(strings.TrimSpace(t.Effect)) {
	case "key", "chromakey", "colorkey":
		filters := []string{keyFilter(t.Params) + ":" + enable}
		if invert, _ := strconv.ParseBool(t.Params[timeline.ParamInvert]); invert {
			filters = append(filters, "geq=lum='lum(X,Y)':cb='cb(X,Y)':cr='cr(X,Y)':a='255-alpha(X,Y)':"+enable)
		}
		return filters
	default:
		if upper == to {
			return []string{fmt.Sprintf("fade=t=in:st=%s:d=%s:alpha=1", start, length)}
		}
		return []string{fmt.Sprintf("fade=t=out:st=%s:d=%s:alpha=1", start, length)}
	}
}

func keyFilter(params timeline.Parameters) string {
	similarity := paramFloat(params, timeline.ParamSimilarity, defaultSimilarity)
	switch strings.ToLower(strings.TrimSpace(params[timeline.ParamKeyType])) {
	case "luma", "luminance":
		return fmt.Sprintf("lumakey=threshold=%s:tolerance=%s", formatFloat(paramFloat(params, timeline.ParamLuminance, 0)), formatFloat(similarity))
	case "hue":
		return fmt.Sprintf("hsvkey=hue=%s:sat=0:val=0:similarity=%s", formatFloat(paramFloat(params, timeline.ParamHue, 0)), formatFloat(similarity))
	default:
		return fmt.Sprintf("colorkey=color=0x%06X:similarity=%s", paramColor(params), formatFloat(similarity))
	}
}

func (b *graphBuilder) audioGroup(g timeline.GroupDescription) {
	base := fmt.Sprintf("g%dbase", g.Index)
	b.add("anullsrc=r=%d:cl=stereo,atrim=duration=%s[%s]", b.sampleRate, seconds(b.duration), base)
	labels := []string{base}
	for _, tr := range g.Tracks {
		for _, c := range tr.Clips {
			if c.Marker {
				continue
			}
			in := b.input(c.Source)
			label := fmt.Sprintf("g%dt%dc%d", g.Index, tr.Index, c.Index)
			chain := []string{
				fmt.Sprintf("atrim=start=%s:end=%s", seconds(c.SourceIn), seconds(c.SourceOut)),
				"asetpts=PTS-STARTPTS",
				fmt.Sprintf("aformat=sample_rates=%d:channel_layouts=stereo", b.sampleRate),
			}
			for _, t := range tr.Transitions {
				chain = append(chain, audioFades(t, c, c.Index)...)
			}
			for _, t := range g.Transitions {
				chain = append(chain, audioFades(t, c, tr.Index)...)
			}
			chain = append(chain, fmt.Sprintf("adelay=%d:all=1", c.Start.Milliseconds()))
			b.add("[%d:a]%s[%s]", in, strings.Join(chain, ","), label)
			labels = append(labels, label)
		}
	}
	out := fmt.Sprintf("a%d", g.Index)
	var sb strings.Builder
	for _, l := range labels {
		sb.WriteString("[" + l + "]")
	}
	b.add("%samix=inputs=%d:duration=first:dropout_transition=0:normalize=0[%s]", sb.String(), len(labels), out)
	b.graph.Outputs = append(b.graph.Outputs, Output{Label: out, Kind: timeline.Audio})
}

// audioFades crossfades both anchors. Offsets are relative to the clip because
// the fade runs before the clip is delayed into place.
func audioFades(t timeline.TransitionDescription, c timeline.ClipDescription, pos int) []string {
	if c.End <= t.Start || c.Start >= t.End {
		return nil
	}
	length := seconds(t.End - t.Start)
	switch pos {
	case t.From:
		return []string{fmt.Sprintf("afade=t=out:st=%s:d=%s", seconds(max(t.Start-c.Start, 0)), length)}
	case t.To:
		return []string{fmt.Sprintf("afade=t=in:st=%s:d=%s", seconds(max(t.Start-c.Start, 0)), length)}
	default:
		return nil
	}
}

func paramFloat(params timeline.Parameters, key string, fallback float64) float64 {
	raw, ok := params[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fallback
	}
	return v
}

// paramColor reads RGB as decimal, 0x-prefixed, or #-prefixed hex.
func paramColor(params timeline.Parameters) int64 {
	raw := strings.TrimSpace(params[timeline.ParamRGB])
	if raw == "" {
		return 0
	}
	if strings.HasPrefix(raw, "#") {
		raw = "0x" + raw[1:]
	}
	v, err := strconv.ParseInt(raw, 0, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v & 0xFFFFFF
}

func seconds(d time.Duration) string {
	return formatFloat(d.Seconds())
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
