package timelinexml

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"splicer/internal/services"
	"splicer/internal/timeline"
)

// Default frame size for video groups that omit width or height.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
)

// Decoder reads timelines from XML.
type Decoder struct {
	r io.Reader
}

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

// Decode parses the document and rebuilds it as a timeline. opts are applied
// before the document's frame rate, which wins when present. Supply an
// inspector for clips without a stop time.
func (d *Decoder) Decode(ctx context.Context, opts ...timeline.Option) (*timeline.Timeline, error) {
	var doc Document
	decoder := xml.NewDecoder(d.r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, invalid("failed to decode XML", err)
	}
	return Build(ctx, &doc, opts...)
}

// Read decodes a timeline from r.
func Read(ctx context.Context, r io.Reader, opts ...timeline.Option) (*timeline.Timeline, error) {
	return NewDecoder(r).Decode(ctx, opts...)
}

// Build constructs a timeline from a parsed document.
func Build(ctx context.Context, doc *Document, opts ...timeline.Option) (*timeline.Timeline, error) {
	opts = opts[:len(opts):len(opts)]
	if strings.TrimSpace(doc.FrameRate) != "" {
		rate, err := parseRate(doc.FrameRate)
		if err != nil {
			return nil, invalid("timeline framerate", err)
		}
		opts = append(opts, timeline.WithFrameRate(rate))
	}
	tl := timeline.New(opts...)
	for gi, xg := range doc.Groups {
		if err := buildGroup(ctx, tl, xg); err != nil {
			return nil, fmt.Errorf("group %d: %w", gi, err)
		}
	}
	return tl, nil
}

func buildGroup(ctx context.Context, tl *timeline.Timeline, xg Group) error {
	kind, err := timeline.ParseMediaKind(xg.Type)
	if err != nil {
		return invalid("group type", err)
	}
	var g *timeline.Group
	switch kind {
	case timeline.Audio:
		g = tl.AddAudioGroup()
	case timeline.Video:
		width, height := xg.Width, xg.Height
		if width == 0 {
			width = DefaultWidth
		}
		if height == 0 {
			height = DefaultHeight
		}
		g, err = tl.AddVideoGroup(xg.BitDepth, width, height)
		if err != nil {
			return err
		}
	}
	if strings.TrimSpace(xg.FrameRate) != "" {
		rate, err := parseRate(xg.FrameRate)
		if err != nil {
			return invalid("group framerate", err)
		}
		if err := g.SetFrameRate(rate); err != nil {
			return err
		}
	}
	g.SetPreviewMode(xg.PreviewMode)

	for ti, xt := range xg.Tracks {
		if err := buildTrack(ctx, g.AddTrack(), kind, xt); err != nil {
			return fmt.Errorf("track %d: %w", ti, err)
		}
	}
	tracks := g.Tracks()
	for _, xtr := range xg.Transitions {
		if xtr.From < 0 || xtr.From >= len(tracks) || xtr.To < 0 || xtr.To >= len(tracks) {
			return invalid(fmt.Sprintf("transition references track %d->%d of %d", xtr.From, xtr.To, len(tracks)), nil)
		}
		start, length, params, err := transitionWindow(xtr)
		if err != nil {
			return err
		}
		if _, err := g.AddTransition(ctx, tracks[xtr.From], tracks[xtr.To], xtr.Effect, start, length, params); err != nil {
			return err
		}
	}
	return nil
}

func buildTrack(ctx context.Context, tr *timeline.Track, kind timeline.MediaKind, xt Track) error {
	for ci, xc := range xt.Clips {
		start, in, out, err := clipTimes(xc)
		if err != nil {
			return fmt.Errorf("clip %d: %w", ci, err)
		}
		if _, err := tr.AddClip(xc.Src, kind, timeline.PlaceAbsolute, start, in, out); err != nil {
			return fmt.Errorf("clip %d: %w", ci, err)
		}
	}
	clips := tr.Clips()
	for _, xtr := range xt.Transitions {
		if xtr.From < 0 || xtr.From >= len(clips) || xtr.To < 0 || xtr.To >= len(clips) {
			return invalid(fmt.Sprintf("transition references clip %d->%d of %d", xtr.From, xtr.To, len(clips)), nil)
		}
		start, length, params, err := transitionWindow(xtr)
		if err != nil {
			return err
		}
		if _, err := tr.AddTransition(ctx, clips[xtr.From], clips[xtr.To], xtr.Effect, start, length, params); err != nil {
			return err
		}
	}
	return nil
}

// clipTimes derives placement and source bounds. mstop wins over stop; when
// both are missing the source out is resolved lazily.
func clipTimes(xc Clip) (start, in, out time.Duration, err error) {
	if start, err = parseSeconds(xc.Start); err != nil {
		return 0, 0, 0, invalid("clip start", err)
	}
	if strings.TrimSpace(xc.MStart) != "" {
		if in, err = parseSeconds(xc.MStart); err != nil {
			return 0, 0, 0, invalid("clip mstart", err)
		}
	}
	if start < 0 || in < 0 {
		return 0, 0, 0, invalid("clip start and mstart must not be negative", nil)
	}
	switch {
	case strings.TrimSpace(xc.MStop) != "":
		if out, err = parseSeconds(xc.MStop); err != nil {
			return 0, 0, 0, invalid("clip mstop", err)
		}
	case strings.TrimSpace(xc.Stop) != "":
		stop, err := parseSeconds(xc.Stop)
		if err != nil {
			return 0, 0, 0, invalid("clip stop", err)
		}
		if stop < start {
			return 0, 0, 0, invalid(fmt.Sprintf("clip stop %s is before start %s", xc.Stop, xc.Start), nil)
		}
		if stop-start > math.MaxInt64-in {
			return 0, 0, 0, invalid("clip source range overflows", nil)
		}
		out = in + (stop - start)
	default:
		out = timeline.UnknownOut
	}
	return start, in, out, nil
}

func transitionWindow(xt Transition) (time.Duration, time.Duration, timeline.Parameters, error) {
	start, err := parseSeconds(xt.Start)
	if err != nil {
		return 0, 0, nil, invalid("transition start", err)
	}
	stop, err := parseSeconds(xt.Stop)
	if err != nil {
		return 0, 0, nil, invalid("transition stop", err)
	}
	var params timeline.Parameters
	for _, p := range xt.Params {
		if err := params.Set(p.Name, p.Value); err != nil {
			return 0, 0, nil, err
		}
	}
	return start, stop - start, params, nil
}

// maxSeconds is the largest magnitude a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

func parseSeconds(value string) (time.Duration, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("invalid seconds %q", value)
	}
	if math.Abs(v) >= maxSeconds {
		return 0, fmt.Errorf("seconds %q out of range", value)
	}
	return time.Duration(math.Round(v * float64(time.Second))), nil
}

func parseRate(value string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, fmt.Errorf("frame rate must be positive (got %s)", value)
	}
	return v, nil
}

func invalid(message string, cause error) error {
	if cause == nil {
		return services.NewError(services.KindInvalidArgument, "read timeline", message)
	}
	return services.WrapError(services.KindInvalidArgument, "read timeline", message, cause)
}
