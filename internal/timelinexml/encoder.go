package timelinexml

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"time"

	"splicer/internal/timeline"
)

// Encoder writes timelines as XML.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode resolves tl and writes it. Lazy clip durations are resolved through
// the timeline's inspector.
func (e *Encoder) Encode(ctx context.Context, tl *timeline.Timeline) error {
	if tl == nil {
		return fmt.Errorf("timeline cannot be nil")
	}
	doc, err := Convert(ctx, tl)
	if err != nil {
		return err
	}
	encoder := xml.NewEncoder(e.w)
	encoder.Indent("", "\t")
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode XML: %w", err)
	}
	if _, err := e.w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}
	return nil
}

// Write encodes tl to w.
func Write(ctx context.Context, w io.Writer, tl *timeline.Timeline) error {
	return NewEncoder(w).Encode(ctx, tl)
}

// Convert builds the XML document for a timeline.
func Convert(ctx context.Context, tl *timeline.Timeline) (*Document, error) {
	doc := &Document{FrameRate: formatRate(tl.FrameRate())}
	for _, g := range tl.Groups() {
		xg := Group{
			Type:        g.Kind().String(),
			FrameRate:   formatRate(g.FrameRate()),
			PreviewMode: g.PreviewMode(),
		}
		if g.Kind() == timeline.Video {
			xg.BitDepth = g.BitDepth()
			xg.Width = g.Width()
			xg.Height = g.Height()
		}
		for _, tr := range g.Tracks() {
			xt := Track{}
			for _, c := range tr.Clips() {
				start, end, err := c.Span(ctx)
				if err != nil {
					return nil, fmt.Errorf("group %d track %d clip %d: %w", g.Index(), tr.Index(), c.Index(), err)
				}
				xt.Clips = append(xt.Clips, Clip{
					Start:  formatSeconds(start),
					Stop:   formatSeconds(end),
					Src:    c.Source(),
					MStart: formatSeconds(c.SourceIn()),
				})
			}
			xt.Transitions = convertTransitions(tr.Transitions())
			xg.Tracks = append(xg.Tracks, xt)
		}
		xg.Transitions = convertTransitions(g.Transitions())
		doc.Groups = append(doc.Groups, xg)
	}
	return doc, nil
}

func convertTransitions(transitions []*timeline.Transition) []Transition {
	var out []Transition
	for _, t := range transitions {
		xt := Transition{
			Effect: t.Effect(),
			Start:  formatSeconds(t.Offset()),
			Stop:   formatSeconds(t.End()),
			From:   t.From().Index(),
			To:     t.To().Index(),
		}
		params := t.Params()
		for _, key := range params.Keys() {
			xt.Params = append(xt.Params, Param{Name: key, Value: params[key]})
		}
		out = append(out, xt)
	}
	return out
}

func formatRate(fps float64) string {
	return strconv.FormatFloat(fps, 'f', 7, 64)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
