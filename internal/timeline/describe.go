package timeline

import (
	"context"
	"time"
)

// Description is the resolved, ordered structure of a timeline handed to
// rendering backends. Only the groups of the requested kinds are included;
// Duration is the latest end among them.
type Description struct {
	FrameRate float64
	Duration  time.Duration
	Groups    []GroupDescription
}

// GroupDescription describes one group in composition order.
type GroupDescription struct {
	Index       int
	Kind        MediaKind
	FrameRate   float64
	BitDepth    int
	Width       int
	Height      int
	Duration    time.Duration
	Tracks      []TrackDescription
	Transitions []TransitionDescription
}

// TrackDescription describes one track; transitions reference clip indices.
type TrackDescription struct {
	Index       int
	Start       time.Duration
	End         time.Duration
	Clips       []ClipDescription
	Transitions []TransitionDescription
}

// ClipDescription is a resolved clip. Marker clips have zero duration and
// must not become a rendered segment.
type ClipDescription struct {
	Index     int
	Source    string
	Start     time.Duration
	End       time.Duration
	SourceIn  time.Duration
	SourceOut time.Duration
	Marker    bool
}

// Duration is End minus Start.
func (c ClipDescription) Duration() time.Duration {
	return c.End - c.Start
}

// TransitionDescription is a resolved transition. From and To are clip
// indices for track transitions and track indices for group transitions.
type TransitionDescription struct {
	Effect string
	From   int
	To     int
	Start  time.Duration
	End    time.Duration
	Params Parameters
}

// Describe resolves the timeline and snapshots the groups of the listed kinds
// (all groups when none are listed) in composition order.
func (t *Timeline) Describe(ctx context.Context, kinds ...MediaKind) (*Description, error) {
	desc := &Description{FrameRate: t.frameRate}
	for _, g := range t.groups {
		if !includesKind(kinds, g.kind) {
			continue
		}
		gd, err := describeGroup(ctx, g)
		if err != nil {
			return nil, err
		}
		desc.Duration = max(desc.Duration, gd.Duration)
		desc.Groups = append(desc.Groups, gd)
	}
	return desc, nil
}

// HasKind reports whether the description includes a group of the given kind.
func (d *Description) HasKind(kind MediaKind) bool {
	for _, g := range d.Groups {
		if g.Kind == kind {
			return true
		}
	}
	return false
}

// Segments returns the number of non-marker clips across all groups.
func (d *Description) Segments() int {
	count := 0
	for _, g := range d.Groups {
		for _, tr := range g.Tracks {
			for _, c := range tr.Clips {
				if !c.Marker {
					count++
				}
			}
		}
	}
	return count
}

func describeGroup(ctx context.Context, g *Group) (GroupDescription, error) {
	gd := GroupDescription{
		Index:     g.index,
		Kind:      g.kind,
		FrameRate: g.frameRate,
		BitDepth:  g.bitDepth,
		Width:     g.width,
		Height:    g.height,
	}
	for _, tr := range g.tracks {
		td, err := describeTrack(ctx, tr)
		if err != nil {
			return GroupDescription{}, err
		}
		gd.Duration = max(gd.Duration, td.End)
		gd.Tracks = append(gd.Tracks, td)
	}
	gd.Transitions = describeTransitions(g.transitions)
	return gd, nil
}

func describeTrack(ctx context.Context, tr *Track) (TrackDescription, error) {
	start, end, err := tr.Span(ctx)
	if err != nil {
		return TrackDescription{}, err
	}
	td := TrackDescription{Index: tr.index, Start: start, End: end}
	for _, c := range tr.clips {
		s, e, err := c.Span(ctx)
		if err != nil {
			return TrackDescription{}, err
		}
		td.Clips = append(td.Clips, ClipDescription{
			Index:     c.index,
			Source:    c.source,
			Start:     s,
			End:       e,
			SourceIn:  c.sourceIn,
			SourceOut: c.SourceOut(),
			Marker:    e == s,
		})
	}
	td.Transitions = describeTransitions(tr.transitions)
	return td, nil
}

func describeTransitions(transitions []*Transition) []TransitionDescription {
	if len(transitions) == 0 {
		return nil
	}
	out := make([]TransitionDescription, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, TransitionDescription{
			Effect: t.effect,
			From:   t.from.Index(),
			To:     t.to.Index(),
			Start:  t.offset,
			End:    t.End(),
			Params: t.params.Clone(),
		})
	}
	return out
}
