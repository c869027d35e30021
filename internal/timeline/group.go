package timeline

import (
	"context"
	"fmt"
	"time"

	"splicer/internal/services"
)

// Group is a same-kind collection of tracks sharing format attributes.
type Group struct {
	timeline    *Timeline
	index       int
	kind        MediaKind
	frameRate   float64
	bitDepth    int
	width       int
	height      int
	previewMode int
	tracks      []*Track
	transitions []*Transition
}

func (g *Group) Timeline() *Timeline { return g.timeline }

// Index is the group's position in the timeline.
func (g *Group) Index() int { return g.index }

func (g *Group) Kind() MediaKind { return g.kind }

func (g *Group) FrameRate() float64 { return g.frameRate }

// BitDepth is zero for audio groups.
func (g *Group) BitDepth() int { return g.bitDepth }

func (g *Group) Width() int { return g.width }

func (g *Group) Height() int { return g.height }

func (g *Group) PreviewMode() int { return g.previewMode }

// SetFrameRate overrides the frame rate inherited from the timeline.
func (g *Group) SetFrameRate(fps float64) error {
	if fps <= 0 {
		return services.NewError(services.KindInvalidArgument, "set frame rate", fmt.Sprintf("frame rate must be positive (got %v)", fps))
	}
	g.frameRate = fps
	return nil
}

// SetPreviewMode records the preview mode carried by serialized timelines.
func (g *Group) SetPreviewMode(mode int) {
	g.previewMode = mode
}

// AddTrack appends a new empty track.
func (g *Group) AddTrack() *Track {
	tr := &Track{group: g, index: len(g.tracks)}
	g.tracks = append(g.tracks, tr)
	return tr
}

// Tracks returns the group's tracks in composition order.
func (g *Group) Tracks() []*Track {
	return append([]*Track(nil), g.tracks...)
}

// Transitions returns the track-to-track transitions of the group.
func (g *Group) Transitions() []*Transition {
	return append([]*Transition(nil), g.transitions...)
}

// AddTransition anchors a transition between two tracks of the group. The
// window [offset, offset+length] must lie within the overlap of both tracks.
func (g *Group) AddTransition(ctx context.Context, from, to *Track, effect string, offset, length time.Duration, params Parameters) (*Transition, error) {
	const op = "add group transition"
	if from == nil || to == nil || from.group != g || to.group != g {
		return nil, services.NewError(services.KindInvalidArgument, op, "both tracks must belong to the group")
	}
	tr, err := newTransition(ctx, op, from, to, effect, offset, length, params)
	if err != nil {
		return nil, err
	}
	g.transitions = append(g.transitions, tr)
	return tr, nil
}

// Duration is the latest track end in the group.
func (g *Group) Duration(ctx context.Context) (time.Duration, error) {
	var total time.Duration
	for _, tr := range g.tracks {
		d, err := tr.Duration(ctx)
		if err != nil {
			return 0, err
		}
		total = max(total, d)
	}
	return total, nil
}
