package timeline

import (
	"context"
	"fmt"
	"time"

	"splicer/internal/services"
)

// DefaultFrameRate is the frame rate used when none is configured.
const DefaultFrameRate = 30.0

// Timeline is the root container of a composition.
type Timeline struct {
	frameRate float64
	inspector SourceInspector
	groups    []*Group
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithFrameRate sets the timeline frame rate inherited by new groups.
// Non-positive values are ignored.
func WithFrameRate(fps float64) Option {
	return func(t *Timeline) {
		if fps > 0 {
			t.frameRate = fps
		}
	}
}

// WithInspector sets the inspector used to resolve lazy clip durations.
func WithInspector(inspector SourceInspector) Option {
	return func(t *Timeline) {
		t.inspector = inspector
	}
}

// New constructs an empty timeline.
func New(opts ...Option) *Timeline {
	t := &Timeline{frameRate: DefaultFrameRate}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// FrameRate returns the timeline frame rate.
func (t *Timeline) FrameRate() float64 {
	return t.frameRate
}

// Inspector returns the configured source inspector, if any.
func (t *Timeline) Inspector() SourceInspector {
	return t.inspector
}

// AddAudioGroup appends a new audio group.
func (t *Timeline) AddAudioGroup() *Group {
	return t.appendGroup(&Group{kind: Audio, frameRate: t.frameRate})
}

// AddVideoGroup appends a new video group with the given bit depth and frame size.
func (t *Timeline) AddVideoGroup(bitDepth, width, height int) (*Group, error) {
	if bitDepth <= 0 || width <= 0 || height <= 0 {
		return nil, services.NewError(
			services.KindInvalidArgument,
			"add video group",
			fmt.Sprintf("bit depth, width, and height must be positive (got %d, %dx%d)", bitDepth, width, height),
		)
	}
	return t.appendGroup(&Group{
		kind:      Video,
		frameRate: t.frameRate,
		bitDepth:  bitDepth,
		width:     width,
		height:    height,
	}), nil
}

func (t *Timeline) appendGroup(g *Group) *Group {
	g.timeline = t
	g.index = len(t.groups)
	t.groups = append(t.groups, g)
	return g
}

// Groups returns all groups in insertion order.
func (t *Timeline) Groups() []*Group {
	return append([]*Group(nil), t.groups...)
}

// GroupsOf returns the groups of the given kind in insertion order.
func (t *Timeline) GroupsOf(kind MediaKind) []*Group {
	var out []*Group
	for _, g := range t.groups {
		if g.kind == kind {
			out = append(out, g)
		}
	}
	return out
}

// HasGroup reports whether at least one group of the given kind exists.
func (t *Timeline) HasGroup(kind MediaKind) bool {
	for _, g := range t.groups {
		if g.kind == kind {
			return true
		}
	}
	return false
}

// Resolve forces every lazy clip duration to be resolved.
func (t *Timeline) Resolve(ctx context.Context) error {
	for _, g := range t.groups {
		for _, tr := range g.tracks {
			for _, c := range tr.clips {
				if _, err := c.End(ctx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Duration returns the end of the latest clip among groups of the listed
// kinds, or among all groups when no kind is listed.
func (t *Timeline) Duration(ctx context.Context, kinds ...MediaKind) (time.Duration, error) {
	var total time.Duration
	for _, g := range t.groups {
		if !includesKind(kinds, g.kind) {
			continue
		}
		d, err := g.Duration(ctx)
		if err != nil {
			return 0, err
		}
		total = max(total, d)
	}
	return total, nil
}

func includesKind(kinds []MediaKind, kind MediaKind) bool {
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
