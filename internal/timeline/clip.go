package timeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"splicer/internal/services"
)

// UnknownOut marks a clip whose source out point comes from source metadata.
const UnknownOut time.Duration = -1

// Clip is a bounded reference into a source media file placed on a track.
type Clip struct {
	track          *Track
	index          int
	prev           *Clip
	source         string
	kind           MediaKind
	placement      Placement
	requestedStart time.Duration
	sourceIn       time.Duration
	sourceOut      time.Duration

	mu       sync.Mutex
	duration time.Duration
	resolved bool
}

func (c *Clip) Track() *Track { return c.track }

// Index is the clip's position on its track.
func (c *Clip) Index() int { return c.index }

func (c *Clip) Source() string { return c.source }

func (c *Clip) Kind() MediaKind { return c.kind }

func (c *Clip) Placement() Placement { return c.placement }

// RequestedStart is the start passed to AddClip; zero for relative clips.
func (c *Clip) RequestedStart() time.Duration { return c.requestedStart }

func (c *Clip) SourceIn() time.Duration { return c.sourceIn }

// SourceOut is UnknownOut until the clip duration has been resolved from
// source metadata.
func (c *Clip) SourceOut() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sourceOut == UnknownOut && c.resolved {
		return c.sourceIn + c.duration
	}
	return c.sourceOut
}

// KnownDuration returns the duration when it is available without inspection.
func (c *Clip) KnownDuration() (time.Duration, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration, c.resolved
}

// Duration returns the clip length, inspecting the source once when the
// out point was not supplied.
func (c *Clip) Duration(ctx context.Context) (time.Duration, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolved {
		return c.duration, nil
	}

	const op = "resolve clip duration"
	inspector := c.track.group.timeline.inspector
	if inspector == nil {
		return 0, services.NewError(services.KindInvalidArgument, op, fmt.Sprintf("%s: out point unknown and no source inspector configured", c.source))
	}
	info, err := inspector.InspectSource(ctx, c.source)
	if err != nil {
		return 0, services.WrapError(services.KindInvalidArgument, op, fmt.Sprintf("inspect %s", c.source), err)
	}
	if !info.Has(c.kind) {
		return 0, &services.Error{
			Kind:     services.KindMediaKindMismatch,
			Op:       op,
			Message:  fmt.Sprintf("%s has no %s stream", c.source, c.kind),
			Expected: c.kind.String(),
			Actual:   describeSourceKinds(info),
		}
	}
	if info.Duration < c.sourceIn {
		return 0, services.NewError(services.KindInvalidArgument, op, fmt.Sprintf("%s: source in %s beyond media duration %s", c.source, c.sourceIn, info.Duration))
	}
	c.duration = info.Duration - c.sourceIn
	c.resolved = true
	return c.duration, nil
}

// Start returns the clip's position on the timeline.
func (c *Clip) Start(ctx context.Context) (time.Duration, error) {
	if c.placement == PlaceAbsolute || c.prev == nil {
		return c.requestedStart, nil
	}
	return c.prev.End(ctx)
}

// End returns Start plus Duration.
func (c *Clip) End(ctx context.Context) (time.Duration, error) {
	start, err := c.Start(ctx)
	if err != nil {
		return 0, err
	}
	d, err := c.Duration(ctx)
	if err != nil {
		return 0, err
	}
	return start + d, nil
}

// Span returns the clip's start and end on the timeline.
func (c *Clip) Span(ctx context.Context) (time.Duration, time.Duration, error) {
	start, err := c.Start(ctx)
	if err != nil {
		return 0, 0, err
	}
	end, err := c.End(ctx)
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func describeSourceKinds(info SourceInfo) string {
	switch {
	case info.HasAudio && info.HasVideo:
		return "audio+video"
	case info.HasAudio:
		return "audio"
	case info.HasVideo:
		return "video"
	default:
		return "none"
	}
}
