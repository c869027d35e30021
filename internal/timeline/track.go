package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"splicer/internal/services"
)

// Track is an ordered sequence of clips within a group.
type Track struct {
	group       *Group
	index       int
	clips       []*Clip
	transitions []*Transition
}

func (tr *Track) Group() *Group { return tr.group }

// Index is the track's position in its group.
func (tr *Track) Index() int { return tr.index }

// Clips returns the clips in insertion order.
func (tr *Track) Clips() []*Clip {
	return append([]*Clip(nil), tr.clips...)
}

// Transitions returns the clip-to-clip transitions of the track.
func (tr *Track) Transitions() []*Transition {
	return append([]*Transition(nil), tr.transitions...)
}

// AddClip appends a clip referencing source between sourceIn and sourceOut.
// Pass UnknownOut as sourceOut to resolve the clip length from source
// metadata on first access. With PlaceRelative the start argument is ignored
// and the clip begins where the previous clip ends.
func (tr *Track) AddClip(source string, kind MediaKind, placement Placement, start, sourceIn, sourceOut time.Duration) (*Clip, error) {
	const op = "add clip"
	if kind != tr.group.kind {
		return nil, &services.Error{
			Kind:     services.KindMediaKindMismatch,
			Op:       op,
			Message:  fmt.Sprintf("clip kind %s does not match %s group", kind, tr.group.kind),
			Expected: tr.group.kind.String(),
			Actual:   kind.String(),
		}
	}
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, services.NewError(services.KindInvalidArgument, op, "source path is required")
	}
	if placement != PlaceAbsolute && placement != PlaceRelative {
		return nil, services.NewError(services.KindInvalidArgument, op, fmt.Sprintf("unknown placement %d", placement))
	}
	if placement == PlaceAbsolute && start < 0 {
		return nil, services.NewError(services.KindInvalidArgument, op, fmt.Sprintf("start must not be negative (got %s)", start))
	}
	if sourceIn < 0 {
		return nil, services.NewError(services.KindInvalidArgument, op, fmt.Sprintf("source in must not be negative (got %s)", sourceIn))
	}
	if sourceOut != UnknownOut && sourceOut < sourceIn {
		return nil, services.NewError(services.KindInvalidArgument, op, fmt.Sprintf("source out %s precedes source in %s", sourceOut, sourceIn))
	}

	c := &Clip{
		track:          tr,
		index:          len(tr.clips),
		source:         source,
		kind:           kind,
		placement:      placement,
		requestedStart: start,
		sourceIn:       sourceIn,
		sourceOut:      sourceOut,
	}
	if placement == PlaceRelative {
		c.requestedStart = 0
	}
	if len(tr.clips) > 0 {
		c.prev = tr.clips[len(tr.clips)-1]
	}
	if sourceOut != UnknownOut {
		c.duration = sourceOut - sourceIn
		c.resolved = true
	}
	tr.clips = append(tr.clips, c)
	return c, nil
}

// AddTransition anchors a transition between two clips of the track. The
// window [offset, offset+length] must lie within the overlap of both clips.
func (tr *Track) AddTransition(ctx context.Context, from, to *Clip, effect string, offset, length time.Duration, params Parameters) (*Transition, error) {
	const op = "add transition"
	if from == nil || to == nil || from.track != tr || to.track != tr {
		return nil, services.NewError(services.KindInvalidArgument, op, "both clips must belong to the track")
	}
	t, err := newTransition(ctx, op, from, to, effect, offset, length, params)
	if err != nil {
		return nil, err
	}
	tr.transitions = append(tr.transitions, t)
	return t, nil
}

// Span returns the earliest clip start and the latest clip end. An empty
// track spans nothing.
func (tr *Track) Span(ctx context.Context) (time.Duration, time.Duration, error) {
	if len(tr.clips) == 0 {
		return 0, 0, nil
	}
	var start, end time.Duration
	for i, c := range tr.clips {
		s, err := c.Start(ctx)
		if err != nil {
			return 0, 0, err
		}
		e, err := c.End(ctx)
		if err != nil {
			return 0, 0, err
		}
		if i == 0 || s < start {
			start = s
		}
		end = max(end, e)
	}
	return start, end, nil
}

// Duration is the end of the latest clip on the track.
func (tr *Track) Duration(ctx context.Context) (time.Duration, error) {
	_, end, err := tr.Span(ctx)
	return end, err
}
