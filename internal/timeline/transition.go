package timeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"splicer/internal/services"
)

// Element is a timeline item a transition can be anchored to: a clip within a
// track, or a track within a group.
type Element interface {
	Index() int
	Span(ctx context.Context) (time.Duration, time.Duration, error)
}

// Transition is a time-bounded effect bridging two overlapping elements.
type Transition struct {
	effect string
	offset time.Duration
	length time.Duration
	params Parameters
	from   Element
	to     Element
}

// Effect names the backend effect, e.g. "fade" or "key".
func (t *Transition) Effect() string { return t.effect }

// Offset is the transition start on the timeline.
func (t *Transition) Offset() time.Duration { return t.offset }

func (t *Transition) Length() time.Duration { return t.length }

// End is Offset plus Length.
func (t *Transition) End() time.Duration { return t.offset + t.length }

// Params returns a copy of the transition parameters.
func (t *Transition) Params() Parameters { return t.params.Clone() }

// From returns the outgoing anchor.
func (t *Transition) From() Element { return t.from }

// To returns the incoming anchor.
func (t *Transition) To() Element { return t.to }

func newTransition(ctx context.Context, op string, from, to Element, effect string, offset, length time.Duration, params Parameters) (*Transition, error) {
	effect = strings.TrimSpace(effect)
	if effect == "" {
		return nil, services.NewError(services.KindInvalidTransitionRange, op, "effect name is required")
	}
	if from.Index() == to.Index() {
		return nil, services.NewError(services.KindInvalidArgument, op, "a transition needs two distinct anchors")
	}
	for _, key := range params.Keys() {
		if key == "" {
			return nil, services.NewError(services.KindInvalidArgument, op, "parameter keys must be non-empty")
		}
	}
	if offset < 0 || length <= 0 {
		return nil, services.NewError(services.KindInvalidTransitionRange, op, fmt.Sprintf("window %s+%s is empty or negative", offset, length))
	}

	fromStart, fromEnd, err := from.Span(ctx)
	if err != nil {
		return nil, err
	}
	toStart, toEnd, err := to.Span(ctx)
	if err != nil {
		return nil, err
	}
	overlapStart := max(fromStart, toStart)
	overlapEnd := min(fromEnd, toEnd)
	if overlapEnd <= overlapStart {
		return nil, services.NewError(services.KindInvalidTransitionRange, op, "anchors do not overlap")
	}
	if offset < overlapStart || offset+length > overlapEnd {
		return nil, services.NewError(
			services.KindInvalidTransitionRange,
			op,
			fmt.Sprintf("window [%s, %s] outside overlap [%s, %s]", offset, offset+length, overlapStart, overlapEnd),
		)
	}

	return &Transition{
		effect: effect,
		offset: offset,
		length: length,
		params: params.Clone(),
		from:   from,
		to:     to,
	}, nil
}
