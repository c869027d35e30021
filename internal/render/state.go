package render

import (
	"fmt"
	"strings"
)

// State is the renderer lifecycle position.
type State int

const (
	StateCreated State = iota
	StateValidated
	StateRendering
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateValidated:
		return "validated"
	case StateRendering:
		return "rendering"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ParseState maps a State name back to its value.
func ParseState(value string) (State, error) {
	for s := StateCreated; s <= StateFailed; s++ {
		if s.String() == strings.ToLower(strings.TrimSpace(value)) {
			return s, nil
		}
	}
	return StateCreated, fmt.Errorf("unknown render state %q", value)
}

// Terminal reports whether no further transition can leave s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// SurplusPolicy decides what happens to groups of a kind the profile does not consume.
type SurplusPolicy int

const (
	// SurplusIgnore renders only the consumed kinds.
	SurplusIgnore SurplusPolicy = iota
	// SurplusReject fails validation when unconsumed groups exist.
	SurplusReject
)

func (p SurplusPolicy) String() string {
	if p == SurplusReject {
		return "reject"
	}
	return "ignore"
}

// ParseSurplusPolicy maps "ignore"/"reject" to a policy. Empty means ignore.
func ParseSurplusPolicy(value string) (SurplusPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "ignore":
		return SurplusIgnore, nil
	case "reject":
		return SurplusReject, nil
	default:
		return SurplusIgnore, fmt.Errorf("unknown surplus group policy %q", value)
	}
}
