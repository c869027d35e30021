package services

import (
	"errors"
	"fmt"
	"strings"
)

// Tool-level markers used when wrapping failures from external binaries and
// libraries. Domain failures use *Error instead.
var (
	ErrExternalTool  = errors.New("external tool error")
	ErrValidation    = errors.New("validation error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrTimeout       = errors.New("timeout")
	ErrTransient     = errors.New("transient failure")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind classifies splicer failures.
type Kind int

const (
	KindUnknown Kind = iota
	// KindInvalidArgument covers malformed structural input detected at construction time.
	KindInvalidArgument
	// KindMediaKindMismatch reports a clip whose kind differs from its group.
	KindMediaKindMismatch
	// KindProfileContentMismatch reports timeline content the profile cannot consume.
	KindProfileContentMismatch
	// KindInvalidTransitionRange reports a transition window outside its anchors' overlap.
	KindInvalidTransitionRange
	// KindBackend wraps any failure surfaced by the rendering backend.
	KindBackend
	// KindCancelled reports a render aborted by cancellation or timeout.
	KindCancelled
	// KindInvalidState reports a renderer operation attempted in the wrong state.
	KindInvalidState
	// KindOutputLocked reports another render holding the output path.
	KindOutputLocked
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindMediaKindMismatch:
		return "media_kind_mismatch"
	case KindProfileContentMismatch:
		return "profile_content_mismatch"
	case KindInvalidTransitionRange:
		return "invalid_transition_range"
	case KindBackend:
		return "backend"
	case KindCancelled:
		return "cancelled"
	case KindInvalidState:
		return "invalid_state"
	case KindOutputLocked:
		return "output_locked"
	default:
		return "unknown"
	}
}

// Sentinels usable with errors.Is to match any *Error of the same kind.
var (
	ErrInvalidArgument        = &Error{Kind: KindInvalidArgument}
	ErrMediaKindMismatch      = &Error{Kind: KindMediaKindMismatch}
	ErrProfileContentMismatch = &Error{Kind: KindProfileContentMismatch}
	ErrInvalidTransitionRange = &Error{Kind: KindInvalidTransitionRange}
	ErrBackend                = &Error{Kind: KindBackend}
	ErrCancelled              = &Error{Kind: KindCancelled}
	ErrInvalidState           = &Error{Kind: KindInvalidState}
	ErrOutputLocked           = &Error{Kind: KindOutputLocked}
)

// Error is the typed failure returned by the timeline model and the renderer.
// Expected/Actual describe media kind mismatches; Missing/Surplus name the
// group kind behind a profile mismatch.
type Error struct {
	Kind     Kind
	Op       string
	Message  string
	Expected string
	Actual   string
	Missing  string
	Surplus  string
	Err      error
}

// NewError constructs an *Error of the given kind.
func NewError(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// WrapError constructs an *Error of the given kind around cause.
func WrapError(kind Kind, op, message string, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	detail := buildDetail(e.Op, "", e.Message)
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, detail, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, detail)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches another *Error by kind so the exported sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// ErrorKind returns the string classification of the error.
func (e *Error) ErrorKind() string {
	if e == nil {
		return KindUnknown.String()
	}
	return e.Kind.String()
}

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var typed *Error
	if errors.As(err, &typed) && typed != nil {
		return typed.Kind
	}
	return KindUnknown
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
