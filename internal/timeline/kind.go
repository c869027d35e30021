package timeline

import (
	"fmt"
	"strings"
)

// MediaKind distinguishes audio and video content.
type MediaKind int

const (
	Audio MediaKind = iota + 1
	Video
)

func (k MediaKind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Video:
		return "video"
	default:
		return "unknown"
	}
}

// Valid reports whether k is Audio or Video.
func (k MediaKind) Valid() bool {
	return k == Audio || k == Video
}

// ParseMediaKind maps "audio"/"video" (case-insensitive) to a MediaKind.
func ParseMediaKind(value string) (MediaKind, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "audio":
		return Audio, nil
	case "video":
		return Video, nil
	default:
		return 0, fmt.Errorf("unknown media kind %q", value)
	}
}

// Placement selects how a clip's start is determined on its track.
type Placement int

const (
	// PlaceAbsolute positions the clip at the requested start offset.
	PlaceAbsolute Placement = iota
	// PlaceRelative positions the clip at the end of the previous clip and
	// ignores the requested start.
	PlaceRelative
)

func (p Placement) String() string {
	switch p {
	case PlaceAbsolute:
		return "absolute"
	case PlaceRelative:
		return "relative"
	default:
		return "unknown"
	}
}
