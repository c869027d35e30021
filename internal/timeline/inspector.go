package timeline

import (
	"context"
	"time"
)

// SourceInfo is the track-level metadata of a source media file.
type SourceInfo struct {
	Duration time.Duration
	HasAudio bool
	HasVideo bool
}

// Has reports whether the source carries a stream of the given kind.
func (i SourceInfo) Has(kind MediaKind) bool {
	switch kind {
	case Audio:
		return i.HasAudio
	case Video:
		return i.HasVideo
	default:
		return false
	}
}

// SourceInspector resolves metadata for source media paths.
type SourceInspector interface {
	InspectSource(ctx context.Context, path string) (SourceInfo, error)
}

// InspectorFunc adapts a function to SourceInspector.
type InspectorFunc func(ctx context.Context, path string) (SourceInfo, error)

func (f InspectorFunc) InspectSource(ctx context.Context, path string) (SourceInfo, error) {
	return f(ctx, path)
}
