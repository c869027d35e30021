package ffprobe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"splicer/internal/timeline"
)

// Prober inspects media with a fixed ffprobe binary.
type Prober struct {
	binary string

	mu    sync.Mutex
	cache map[string]timeline.SourceInfo
}

// NewProber returns a prober for binary (ffprobe when empty).
func NewProber(binary string) *Prober {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	return &Prober{binary: binary, cache: make(map[string]timeline.SourceInfo)}
}

// InspectSource reports the duration and stream kinds of a source file.
// Results are cached per path for the prober's lifetime.
func (p *Prober) InspectSource(ctx context.Context, path string) (timeline.SourceInfo, error) {
	p.mu.Lock()
	info, ok := p.cache[path]
	p.mu.Unlock()
	if ok {
		return info, nil
	}

	result, err := Inspect(ctx, p.binary, path)
	if err != nil {
		return timeline.SourceInfo{}, err
	}
	duration, err := result.Duration()
	if err != nil {
		return timeline.SourceInfo{}, fmt.Errorf("ffprobe inspect %s: %w", path, err)
	}
	info = timeline.SourceInfo{
		Duration: duration,
		HasAudio: result.Has("audio"),
		HasVideo: result.Has("video"),
	}

	p.mu.Lock()
	p.cache[path] = info
	p.mu.Unlock()
	return info, nil
}

// ProbeDuration reports the container duration of a rendered file. It never
// uses the source cache since outputs are rewritten.
func (p *Prober) ProbeDuration(ctx context.Context, path string) (time.Duration, error) {
	result, err := Inspect(ctx, p.binary, path)
	if err != nil {
		return 0, err
	}
	return result.Duration()
}

var _ timeline.SourceInspector = (*Prober)(nil)
