package logging

import (
	"math"
	"strings"
)

// ProgressSampler thins a progress stream to one event per stage change or
// per percent bucket crossed.
type ProgressSampler struct {
	step   float64
	stage  string
	bucket int
}

// NewProgressSampler samples every step percent. Non-positive steps use 5.
func NewProgressSampler(step float64) *ProgressSampler {
	if step <= 0 {
		step = 5
	}
	return &ProgressSampler{step: step, bucket: -1}
}

// ShouldLog reports whether an update at percent within stage is worth
// emitting. A negative percent means unknown and only a stage change passes.
// A nil sampler passes everything.
func (s *ProgressSampler) ShouldLog(stage string, percent float64) bool {
	if s == nil {
		return true
	}
	changed := false
	if stage = strings.TrimSpace(stage); stage != "" && stage != s.stage {
		s.stage = stage
		s.bucket = -1
		changed = true
	}
	if percent < 0 {
		return changed
	}
	bucket := int(math.Min(percent, 100) / s.step)
	if bucket > s.bucket {
		s.bucket = bucket
		return true
	}
	return changed
}
