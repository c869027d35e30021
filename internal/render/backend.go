package render

import (
	"context"
	"time"

	"splicer/internal/profile"
	"splicer/internal/timeline"
)

// Job is the unit of work handed to a Backend.
type Job struct {
	// Description holds only the groups the profile consumes.
	Description *timeline.Description
	// OutputPath is where the backend must write the encoded file.
	OutputPath string
	Profile    profile.Profile
	// Progress may be nil.
	Progress func(Progress)
}

// Report forwards p to the job's progress callback when one is set.
func (j Job) Report(p Progress) {
	if j.Progress != nil {
		j.Progress(p)
	}
}

// Progress is a backend progress update.
type Progress struct {
	Stage   string
	Percent float64
	OutTime time.Duration
	Message string
}

// Backend renders a structural description into an encoded file. Render must
// block until the output is complete or has failed, and must honour ctx
// cancellation.
type Backend interface {
	Render(ctx context.Context, job Job) error
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(ctx context.Context, job Job) error

func (f BackendFunc) Render(ctx context.Context, job Job) error {
	return f(ctx, job)
}

// DurationProbe reports the playable duration of a rendered file.
type DurationProbe interface {
	ProbeDuration(ctx context.Context, path string) (time.Duration, error)
}

// Run summarizes one render for journaling.
type Run struct {
	ID         string
	OutputPath string
	Profile    string
	State      State
	ErrorKind  string
	Error      string
	Groups     int
	Segments   int
	Duration   time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// Recorder journals render runs.
type Recorder interface {
	Begin(ctx context.Context, run Run) error
	Finish(ctx context.Context, run Run) error
}
