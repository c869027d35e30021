package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"splicer/internal/fileutil"
	"splicer/internal/logging"
	"splicer/internal/profile"
	"splicer/internal/services"
	"splicer/internal/timeline"
)

// Renderer binds a timeline, an output path, a profile, and a backend for a
// single render.
//
// A Renderer closes its backend in Close when the backend implements
// io.Closer, so give each renderer its own backend instance in that case.
type Renderer struct {
	id         string
	timeline   *timeline.Timeline
	outputPath string
	profile    profile.Profile
	backend    Backend

	logger    *slog.Logger
	progress  func(Progress)
	recorder  Recorder
	timeout   time.Duration
	surplus   SurplusPolicy
	probe     DurationProbe
	tolerance time.Duration

	mu       sync.Mutex
	state    State
	err      error
	closed   bool
	duration time.Duration
}

// New returns a renderer in the Created state. No validation of the timeline
// against the profile happens here.
func New(tl *timeline.Timeline, outputPath string, p profile.Profile, backend Backend, opts ...Option) (*Renderer, error) {
	const op = "new renderer"
	if strings.TrimSpace(outputPath) == "" {
		return nil, services.NewError(services.KindInvalidArgument, op, "Output file name cannot be null")
	}
	if tl == nil {
		return nil, services.NewError(services.KindInvalidArgument, op, "timeline is required")
	}
	if backend == nil {
		return nil, services.NewError(services.KindInvalidArgument, op, "rendering backend is required")
	}
	if err := p.Validate(); err != nil {
		return nil, services.WrapError(services.KindInvalidArgument, op, "invalid render profile", err)
	}
	abs, err := filepath.Abs(outputPath)
	if err != nil {
		return nil, services.WrapError(services.KindInvalidArgument, op, "resolve output path", err)
	}

	r := &Renderer{
		id:         uuid.NewString(),
		timeline:   tl,
		outputPath: abs,
		profile:    p,
		backend:    backend,
		logger:     logging.NewNop(),
		tolerance:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = logging.NewComponentLogger(r.logger, "renderer").With(
		logging.String(logging.FieldRenderID, r.id),
		logging.String(logging.FieldProfile, p.Name),
	)
	return r, nil
}

// ID returns the render identifier.
func (r *Renderer) ID() string { return r.id }

// OutputPath returns the absolute output path.
func (r *Renderer) OutputPath() string { return r.outputPath }

// Profile returns the bound render profile.
func (r *Renderer) Profile() profile.Profile { return r.profile }

// State returns the current lifecycle state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Err returns the failure that moved the renderer to Failed, if any.
func (r *Renderer) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Duration returns the rendered duration once Completed.
func (r *Renderer) Duration() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.duration
}

// Validate checks that the timeline has a group for every media kind the
// profile encodes. It has no filesystem side effects. Calling it again after
// success is a no-op; a failure moves the renderer to Failed.
func (r *Renderer) Validate() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case r.closed:
		return services.NewError(services.KindInvalidState, "validate", "renderer is closed")
	case r.state == StateValidated:
		return nil
	case r.state != StateCreated:
		return services.NewError(services.KindInvalidState, "validate", fmt.Sprintf("cannot validate a %s renderer", r.state))
	}
	if err := r.checkContent(); err != nil {
		r.state = StateFailed
		r.err = err
		logging.WarnWithContext(r.logger, "render validation failed", "render_validation_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.String(logging.FieldErrorHint, "add the missing group or pick a profile that matches the timeline"),
			logging.String(logging.FieldImpact, "no output was written"),
		)
		return err
	}
	r.state = StateValidated
	r.logger.Debug("render validated", logging.String("output", r.outputPath))
	return nil
}

func (r *Renderer) checkContent() error {
	for _, kind := range r.profile.Kinds() {
		if r.timeline.HasGroup(kind) {
			continue
		}
		return &services.Error{
			Kind:     services.KindProfileContentMismatch,
			Op:       "validate",
			Message:  fmt.Sprintf("the selected profile encodes %s information, yet no %s group exists", kind, kind),
			Expected: r.profile.Name,
			Missing:  kind.String(),
		}
	}
	if r.surplus == SurplusReject {
		for _, kind := range []timeline.MediaKind{timeline.Video, timeline.Audio} {
			if r.timeline.HasGroup(kind) && !r.profile.Expects(kind) {
				return &services.Error{
					Kind:     services.KindProfileContentMismatch,
					Op:       "validate",
					Message:  fmt.Sprintf("the timeline has a %s group the selected profile does not encode", kind),
					Expected: r.profile.Name,
					Surplus:  kind.String(),
				}
			}
		}
	}
	return nil
}

// Render validates if needed, then drives the backend to produce the output.
// Success leaves a complete file at the output path; failure leaves no
// partial output behind and the renderer in Failed.
func (r *Renderer) Render(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	r.mu.Lock()
	switch {
	case r.closed:
		r.mu.Unlock()
		return services.NewError(services.KindInvalidState, "render", "renderer is closed")
	case r.state == StateRendering:
		r.mu.Unlock()
		return services.NewError(services.KindInvalidState, "render", "render already in progress")
	case r.state.Terminal():
		r.mu.Unlock()
		return services.NewError(services.KindInvalidState, "render", fmt.Sprintf("renderer already %s", r.state))
	}
	r.mu.Unlock()

	if err := r.Validate(); err != nil {
		r.journal(ctx, r.runRecord(StateFailed, time.Now(), nil, err), true)
		return err
	}

	r.mu.Lock()
	if r.state != StateValidated {
		state := r.state
		r.mu.Unlock()
		return services.NewError(services.KindInvalidState, "render", fmt.Sprintf("renderer is %s", state))
	}
	r.state = StateRendering
	r.mu.Unlock()

	ctx = services.WithRenderID(ctx, r.id)
	ctx = services.WithProfile(ctx, r.profile.Name)
	started := time.Now()
	r.journal(ctx, r.runRecord(StateRendering, started, nil, nil), false)

	desc, err := r.execute(ctx)

	r.mu.Lock()
	if err != nil {
		r.state = StateFailed
		r.err = err
	} else {
		r.state = StateCompleted
		r.duration = desc.Duration
	}
	state := r.state
	r.mu.Unlock()

	run := r.runRecord(state, started, desc, err)
	if err != nil {
		logging.ErrorWithContext(r.logger, "render failed", "render_failed",
			logging.Error(err),
			logging.ErrorKind(err),
			logging.Duration("elapsed", run.FinishedAt.Sub(started)),
		)
	} else {
		r.logger.Info("render complete",
			logging.String(logging.FieldEventType, "render_complete"),
			logging.String("output", r.outputPath),
			logging.Duration("duration", desc.Duration),
			logging.Int("groups", len(desc.Groups)),
			logging.Int("segments", desc.Segments()),
			logging.Duration("elapsed", run.FinishedAt.Sub(started)),
		)
	}
	r.journal(ctx, run, true)
	return err
}

func (r *Renderer) execute(ctx context.Context) (*timeline.Description, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	if err := ctx.Err(); err != nil {
		return nil, cancelled("render", err)
	}

	lock, err := acquireOutputLock(r.outputPath)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := lock.release(); err != nil {
			r.logger.Debug("output lock release failed", logging.Error(err))
		}
	}()

	describeCtx := services.WithStage(ctx, "describe")
	desc, err := r.timeline.Describe(describeCtx, r.profile.Kinds()...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, cancelled("describe", errors.Join(ctxErr, err))
		}
		return nil, err
	}
	if desc.Duration <= 0 || desc.Segments() == 0 {
		return desc, services.NewError(services.KindInvalidArgument, "render", "timeline has no content to render")
	}

	tempPath := fileutil.TempSibling(r.outputPath, shortID(r.id))
	committed := false
	defer func() {
		if committed {
			return
		}
		if err := fileutil.RemoveIfExists(tempPath); err != nil {
			logging.WarnWithContext(r.logger, "partial output cleanup failed", "render_cleanup_failed",
				logging.String("temp_path", tempPath),
				logging.Error(err),
				logging.String(logging.FieldImpact, "a partial file remains next to the output"),
			)
		}
	}()

	encodeCtx := services.WithStage(ctx, "encode")
	logging.WithContext(encodeCtx, r.logger).Info("render started",
		logging.String(logging.FieldEventType, "render_started"),
		logging.String("output", r.outputPath),
		logging.Duration("duration", desc.Duration),
		logging.Int("groups", len(desc.Groups)),
		logging.Int("segments", desc.Segments()),
	)
	job := Job{
		Description: desc,
		OutputPath:  tempPath,
		Profile:     r.profile,
		Progress:    r.progressSink(encodeCtx),
	}
	if err := r.backend.Render(encodeCtx, job); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return desc, cancelled("encode", errors.Join(ctxErr, err))
		}
		return desc, services.WrapError(services.KindBackend, "encode", "rendering backend failed", err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return desc, cancelled("encode", ctxErr)
	}
	if _, ok := fileutil.NonEmptyFile(tempPath); !ok {
		return desc, services.NewError(services.KindBackend, "encode", "rendering backend produced no output")
	}

	// Verify before the move so a bad encode never replaces an existing output.
	if r.probe != nil {
		if err := r.verify(services.WithStage(ctx, "verify"), tempPath, desc.Duration); err != nil {
			return desc, err
		}
	}

	if err := fileutil.MoveFile(tempPath, r.outputPath); err != nil {
		return desc, services.WrapError(services.KindBackend, "commit", "move rendered output into place", err)
	}
	committed = true
	return desc, nil
}

func (r *Renderer) verify(ctx context.Context, path string, want time.Duration) error {
	got, err := r.probe.ProbeDuration(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return cancelled("verify", errors.Join(ctxErr, err))
		}
		return services.WrapError(services.KindBackend, "verify", "probe rendered output", err)
	}
	diff := got - want
	if diff < 0 {
		diff = -diff
	}
	if diff > r.tolerance {
		return &services.Error{
			Kind:     services.KindBackend,
			Op:       "verify",
			Message:  "rendered duration does not match the timeline",
			Expected: want.String(),
			Actual:   got.String(),
		}
	}
	logging.WithContext(ctx, r.logger).Debug("output duration verified",
		logging.Duration("duration", got),
		logging.Duration("tolerance", r.tolerance),
	)
	return nil
}

func (r *Renderer) progressSink(ctx context.Context) func(Progress) {
	logger := logging.WithContext(ctx, r.logger)
	sampler := logging.NewProgressSampler(10)
	var mu sync.Mutex
	return func(p Progress) {
		mu.Lock()
		emit := sampler.ShouldLog(p.Stage, p.Percent)
		mu.Unlock()
		if emit {
			logger.Info("render progress",
				logging.String(logging.FieldProgressStage, p.Stage),
				logging.Float64(logging.FieldProgressPercent, p.Percent),
				logging.String(logging.FieldProgressMessage, p.Message),
			)
		}
		if r.progress != nil {
			r.progress(p)
		}
	}
}

// Close releases backend resources. It is safe to call in any state except
// while a render is running, and more than once.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	if r.state == StateRendering {
		return services.NewError(services.KindInvalidState, "close", "render in progress; cancel its context first")
	}
	r.closed = true
	if closer, ok := r.backend.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return services.WrapError(services.KindBackend, "close", "release rendering backend", err)
		}
	}
	return nil
}

func (r *Renderer) runRecord(state State, started time.Time, desc *timeline.Description, err error) Run {
	run := Run{
		ID:         r.id,
		OutputPath: r.outputPath,
		Profile:    r.profile.Name,
		State:      state,
		StartedAt:  started,
	}
	if state.Terminal() {
		run.FinishedAt = time.Now()
	}
	if desc != nil {
		run.Groups = len(desc.Groups)
		run.Segments = desc.Segments()
		run.Duration = desc.Duration
	}
	if err != nil {
		run.ErrorKind = services.KindOf(err).String()
		run.Error = err.Error()
	}
	return run
}

// journal writes to the recorder. Journal failures never change the render
// outcome; they are reported as warnings.
func (r *Renderer) journal(ctx context.Context, run Run, finish bool) {
	if r.recorder == nil {
		return
	}
	// The journal must be written even when the render was cancelled.
	ctx = context.WithoutCancel(ctx)
	var err error
	if finish {
		err = r.recorder.Finish(ctx, run)
	} else {
		err = r.recorder.Begin(ctx, run)
	}
	if err != nil {
		logging.WarnWithContext(r.logger, "render history write failed", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check history.path permissions"),
			logging.String(logging.FieldImpact, "this render is missing from history"),
		)
	}
}

func cancelled(op string, cause error) error {
	return services.WrapError(services.KindCancelled, op, "render cancelled", cause)
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
