package drapto

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"splicer/internal/fileutil"
	"splicer/internal/logging"
	"splicer/internal/profile"
	"splicer/internal/render"
	"splicer/internal/services"
)

// BackendOption configures a Backend.
type BackendOption func(*Backend)

// WithEncoder replaces the Drapto library encoder.
func WithEncoder(encoder Encoder) BackendOption {
	return func(b *Backend) {
		if encoder != nil {
			b.encoder = encoder
		}
	}
}

// WithWorkDir sets where intermediates are staged. Defaults to the output
// directory.
func WithWorkDir(dir string) BackendOption {
	return func(b *Backend) {
		b.workDir = strings.TrimSpace(dir)
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) BackendOption {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Backend renders a lossless intermediate with an inner backend and encodes
// it to AV1.
type Backend struct {
	inner   render.Backend
	encoder Encoder
	workDir string
	logger  *slog.Logger
}

// NewBackend wraps inner, which must produce Matroska output.
func NewBackend(inner render.Backend, opts ...BackendOption) *Backend {
	b := &Backend{inner: inner, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "drapto")
	if b.encoder == nil {
		b.encoder = NewLibrary(b.logger)
	}
	return b
}

// Render composes the job to an intermediate and encodes it into
// job.OutputPath.
func (b *Backend) Render(ctx context.Context, job render.Job) error {
	if b.inner == nil {
		return services.NewError(services.KindInvalidArgument, "render", "drapto backend requires an inner backend")
	}
	workDir := b.workDir
	if workDir == "" {
		workDir = filepath.Dir(job.OutputPath)
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	scratch, err := os.MkdirTemp(workDir, "splicer-drapto-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(scratch); err != nil {
			b.logger.Warn("scratch cleanup failed", logging.String("path", scratch), logging.Error(err))
		}
	}()

	intermediate := filepath.Join(scratch, "intermediate.mkv")
	compose := job
	compose.OutputPath = intermediate
	compose.Profile = IntermediateProfile(job.Profile)
	compose.Progress = func(p render.Progress) {
		p.Stage = stageCompose
		job.Report(p)
	}
	if err := b.inner.Render(ctx, compose); err != nil {
		return err
	}

	encodeDir := filepath.Join(scratch, "encoded")
	if err := os.MkdirAll(encodeDir, 0o755); err != nil {
		return fmt.Errorf("create encode dir: %w", err)
	}
	encoded, err := b.encoder.Encode(ctx, intermediate, encodeDir, job.Report)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return services.Wrap(services.ErrExternalTool, "render", "drapto", "encode failed", err)
	}
	if err := fileutil.MoveFile(encoded, job.OutputPath); err != nil {
		return fmt.Errorf("move encoded output: %w", err)
	}
	return nil
}

// Close releases the inner backend when it holds resources.
func (b *Backend) Close() error {
	if closer, ok := b.inner.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// IntermediateProfile derives the lossless Matroska profile used for the
// compose pass.
func IntermediateProfile(p profile.Profile) profile.Profile {
	out := p
	out.Name = p.Name + "-intermediate"
	out.Encoder = profile.EncoderFFmpeg
	out.Container = "matroska"
	out.Extension = ".mkv"
	out.VideoCodec = "ffv1"
	out.AudioCodec = "flac"
	out.VideoBitrate = ""
	out.AudioBitrate = ""
	out.Quality = 0
	out.Extra = nil
	return out
}

var _ render.Backend = (*Backend)(nil)
