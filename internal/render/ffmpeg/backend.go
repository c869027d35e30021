package ffmpeg

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"splicer/internal/logging"
	"splicer/internal/render"
	"splicer/internal/services"
)

var commandContext = exec.CommandContext

const stderrTailLines = 20

// Option configures the backend.
type Option func(*Backend)

// WithBinary overrides the ffmpeg binary.
func WithBinary(binary string) Option {
	return func(b *Backend) {
		if strings.TrimSpace(binary) != "" {
			b.binary = strings.TrimSpace(binary)
		}
	}
}

// WithThreads limits encoder threads. Zero lets ffmpeg decide.
func WithThreads(n int) Option {
	return func(b *Backend) {
		if n >= 0 {
			b.threads = n
		}
	}
}

// WithLogLevel sets ffmpeg's -loglevel.
func WithLogLevel(level string) Option {
	return func(b *Backend) {
		if strings.TrimSpace(level) != "" {
			b.logLevel = strings.TrimSpace(level)
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// Backend renders jobs with the ffmpeg CLI.
type Backend struct {
	binary   string
	threads  int
	logLevel string
	logger   *slog.Logger
}

// New constructs a backend using defaults.
func New(opts ...Option) *Backend {
	b := &Backend{binary: "ffmpeg", logLevel: "error", logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = logging.NewComponentLogger(b.logger, "ffmpeg")
	return b
}

// Binary returns the ffmpeg executable in use.
func (b *Backend) Binary() string {
	return b.binary
}

// Render runs ffmpeg for the job and blocks until it exits.
func (b *Backend) Render(ctx context.Context, job render.Job) error {
	if job.OutputPath == "" {
		return services.NewError(services.KindInvalidArgument, "render", "output path required")
	}
	graph, err := BuildGraph(job.Description, job.Profile.SampleRate)
	if err != nil {
		return err
	}
	total := job.Description.Duration
	args := b.BuildArgs(graph, job.Profile, job.OutputPath, seconds(total))
	logger := logging.WithContext(ctx, b.logger)
	logger.Debug("starting ffmpeg",
		logging.String("binary", b.binary),
		logging.Int("inputs", len(graph.Inputs)),
		logging.String("filter_complex", graph.String()),
	)

	cmd := commandContext(ctx, b.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "stdout pipe", err)
	}
	stderr := newTailBuffer(stderrTailLines)
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "start ffmpeg", err)
	}

	parser := &progressParser{total: total}
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if update, ok := parser.feed(scanner.Text()); ok {
			job.Report(update)
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := "ffmpeg exited with error"
		if tail := stderr.String(); tail != "" {
			msg = fmt.Sprintf("%s: %s", msg, tail)
		}
		return services.Wrap(services.ErrExternalTool, "render", "ffmpeg", msg, err)
	}
	if scanErr != nil {
		return services.Wrap(services.ErrExternalTool, "render", "ffmpeg", "read progress", scanErr)
	}
	return nil
}

var _ render.Backend = (*Backend)(nil)
