package drapto

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"splicer/internal/render"
	"splicer/internal/services"
)

// Option configures the CLI encoder.
type Option func(*CLI)

// WithBinary overrides the drapto executable.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// CLI runs `drapto encode` as a child process and follows its
// --progress-json stream.
type CLI struct {
	binary string
}

// NewCLI returns a CLI encoder running "drapto" unless overridden.
func NewCLI(opts ...Option) *CLI {
	c := &CLI{binary: "drapto"}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// cliEvent is one line of drapto's JSON progress stream.
type cliEvent struct {
	Type       string  `json:"type"`
	Percent    float64 `json:"percent"`
	Stage      string  `json:"stage"`
	Message    string  `json:"message"`
	ETASeconds float64 `json:"eta_seconds"`
	Speed      float64 `json:"speed"`
	FPS        float64 `json:"fps"`
}

func (e cliEvent) progress() render.Progress {
	if e.Type == "encoding_progress" {
		eta := time.Duration(e.ETASeconds * float64(time.Second))
		return render.Progress{Stage: stageEncode, Percent: e.Percent, Message: encodeMessage(e.Speed, e.FPS, eta)}
	}
	return render.Progress{Stage: e.Stage, Percent: e.Percent, Message: e.Message}
}

// Encode runs drapto on inputPath and returns the encoded file in outputDir.
// Non-JSON lines on stdout are ignored; stderr is kept for the error.
func (c *CLI) Encode(ctx context.Context, inputPath, outputDir string, progress func(render.Progress)) (string, error) {
	if err := checkPaths(inputPath, outputDir); err != nil {
		return "", err
	}
	outputDir = strings.TrimSpace(outputDir)

	cmd := commandContext(ctx, c.binary, "encode", "--input", inputPath, "--output", outputDir, "--responsive", "--progress-json") //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return "", services.Wrap(services.ErrExternalTool, stageEncode, "start drapto", c.binary, err)
	}

	readErr := followEvents(stdout, progress)
	if err := cmd.Wait(); err != nil {
		msg := lastLine(stderr.String())
		if msg == "" {
			msg = "drapto encode failed"
		}
		return "", services.Wrap(services.ErrExternalTool, stageEncode, "drapto encode", msg, err)
	}
	if readErr != nil {
		return "", fmt.Errorf("read drapto output: %w", readErr)
	}
	return encodedPath(inputPath, outputDir), nil
}

func followEvents(r io.Reader, progress func(render.Progress)) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var ev cliEvent
		if json.Unmarshal(scanner.Bytes(), &ev) != nil || progress == nil {
			continue
		}
		progress(ev.progress())
	}
	return scanner.Err()
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
