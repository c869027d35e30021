package drapto

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	draptolib "github.com/five82/drapto"

	"splicer/internal/logging"
	"splicer/internal/render"
)

var commandContext = exec.CommandContext

// Encoder turns an intermediate file into an AV1 encode inside outputDir and
// returns the encoded path.
type Encoder interface {
	Encode(ctx context.Context, inputPath, outputDir string, progress func(render.Progress)) (string, error)
}

// Library implements Encoder using the Drapto Go library directly.
type Library struct {
	logger *slog.Logger
}

// NewLibrary constructs a Library encoder.
func NewLibrary(logger *slog.Logger) *Library {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Library{logger: logger}
}

// Encode encodes a video file using the Drapto library.
func (l *Library) Encode(ctx context.Context, inputPath, outputDir string, progress func(render.Progress)) (string, error) {
	if err := checkPaths(inputPath, outputDir); err != nil {
		return "", err
	}
	encoder, err := draptolib.New(draptolib.WithResponsive())
	if err != nil {
		return "", err
	}
	rep := newProgressReporter(progress, logging.WithContext(ctx, l.logger))
	if _, err := encoder.EncodeWithReporter(ctx, inputPath, outputDir, rep); err != nil {
		return "", err
	}
	return encodedPath(inputPath, outputDir), nil
}

func checkPaths(inputPath, outputDir string) error {
	if inputPath == "" {
		return errors.New("input path required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return errors.New("output directory required")
	}
	return nil
}

func encodedPath(inputPath, outputDir string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	return filepath.Join(strings.TrimSpace(outputDir), stem+".mkv")
}

func encodeMessage(speed, fps float64, eta time.Duration) string {
	parts := make([]string, 0, 3)
	if speed > 0 {
		parts = append(parts, fmt.Sprintf("%.1fx", speed))
	}
	if fps > 0 {
		parts = append(parts, fmt.Sprintf("%.0f fps", fps))
	}
	if eta > 0 {
		parts = append(parts, "eta "+eta.Round(time.Second).String())
	}
	return strings.Join(parts, ", ")
}

var (
	_ Encoder = (*Library)(nil)
	_ Encoder = (*CLI)(nil)
)
