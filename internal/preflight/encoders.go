package preflight

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"slices"
	"strings"
	"time"

	"splicer/internal/profile"
)

var commandContext = exec.CommandContext

const encoderProbeTimeout = 5 * time.Second

// ProbeEncoders lists the encoders the given ffmpeg binary was built with.
func ProbeEncoders(ctx context.Context, binary string) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, encoderProbeTimeout)
	defer cancel()

	cmd := commandContext(ctx, binary, "-hide_banner", "-encoders")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("list %s encoders: %w", binary, err)
	}
	return parseEncoders(output), nil
}

// parseEncoders reads `ffmpeg -encoders` output. Encoder rows follow the
// " ------" separator and carry the encoder name in the second column.
func parseEncoders(output []byte) map[string]bool {
	encoders := make(map[string]bool)
	scanner := bufio.NewScanner(bytes.NewReader(output))
	listing := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !listing {
			listing = strings.HasPrefix(line, "------")
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		encoders[fields[1]] = true
	}
	return encoders
}

// CheckProfileEncoders reports, per profile, whether ffmpeg offers the
// codecs it names. Profiles that leave codecs to the container default pass.
func CheckProfileEncoders(encoders map[string]bool, profiles []profile.Profile) []Result {
	results := make([]Result, 0, len(profiles))
	for _, p := range profiles {
		var missing []string
		for _, codec := range profileCodecs(p) {
			if !encoders[codec] {
				missing = append(missing, codec)
			}
		}
		if len(missing) > 0 {
			results = append(results, Result{Name: p.Name, Detail: "missing encoders: " + strings.Join(missing, ", ")})
			continue
		}
		results = append(results, Result{Name: p.Name, Passed: true, Detail: "encoders available"})
	}
	return results
}

func profileCodecs(p profile.Profile) []string {
	var codecs []string
	if p.ExpectsVideo && p.VideoCodec != "" && p.VideoCodec != "copy" {
		codecs = append(codecs, p.VideoCodec)
	}
	if p.ExpectsAudio && p.AudioCodec != "" && p.AudioCodec != "copy" && !slices.Contains(codecs, p.AudioCodec) {
		codecs = append(codecs, p.AudioCodec)
	}
	return codecs
}
