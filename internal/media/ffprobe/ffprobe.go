package ffprobe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// Result is the subset of `ffprobe -show_format -show_streams` output the
// timeline needs.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes one elementary stream.
type Stream struct {
	Index       int            `json:"index"`
	CodecName   string         `json:"codec_name"`
	CodecType   string         `json:"codec_type"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	SampleRate  string         `json:"sample_rate"`
	Channels    int            `json:"channels"`
	Disposition map[string]int `json:"disposition"`
}

// Playable reports whether the stream carries content of kind ("audio" or
// "video"). Embedded cover art is not playable video.
func (s Stream) Playable(kind string) bool {
	if !strings.EqualFold(s.CodecType, kind) {
		return false
	}
	return kind != "video" || s.Disposition["attached_pic"] != 1
}

// Format is container-level metadata.
type Format struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect runs binary (ffprobe when empty) against path.
func Inspect(ctx context.Context, binary, path string) (Result, error) {
	if binary = strings.TrimSpace(binary); binary == "" {
		binary = "ffprobe"
	}
	if path = strings.TrimSpace(path); path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	var result Result
	if err := json.Unmarshal(out, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Has reports whether any stream is playable content of kind.
func (r Result) Has(kind string) bool {
	return r.Count(kind) > 0
}

// Count returns the number of playable streams of kind.
func (r Result) Count(kind string) int {
	n := 0
	for _, s := range r.Streams {
		if s.Playable(kind) {
			n++
		}
	}
	return n
}

// Duration parses the container duration rounded to the nanosecond.
func (r Result) Duration() (time.Duration, error) {
	raw := strings.TrimSpace(r.Format.Duration)
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < 0 {
		return 0, fmt.Errorf("invalid duration %q", r.Format.Duration)
	}
	return time.Duration(math.Round(seconds * float64(time.Second))), nil
}
