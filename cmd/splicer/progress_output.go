package main

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"splicer/internal/logging"
	"splicer/internal/render"
)

// progressPrinter writes sampled progress lines for interactive renders.
type progressPrinter struct {
	mu      sync.Mutex
	out     io.Writer
	sampler *logging.ProgressSampler
}

func newProgressPrinter(out io.Writer) *progressPrinter {
	return &progressPrinter{out: out, sampler: logging.NewProgressSampler(10)}
}

func (p *progressPrinter) report(update render.Progress) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.sampler.ShouldLog(update.Stage, update.Percent) {
		return
	}
	fmt.Fprintln(p.out, formatProgress(update))
}

func formatProgress(update render.Progress) string {
	stage := strings.TrimSpace(update.Stage)
	if stage == "" {
		stage = "render"
	}
	parts := []string{stage}
	if update.Percent >= 0 {
		parts = append(parts, fmt.Sprintf("%5.1f%%", update.Percent))
	}
	if update.OutTime > 0 {
		parts = append(parts, update.OutTime.Truncate(10*time.Millisecond).String())
	}
	if msg := strings.TrimSpace(update.Message); msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, "  ")
}
