package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"splicer/internal/config"
	"splicer/internal/media/ffprobe"
	"splicer/internal/profile"
	"splicer/internal/timeline"
	"splicer/internal/timelinexml"
)

// loadTimeline reads a timeline document, resolving clips without a stop
// time through prober.
func loadTimeline(ctx context.Context, cfg *config.Config, prober *ffprobe.Prober, path string) (*timeline.Timeline, error) {
	expanded, err := config.ExpandPath(strings.TrimSpace(path))
	if err != nil {
		return nil, err
	}
	file, err := os.Open(expanded)
	if err != nil {
		return nil, fmt.Errorf("open timeline: %w", err)
	}
	defer file.Close()

	tl, err := timelinexml.Read(ctx, file,
		timeline.WithFrameRate(cfg.Render.FrameRate),
		timeline.WithInspector(prober),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(expanded), err)
	}
	return tl, nil
}

// resolveProfile picks the named profile, or the configured default.
func resolveProfile(cfg *config.Config, name string) (profile.Profile, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return profile.Profile{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = cfg.Render.DefaultProfile
	}
	if name == "" {
		return profile.Profile{}, fmt.Errorf("no profile selected; pass --profile or set render.default_profile")
	}
	p, ok := catalog.Lookup(name)
	if !ok {
		return profile.Profile{}, fmt.Errorf("unknown profile %q (see `splicer profiles`)", name)
	}
	return p, nil
}

// resolveOutputPath returns the explicit output, or the timeline name with
// the profile's extension placed in paths.output_dir (or beside the
// timeline when unset).
func resolveOutputPath(cfg *config.Config, timelinePath, output string, p profile.Profile) (string, error) {
	if strings.TrimSpace(output) != "" {
		return cfg.ResolveOutput(output)
	}
	base := strings.TrimSuffix(filepath.Base(timelinePath), filepath.Ext(timelinePath))
	name := base + p.Extension
	if cfg.Paths.OutputDir != "" {
		return cfg.ResolveOutput(name)
	}
	expanded, err := config.ExpandPath(timelinePath)
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(expanded), name), nil
}
