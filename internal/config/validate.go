package config

import (
	"errors"
	"fmt"
	"strings"

	"splicer/internal/profile"
	"splicer/internal/timeline"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRender(); err != nil {
		return err
	}
	if err := c.validateFFmpeg(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	catalog, err := c.Catalog()
	if err != nil {
		return err
	}
	if c.Render.DefaultProfile != "" {
		if _, ok := catalog.Lookup(c.Render.DefaultProfile); !ok {
			return fmt.Errorf("render.default_profile: unknown profile %q", c.Render.DefaultProfile)
		}
	}
	return nil
}

func (c *Config) validateRender() error {
	switch c.Render.SurplusGroups {
	case "ignore", "reject":
	default:
		return fmt.Errorf("render.surplus_groups: must be ignore or reject, got %q", c.Render.SurplusGroups)
	}
	if c.Render.FrameRate <= 0 {
		return errors.New("render.frame_rate must be positive")
	}
	if c.Render.TimeoutSeconds < 0 {
		return errors.New("render.timeout_seconds must not be negative")
	}
	if c.Render.DurationTolerance < 0 {
		return errors.New("render.duration_tolerance must not be negative")
	}
	return nil
}

func (c *Config) validateFFmpeg() error {
	if c.FFmpeg.Threads < 0 {
		return errors.New("ffmpeg.threads must not be negative")
	}
	switch c.FFmpeg.LogLevel {
	case "quiet", "panic", "fatal", "error", "warning", "info", "verbose", "debug":
		return nil
	default:
		return fmt.Errorf("ffmpeg.log_level: unsupported value %q", c.FFmpeg.LogLevel)
	}
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && strings.TrimSpace(c.History.Path) == "" {
		return errors.New("history.path must be set when history is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
		return nil
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
}

// Catalog returns the built-in profiles overlaid with the configured ones.
func (c *Config) Catalog() (*profile.Catalog, error) {
	catalog := profile.NewCatalog()
	for name, p := range c.Profiles {
		converted, err := p.toProfile(name)
		if err != nil {
			return nil, err
		}
		if err := catalog.Register(converted); err != nil {
			return nil, fmt.Errorf("profiles.%s: %w", name, err)
		}
	}
	return catalog, nil
}

func (p Profile) toProfile(name string) (profile.Profile, error) {
	out := profile.Profile{
		Name:         name,
		Description:  p.Description,
		Encoder:      p.Encoder,
		Container:    p.Container,
		Extension:    p.Extension,
		VideoCodec:   p.VideoCodec,
		AudioCodec:   p.AudioCodec,
		VideoBitrate: p.VideoBitrate,
		AudioBitrate: p.AudioBitrate,
		Quality:      p.Quality,
		SampleRate:   p.SampleRate,
		Extra:        p.Extra,
	}
	for _, value := range p.Expects {
		kind, err := timeline.ParseMediaKind(value)
		if err != nil {
			return profile.Profile{}, fmt.Errorf("profiles.%s.expects: %w", name, err)
		}
		switch kind {
		case timeline.Audio:
			out.ExpectsAudio = true
		case timeline.Video:
			out.ExpectsVideo = true
		}
	}
	return out, nil
}
