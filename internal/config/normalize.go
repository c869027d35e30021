package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFFmpeg()
	c.normalizeRender()
	if err := c.normalizeHistory(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeProfiles()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFmpeg() {
	if value, ok := os.LookupEnv("SPLICER_FFMPEG"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.Binary = value
	}
	if value, ok := os.LookupEnv("SPLICER_FFPROBE"); ok && strings.TrimSpace(value) != "" {
		c.FFmpeg.FFprobeBinary = value
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		c.FFmpeg.Binary = defaultFFmpegBinary
	}
	c.FFmpeg.FFprobeBinary = strings.TrimSpace(c.FFmpeg.FFprobeBinary)
	if c.FFmpeg.FFprobeBinary == "" {
		c.FFmpeg.FFprobeBinary = defaultFFprobeBinary
	}
	c.FFmpeg.LogLevel = strings.ToLower(strings.TrimSpace(c.FFmpeg.LogLevel))
	if c.FFmpeg.LogLevel == "" {
		c.FFmpeg.LogLevel = defaultFFmpegLogLevel
	}
}

func (c *Config) normalizeRender() {
	c.Render.DefaultProfile = strings.ToLower(strings.TrimSpace(c.Render.DefaultProfile))
	c.Render.SurplusGroups = strings.ToLower(strings.TrimSpace(c.Render.SurplusGroups))
	if c.Render.SurplusGroups == "" {
		c.Render.SurplusGroups = defaultSurplusGroups
	}
	if c.Render.FrameRate == 0 {
		c.Render.FrameRate = defaultFrameRate
	}
	c.Render.DraptoBinary = strings.TrimSpace(c.Render.DraptoBinary)
}

func (c *Config) normalizeHistory() error {
	if strings.TrimSpace(c.History.Path) == "" {
		c.History.Path = filepath.Join(defaultStateDir(), defaultHistoryFile)
	}
	var err error
	if c.History.Path, err = expandPath(strings.TrimSpace(c.History.Path)); err != nil {
		return fmt.Errorf("history.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}

func (c *Config) normalizeProfiles() {
	if len(c.Profiles) == 0 {
		return
	}
	normalized := make(map[string]Profile, len(c.Profiles))
	for name, p := range c.Profiles {
		kinds := make([]string, 0, len(p.Expects))
		for _, kind := range p.Expects {
			if k := strings.ToLower(strings.TrimSpace(kind)); k != "" {
				kinds = append(kinds, k)
			}
		}
		p.Expects = kinds
		p.Encoder = strings.ToLower(strings.TrimSpace(p.Encoder))
		if p.Extension != "" && !strings.HasPrefix(p.Extension, ".") {
			p.Extension = "." + p.Extension
		}
		normalized[strings.ToLower(strings.TrimSpace(name))] = p
	}
	c.Profiles = normalized
}
