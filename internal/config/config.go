package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
}

// FFmpeg locates the external media tools.
type FFmpeg struct {
	Binary        string `toml:"binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Threads       int    `toml:"threads"`
	LogLevel      string `toml:"log_level"`
}

// Render contains renderer policy.
type Render struct {
	DefaultProfile string  `toml:"default_profile"`
	FrameRate      float64 `toml:"frame_rate"`
	SurplusGroups  string  `toml:"surplus_groups"`
	TimeoutSeconds int     `toml:"timeout_seconds"`
	VerifyDuration bool    `toml:"verify_duration"`
	// DurationTolerance is in seconds.
	DurationTolerance float64 `toml:"duration_tolerance"`
	// DraptoBinary selects the drapto CLI for AV1 profiles. Empty uses the
	// linked encoder library.
	DraptoBinary string `toml:"drapto_binary"`
}

// History configures the SQLite run journal.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Profile is a user-defined render profile. Expects lists "audio" and/or "video".
type Profile struct {
	Description  string            `toml:"description"`
	Expects      []string          `toml:"expects"`
	Encoder      string            `toml:"encoder"`
	Container    string            `toml:"container"`
	Extension    string            `toml:"extension"`
	VideoCodec   string            `toml:"video_codec"`
	AudioCodec   string            `toml:"audio_codec"`
	VideoBitrate string            `toml:"video_bitrate"`
	AudioBitrate string            `toml:"audio_bitrate"`
	Quality      int               `toml:"quality"`
	SampleRate   int               `toml:"sample_rate"`
	Extra        map[string]string `toml:"extra"`
}

// Config encapsulates all configuration values for splicer.
//
// Configuration sections by subsystem:
//   - Paths: default output, scratch, and log directories
//   - FFmpeg: ffmpeg/ffprobe locations and process settings
//   - Render: default profile, frame rate, and validation policy
//   - History: SQLite run journal
//   - Logging: log format, level, and retention
//   - Profiles: additional or overriding render profiles
type Config struct {
	Paths    Paths              `toml:"paths"`
	FFmpeg   FFmpeg             `toml:"ffmpeg"`
	Render   Render             `toml:"render"`
	History  History            `toml:"history"`
	Logging  Logging            `toml:"logging"`
	Profiles map[string]Profile `toml:"profiles"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load finds, decodes, normalizes and validates the configuration. It returns
// the config, the file path consulted and whether that file existed. A missing
// file yields defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()
	resolved, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}
	if exists {
		if err := decodeFile(resolved, &cfg); err != nil {
			return nil, "", false, err
		}
	}
	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolved, exists, nil
}

// decodeFile overlays path onto cfg, rejecting keys the schema does not know.
func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	dec := toml.NewDecoder(file).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return fmt.Errorf("parse config: %s", strict.String())
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// resolveConfigPath honours an explicit path even when the file is absent.
// Otherwise the user config wins over ./splicer.toml, and the user path is
// reported when neither exists.
func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		switch _, err := os.Stat(expanded); {
		case err == nil:
			return expanded, true, nil
		case errors.Is(err, fs.ErrNotExist):
			return expanded, false, nil
		default:
			return "", false, fmt.Errorf("stat config: %w", err)
		}
	}

	userPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("splicer.toml")
	if err != nil {
		return "", false, err
	}
	for _, candidate := range []string{userPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// EnsureDirectories creates the scratch and log directories, plus the
// history database directory when the journal is enabled.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.WorkDir, c.Paths.LogDir}
	if c.History.Enabled {
		dirs = append(dirs, filepath.Dir(c.History.Path))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the ffmpeg executable.
func (c *Config) FFmpegBinary() string {
	if c == nil || strings.TrimSpace(c.FFmpeg.Binary) == "" {
		return defaultFFmpegBinary
	}
	return c.FFmpeg.Binary
}

// FFprobeBinary returns the ffprobe executable used for source inspection
// and output verification.
func (c *Config) FFprobeBinary() string {
	if c == nil || strings.TrimSpace(c.FFmpeg.FFprobeBinary) == "" {
		return defaultFFprobeBinary
	}
	return c.FFmpeg.FFprobeBinary
}

// RenderTimeout returns the per-render time limit, zero meaning none.
func (c *Config) RenderTimeout() time.Duration {
	if c == nil || c.Render.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Render.TimeoutSeconds) * time.Second
}

// DurationTolerance returns the allowed difference between the rendered and
// expected output duration.
func (c *Config) DurationTolerance() time.Duration {
	if c == nil || c.Render.DurationTolerance <= 0 {
		return 0
	}
	return time.Duration(c.Render.DurationTolerance * float64(time.Second))
}

// ResolveOutput makes a relative output path absolute against paths.output_dir.
func (c *Config) ResolveOutput(output string) (string, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return "", nil
	}
	if c != nil && c.Paths.OutputDir != "" && !filepath.IsAbs(output) && !strings.HasPrefix(output, "~") {
		output = filepath.Join(c.Paths.OutputDir, output)
	}
	return expandPath(output)
}

// expandPath resolves a leading "~" and makes the result absolute.
func expandPath(value string) (string, error) {
	if value == "" {
		return "", nil
	}
	if value == "~" || strings.HasPrefix(value, "~/") || strings.HasPrefix(value, `~\`) {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		value = filepath.Join(home, value[1:])
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", value, err)
	}
	return abs, nil
}

// ExpandPath applies the same "~" and absolute-path rules used for config
// values.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

func defaultStateDir() string {
	if base, ok := os.LookupEnv("XDG_STATE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "splicer")
	}
	return "~/.local/state/splicer"
}

// CreateSample writes the embedded sample configuration to path, creating
// parent directories.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}
