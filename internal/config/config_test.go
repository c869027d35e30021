package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"splicer/internal/config"
	"splicer/internal/profile"
	"splicer/internal/timeline"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("XDG_STATE_HOME", "")
	t.Setenv("SPLICER_FFMPEG", "")
	t.Setenv("SPLICER_FFPROBE", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantWork := filepath.Join(tempHome, ".cache", "splicer", "work")
	if cfg.Paths.WorkDir != wantWork {
		t.Fatalf("unexpected work dir: got %q want %q", cfg.Paths.WorkDir, wantWork)
	}
	wantHistory := filepath.Join(tempHome, ".local", "state", "splicer", "history.db")
	if cfg.History.Path != wantHistory {
		t.Fatalf("unexpected history path: got %q want %q", cfg.History.Path, wantHistory)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected tool defaults %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if cfg.Render.SurplusGroups != "ignore" {
		t.Fatalf("expected surplus groups ignored by default, got %q", cfg.Render.SurplusGroups)
	}
	if cfg.RenderTimeout() != 0 {
		t.Fatalf("expected no render timeout by default, got %s", cfg.RenderTimeout())
	}
	if cfg.DurationTolerance() != 100*time.Millisecond {
		t.Fatalf("unexpected duration tolerance %s", cfg.DurationTolerance())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "splicer.toml")

	type payload struct {
		Render struct {
			DefaultProfile string `toml:"default_profile"`
			SurplusGroups  string `toml:"surplus_groups"`
			TimeoutSeconds int    `toml:"timeout_seconds"`
		} `toml:"render"`
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
	}
	custom := payload{}
	custom.Render.DefaultProfile = " Low-Quality-Audio "
	custom.Render.SurplusGroups = "REJECT"
	custom.Render.TimeoutSeconds = 90
	custom.Paths.OutputDir = tempDir
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Render.DefaultProfile != profile.LowQualityAudio {
		t.Fatalf("expected normalized default profile, got %q", cfg.Render.DefaultProfile)
	}
	if cfg.Render.SurplusGroups != "reject" {
		t.Fatalf("expected reject policy, got %q", cfg.Render.SurplusGroups)
	}
	if cfg.RenderTimeout() != 90*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.RenderTimeout())
	}
	out, err := cfg.ResolveOutput("clip.m4a")
	if err != nil {
		t.Fatalf("ResolveOutput: %v", err)
	}
	if out != filepath.Join(tempDir, "clip.m4a") {
		t.Fatalf("unexpected resolved output %q", out)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "splicer.toml")
	if err := os.WriteFile(configPath, []byte("[render]\nsurplus = \"ignore\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to fail parsing")
	}
}

func TestEnvVarOverridesFFmpegBinaries(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "splicer.toml")
	if err := os.WriteFile(configPath, []byte("[ffmpeg]\nbinary = \"/opt/ffmpeg/bin/ffmpeg\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SPLICER_FFMPEG", "/usr/local/bin/ffmpeg")
	t.Setenv("SPLICER_FFPROBE", "/usr/local/bin/ffprobe")

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "/usr/local/bin/ffmpeg" {
		t.Errorf("expected ffmpeg from env, got %q", cfg.FFmpegBinary())
	}
	if cfg.FFprobeBinary() != "/usr/local/bin/ffprobe" {
		t.Errorf("expected ffprobe from env, got %q", cfg.FFprobeBinary())
	}
}

func TestConfiguredProfilesJoinCatalog(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "splicer.toml")
	body := `
[render]
default_profile = "podcast"

[profiles.Podcast]
expects = ["Audio"]
container = "mp3"
extension = "mp3"
audio_codec = "libmp3lame"
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		t.Fatalf("Catalog: %v", err)
	}
	p, ok := catalog.Lookup("podcast")
	if !ok {
		t.Fatal("expected configured profile in catalog")
	}
	if !p.Expects(timeline.Audio) || p.Expects(timeline.Video) || p.Extension != ".mp3" {
		t.Fatalf("unexpected profile %#v", p)
	}
	if _, ok := catalog.Lookup(profile.HighQualityVideo); !ok {
		t.Fatal("expected built-ins to remain")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "surplus_groups") {
		t.Fatalf("sample config missing render policy: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.WorkDir, "splicer") {
		t.Fatalf("expected work dir to contain splicer, got %q", cfg.Paths.WorkDir)
	}
	if _, ok := cfg.Profiles["podcast"]; !ok {
		t.Fatal("expected sample to define a custom profile")
	}

	// The sample must also survive the full load path.
	t.Setenv("HOME", t.TempDir())
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("Load sample: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "surplus policy", mutate: func(c *config.Config) { c.Render.SurplusGroups = "drop" }},
		{name: "frame rate", mutate: func(c *config.Config) { c.Render.FrameRate = -1 }},
		{name: "timeout", mutate: func(c *config.Config) { c.Render.TimeoutSeconds = -5 }},
		{name: "tolerance", mutate: func(c *config.Config) { c.Render.DurationTolerance = -0.5 }},
		{name: "threads", mutate: func(c *config.Config) { c.FFmpeg.Threads = -1 }},
		{name: "ffmpeg log level", mutate: func(c *config.Config) { c.FFmpeg.LogLevel = "loud" }},
		{name: "history path", mutate: func(c *config.Config) { c.History.Path = " " }},
		{name: "log level", mutate: func(c *config.Config) { c.Logging.Level = "trace" }},
		{name: "default profile", mutate: func(c *config.Config) { c.Render.DefaultProfile = "missing" }},
		{name: "profile kind", mutate: func(c *config.Config) {
			c.Profiles = map[string]config.Profile{"bad": {Expects: []string{"subtitle"}}}
		}},
		{name: "profile expects nothing", mutate: func(c *config.Config) {
			c.Profiles = map[string]config.Profile{"empty": {}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}
