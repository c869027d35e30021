package config

import (
	"path/filepath"

	"splicer/internal/profile"
)

const (
	defaultConfigPath        = "~/.config/splicer/config.toml"
	defaultWorkDir           = "~/.cache/splicer/work"
	defaultLogDir            = "~/.local/share/splicer/logs"
	defaultLogRetentionDays  = 30
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultFFmpegBinary      = "ffmpeg"
	defaultFFprobeBinary     = "ffprobe"
	defaultFFmpegLogLevel    = "error"
	defaultFrameRate         = 30.0
	defaultSurplusGroups     = "ignore"
	defaultDurationTolerance = 0.1
	defaultHistoryFile       = "history.db"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkDir: defaultWorkDir,
			LogDir:  defaultLogDir,
		},
		FFmpeg: FFmpeg{
			Binary:        defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
			LogLevel:      defaultFFmpegLogLevel,
		},
		Render: Render{
			DefaultProfile:    profile.HighQualityVideo,
			FrameRate:         defaultFrameRate,
			SurplusGroups:     defaultSurplusGroups,
			VerifyDuration:    true,
			DurationTolerance: defaultDurationTolerance,
		},
		History: History{
			Enabled: true,
			Path:    filepath.Join(defaultStateDir(), defaultHistoryFile),
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
