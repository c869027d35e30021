package main

import (
	"log/slog"

	"splicer/internal/config"
	"splicer/internal/profile"
	"splicer/internal/render"
	"splicer/internal/render/ffmpeg"
	"splicer/internal/services/drapto"
)

// newBackend returns the backend that produces output for p. Drapto profiles
// compose through ffmpeg first and then hand the intermediate to drapto.
func newBackend(cfg *config.Config, p profile.Profile, logger *slog.Logger) render.Backend {
	composer := ffmpeg.New(
		ffmpeg.WithBinary(cfg.FFmpegBinary()),
		ffmpeg.WithThreads(cfg.FFmpeg.Threads),
		ffmpeg.WithLogLevel(cfg.FFmpeg.LogLevel),
		ffmpeg.WithLogger(logger),
	)
	if p.EncoderName() != profile.EncoderDrapto {
		return composer
	}

	var encoder drapto.Encoder
	if cfg.Render.DraptoBinary != "" {
		encoder = drapto.NewCLI(drapto.WithBinary(cfg.Render.DraptoBinary))
	} else {
		encoder = drapto.NewLibrary(logger)
	}
	return drapto.NewBackend(composer,
		drapto.WithEncoder(encoder),
		drapto.WithWorkDir(cfg.Paths.WorkDir),
		drapto.WithLogger(logger),
	)
}
