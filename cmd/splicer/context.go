package main

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"splicer/internal/config"
	"splicer/internal/logging"
	"splicer/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configPath string
	configSeen bool
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configSeen = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

// ensureLogger builds the process logger once and prunes expired log files.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = err
			return
		}
		logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays, logging.RetentionTarget{
			Dir:     cfg.Paths.LogDir,
			Pattern: "*.log",
			Exclude: []string{logPath(cfg)},
		})
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func logPath(cfg *config.Config) string {
	if cfg == nil || strings.TrimSpace(cfg.Paths.LogDir) == "" {
		return ""
	}
	return filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// exitCode maps failures to process exit codes: 2 for bad input, 3 for
// backend and tool failures, 130 for cancellation, 1 otherwise.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, services.ErrCancelled), errors.Is(err, context.Canceled):
		return 130
	case errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrMediaKindMismatch),
		errors.Is(err, services.ErrProfileContentMismatch),
		errors.Is(err, services.ErrInvalidTransitionRange):
		return 2
	case errors.Is(err, services.ErrBackend), errors.Is(err, services.ErrExternalTool):
		return 3
	default:
		return 1
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
