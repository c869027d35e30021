package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"splicer/internal/config"
	"splicer/internal/deps"
	"splicer/internal/history"
	"splicer/internal/preflight"
	"splicer/internal/render"
)

type statusReport struct {
	ConfigPath   string             `json:"config_path"`
	ConfigExists bool               `json:"config_exists"`
	Directories  []preflight.Result `json:"directories"`
	Dependencies []deps.Status      `json:"dependencies"`
	Profiles     []preflight.Result `json:"profiles,omitempty"`
	EncoderError string             `json:"encoder_error,omitempty"`
	History      map[string]int     `json:"history,omitempty"`
	HistoryError string             `json:"history_error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report tool, directory, and profile readiness",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			report := collectStatus(cmd, ctx, cfg)
			if jsonOutput {
				return writeJSON(cmd, report)
			}
			printStatus(cmd, report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output status as JSON")
	return cmd
}

func collectStatus(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) statusReport {
	report := statusReport{
		ConfigPath:   ctx.configPath,
		ConfigExists: ctx.configSeen,
		Directories:  preflight.RunAll(cfg),
		Dependencies: preflight.CheckSystemDeps(cfg),
	}

	if catalog, err := cfg.Catalog(); err == nil {
		encoders, probeErr := preflight.ProbeEncoders(cmd.Context(), cfg.FFmpegBinary())
		if probeErr != nil {
			report.EncoderError = probeErr.Error()
		} else {
			report.Profiles = preflight.CheckProfileEncoders(encoders, catalog.Profiles())
		}
	}

	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			report.HistoryError = err.Error()
		} else {
			defer store.Close()
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				report.HistoryError = err.Error()
			} else {
				report.History = make(map[string]int, len(stats))
				for state, count := range stats {
					report.History[state.String()] = count
				}
			}
		}
	}
	return report
}

func printStatus(cmd *cobra.Command, report statusReport) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	var lines []string

	lines = append(lines, renderSectionHeader("Configuration", colorize)...)
	if report.ConfigExists {
		lines = append(lines, renderStatusLine("Config", levelOK, report.ConfigPath, colorize))
	} else {
		lines = append(lines, renderStatusLine("Config", levelInfo, report.ConfigPath+" (not found; using defaults)", colorize))
	}
	for _, result := range report.Directories {
		lines = append(lines, resultStatusLine(result, false, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
	for _, status := range report.Dependencies {
		lines = append(lines, dependencyStatusLine(status, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Profiles", colorize)...)
	if report.EncoderError != "" {
		lines = append(lines, renderStatusLine("Encoders", levelWarn, report.EncoderError, colorize))
	}
	for _, result := range report.Profiles {
		lines = append(lines, resultStatusLine(result, true, colorize))
	}

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("History", colorize)...)
	switch {
	case report.HistoryError != "":
		lines = append(lines, renderStatusLine("Journal", levelWarn, report.HistoryError, colorize))
	case report.History == nil:
		lines = append(lines, renderStatusLine("Journal", levelInfo, "Disabled", colorize))
	default:
		lines = append(lines, renderStatusLine("Journal", levelOK, historySummary(report.History), colorize))
	}

	fmt.Fprintln(out, strings.Join(lines, "\n"))
}

func historySummary(counts map[string]int) string {
	if len(counts) == 0 {
		return "no runs recorded"
	}
	order := map[string]int{}
	for _, s := range []render.State{render.StateCompleted, render.StateFailed, render.StateRendering, render.StateValidated, render.StateCreated} {
		order[s.String()] = len(order)
	}
	states := make([]string, 0, len(counts))
	for state := range counts {
		states = append(states, state)
	}
	sort.Slice(states, func(i, j int) bool { return order[states[i]] < order[states[j]] })
	parts := make([]string, 0, len(states))
	for _, state := range states {
		parts = append(parts, fmt.Sprintf("%d %s", counts[state], state))
	}
	return strings.Join(parts, ", ")
}
