package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"splicer/internal/media/ffprobe"
	"splicer/internal/render"
	"splicer/internal/services"
	"splicer/internal/timeline"
)

type groupSummary struct {
	Index       int     `json:"index"`
	Kind        string  `json:"kind"`
	Tracks      int     `json:"tracks"`
	Clips       int     `json:"clips"`
	Transitions int     `json:"transitions"`
	Duration    float64 `json:"duration_seconds"`
	Format      string  `json:"format,omitempty"`
}

type validateResult struct {
	Timeline  string         `json:"timeline"`
	Profile   string         `json:"profile"`
	Valid     bool           `json:"valid"`
	Duration  float64        `json:"duration_seconds"`
	Groups    []groupSummary `json:"groups"`
	ErrorKind string         `json:"error_kind,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// rejectBackend stands in for a real backend where only validation runs.
var rejectBackend = render.BackendFunc(func(context.Context, render.Job) error {
	return services.NewError(services.KindInvalidState, "render", "validation only")
})

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var (
		profileName string
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "validate <timeline.xml>",
		Short: "Check a timeline document against a render profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			p, err := resolveProfile(cfg, profileName)
			if err != nil {
				return err
			}
			outputPath, err := resolveOutputPath(cfg, args[0], "", p)
			if err != nil {
				return err
			}

			runCtx := cmd.Context()
			if runCtx == nil {
				runCtx = context.Background()
			}
			tl, err := loadTimeline(runCtx, cfg, ffprobe.NewProber(cfg.FFprobeBinary()), args[0])
			if err != nil {
				return err
			}
			desc, err := tl.Describe(runCtx)
			if err != nil {
				return err
			}

			surplus, err := render.ParseSurplusPolicy(cfg.Render.SurplusGroups)
			if err != nil {
				return err
			}
			renderer, err := render.New(tl, outputPath, p, rejectBackend,
				render.WithLogger(logger),
				render.WithSurplusPolicy(surplus),
			)
			if err != nil {
				return err
			}
			defer renderer.Close()
			validateErr := renderer.Validate()

			result := validateResult{
				Timeline: args[0],
				Profile:  p.Name,
				Valid:    validateErr == nil,
				Duration: desc.Duration.Seconds(),
				Groups:   summarizeGroups(desc),
			}
			if validateErr != nil {
				result.ErrorKind = services.KindOf(validateErr).String()
				result.Error = validateErr.Error()
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
				if validateErr != nil {
					return errSilent{validateErr}
				}
				return nil
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderGroupTable(result.Groups))
			fmt.Fprintf(out, "Duration: %s\n", desc.Duration)
			if validateErr != nil {
				return validateErr
			}
			fmt.Fprintf(out, "Timeline is valid for profile %s\n", p.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Render profile (default render.default_profile)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	return cmd
}

func summarizeGroups(desc *timeline.Description) []groupSummary {
	summaries := make([]groupSummary, 0, len(desc.Groups))
	for _, g := range desc.Groups {
		s := groupSummary{
			Index:       g.Index,
			Kind:        g.Kind.String(),
			Tracks:      len(g.Tracks),
			Transitions: len(g.Transitions),
			Duration:    g.Duration.Seconds(),
		}
		for _, tr := range g.Tracks {
			s.Clips += len(tr.Clips)
			s.Transitions += len(tr.Transitions)
		}
		if g.Kind == timeline.Video {
			s.Format = fmt.Sprintf("%dx%d %d-bit %s fps", g.Width, g.Height, g.BitDepth, strconv.FormatFloat(g.FrameRate, 'f', -1, 64))
		}
		summaries = append(summaries, s)
	}
	return summaries
}

func renderGroupTable(groups []groupSummary) string {
	headers := []string{"Group", "Kind", "Tracks", "Clips", "Transitions", "Duration", "Format"}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			strconv.Itoa(g.Index),
			g.Kind,
			strconv.Itoa(g.Tracks),
			strconv.Itoa(g.Clips),
			strconv.Itoa(g.Transitions),
			formatSeconds(g.Duration),
			g.Format,
		})
	}
	return renderTable(headers, rows, []columnAlignment{alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft})
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64) + "s"
}
