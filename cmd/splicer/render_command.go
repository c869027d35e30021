package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"splicer/internal/history"
	"splicer/internal/logging"
	"splicer/internal/media/ffprobe"
	"splicer/internal/preflight"
	"splicer/internal/render"
	"splicer/internal/services"
)

type renderResult struct {
	ID         string  `json:"id"`
	Output     string  `json:"output"`
	Profile    string  `json:"profile"`
	State      string  `json:"state"`
	Duration   float64 `json:"duration_seconds,omitempty"`
	ErrorKind  string  `json:"error_kind,omitempty"`
	Error      string  `json:"error,omitempty"`
	ElapsedSec float64 `json:"elapsed_seconds"`
}

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var (
		profileName string
		output      string
		timeout     time.Duration
		noHistory   bool
		quiet       bool
		jsonOutput  bool
	)

	cmd := &cobra.Command{
		Use:   "render <timeline.xml>",
		Short: "Render a timeline document to a file",
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

			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				return fmt.Errorf("preflight: %s: %s", failed[0].Name, failed[0].Detail)
			}

			p, err := resolveProfile(cfg, profileName)
			if err != nil {
				return err
			}
			outputPath, err := resolveOutputPath(cfg, args[0], output, p)
			if err != nil {
				return err
			}

			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			prober := ffprobe.NewProber(cfg.FFprobeBinary())
			tl, err := loadTimeline(runCtx, cfg, prober, args[0])
			if err != nil {
				return err
			}

			surplus, err := render.ParseSurplusPolicy(cfg.Render.SurplusGroups)
			if err != nil {
				return err
			}
			if timeout <= 0 {
				timeout = cfg.RenderTimeout()
			}
			opts := []render.Option{
				render.WithLogger(logger),
				render.WithSurplusPolicy(surplus),
				render.WithTimeout(timeout),
			}
			if cfg.Render.VerifyDuration {
				opts = append(opts, render.WithDurationProbe(prober, cfg.DurationTolerance()))
			}
			if !quiet && !jsonOutput {
				opts = append(opts, render.WithProgress(newProgressPrinter(cmd.ErrOrStderr()).report))
			}
			if cfg.History.Enabled && !noHistory {
				store, err := history.Open(cfg.History.Path)
				if err != nil {
					logging.WarnWithContext(logger, "history unavailable; render will not be journaled", "history_unavailable",
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "delete the history database after a schema change"),
					)
				} else {
					defer store.Close()
					opts = append(opts, render.WithRecorder(store))
				}
			}

			renderer, err := render.New(tl, outputPath, p, newBackend(cfg, p, logger), opts...)
			if err != nil {
				return err
			}
			defer renderer.Close()

			started := time.Now()
			renderErr := renderer.Render(runCtx)
			result := renderResult{
				ID:         renderer.ID(),
				Output:     renderer.OutputPath(),
				Profile:    p.Name,
				State:      renderer.State().String(),
				Duration:   renderer.Duration().Seconds(),
				ElapsedSec: time.Since(started).Seconds(),
			}
			if renderErr != nil {
				result.ErrorKind = services.KindOf(renderErr).String()
				result.Error = renderErr.Error()
			}

			if jsonOutput {
				if err := writeJSON(cmd, result); err != nil {
					return err
				}
				if renderErr != nil {
					return errSilent{renderErr}
				}
				return nil
			}
			if renderErr != nil {
				return renderErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s (%s, %s) in %s\n",
				result.Output, p.Name, renderer.Duration(), time.Since(started).Truncate(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profileName, "profile", "p", "", "Render profile (default render.default_profile)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <timeline><ext> in paths.output_dir)")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the render after this long (default render.timeout_seconds)")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not journal this render")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the result as JSON")
	return cmd
}

// errSilent carries a failure whose details were already written to stdout.
type errSilent struct{ err error }

func (e errSilent) Error() string { return e.err.Error() }
func (e errSilent) Unwrap() error { return e.err }

func isSilent(err error) bool {
	var s errSilent
	return errors.As(err, &s)
}
