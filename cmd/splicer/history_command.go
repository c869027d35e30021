package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"splicer/internal/history"
	"splicer/internal/render"
)

type runView struct {
	ID         string  `json:"id"`
	Output     string  `json:"output"`
	Profile    string  `json:"profile"`
	State      string  `json:"state"`
	Groups     int     `json:"groups"`
	Segments   int     `json:"segments"`
	Duration   float64 `json:"duration_seconds"`
	ErrorKind  string  `json:"error_kind,omitempty"`
	Error      string  `json:"error,omitempty"`
	StartedAt  string  `json:"started_at"`
	FinishedAt string  `json:"finished_at,omitempty"`
}

func newRunView(run render.Run) runView {
	view := runView{
		ID:        run.ID,
		Output:    run.OutputPath,
		Profile:   run.Profile,
		State:     run.State.String(),
		Groups:    run.Groups,
		Segments:  run.Segments,
		Duration:  run.Duration.Seconds(),
		ErrorKind: run.ErrorKind,
		Error:     run.Error,
		StartedAt: run.StartedAt.Format(time.RFC3339),
	}
	if !run.FinishedAt.IsZero() {
		view.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return view
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the render run journal",
	}
	historyCmd.AddCommand(newHistoryListCommand(ctx))
	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryPruneCommand(ctx))
	return historyCmd
}

// withHistory opens the journal for the duration of fn.
func (c *commandContext) withHistory(fn func(*history.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("render history is disabled (set history.enabled = true)")
	}
	store, err := history.Open(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func newHistoryListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		jsonOutput bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent renders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				runs, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				views := make([]runView, 0, len(runs))
				for _, run := range runs {
					views = append(views, newRunView(run))
				}
				if jsonOutput {
					return writeJSON(cmd, views)
				}
				headers := []string{"ID", "State", "Profile", "Duration", "Started", "Output"}
				rows := make([][]string, 0, len(views))
				for _, v := range views {
					state := v.State
					if v.ErrorKind != "" {
						state += " (" + v.ErrorKind + ")"
					}
					rows = append(rows, []string{shortRunID(v.ID), state, v.Profile, formatSeconds(v.Duration), v.StartedAt, v.Output})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output runs as JSON")
	return cmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one render run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				run, err := findRun(cmd, store, args[0])
				if err != nil {
					return err
				}
				view := newRunView(run)
				if jsonOutput {
					return writeJSON(cmd, view)
				}
				fields := [][2]string{
					{"ID", view.ID},
					{"State", view.State},
					{"Profile", view.Profile},
					{"Output", view.Output},
					{"Groups", strconv.Itoa(view.Groups)},
					{"Segments", strconv.Itoa(view.Segments)},
					{"Duration", formatSeconds(view.Duration)},
					{"Started", view.StartedAt},
				}
				if view.FinishedAt != "" {
					fields = append(fields, [2]string{"Finished", view.FinishedAt})
				}
				if view.ErrorKind != "" {
					fields = append(fields, [2]string{"Error kind", view.ErrorKind}, [2]string{"Error", view.Error})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderFieldTable(fields))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the run as JSON")
	return cmd
}

// findRun resolves a full run ID, or a unique prefix of one as printed by
// `history list`.
func findRun(cmd *cobra.Command, store *history.Store, id string) (render.Run, error) {
	run, err := store.Get(cmd.Context(), id)
	if err == nil || !errors.Is(err, history.ErrNotFound) {
		return run, err
	}
	runs, listErr := store.List(cmd.Context(), 0)
	if listErr != nil {
		return render.Run{}, listErr
	}
	var matches []render.Run
	for _, candidate := range runs {
		if len(candidate.ID) > len(id) && candidate.ID[:len(id)] == id {
			matches = append(matches, candidate)
		}
	}
	switch len(matches) {
	case 0:
		return render.Run{}, err
	case 1:
		return matches[0], nil
	default:
		return render.Run{}, fmt.Errorf("run id prefix %q is ambiguous (%d matches)", id, len(matches))
	}
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete finished runs older than a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Prune(cmd.Context(), time.Now().Add(-olderThan))
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d run(s)\n", removed)
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "Remove finished runs started before now minus this duration")
	return cmd
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
