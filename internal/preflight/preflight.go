package preflight

import (
	"path/filepath"

	"splicer/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config.
// Checks are only run when the corresponding path is configured.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	// Work directory (always checked)
	results = append(results, CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir))

	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir))
	}

	if cfg.History.Enabled {
		results = append(results, CheckDirectoryAccess("History directory", filepath.Dir(cfg.History.Path)))
	}

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
