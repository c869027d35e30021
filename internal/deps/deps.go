package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names an external tool and the command used to run it.
type Requirement struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
	Optional    bool   `json:"optional,omitempty"`
}

// Status is a Requirement after lookup. Path is the resolved executable when
// Available is true; Detail explains a failed lookup.
type Status struct {
	Requirement
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

// CheckBinaries resolves every requirement against PATH, in order.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, len(requirements))
	for i, req := range requirements {
		req.Command = strings.TrimSpace(req.Command)
		req.Description = strings.TrimSpace(req.Description)
		results[i] = lookup(req)
	}
	return results
}

func lookup(req Requirement) Status {
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available = true
	status.Path = path
	return status
}
