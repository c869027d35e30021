package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"splicer/internal/config"
	"splicer/internal/deps"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries the given config needs.
// The drapto CLI is only checked when render.drapto_binary is set; otherwise
// AV1 profiles use the linked library and need nothing on PATH beyond ffmpeg.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required for rendering",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.FFprobeBinary(),
			Description: "Required for source inspection and output verification",
		},
	}
	draptoBinary := ""
	if cfg != nil {
		draptoBinary = cfg.Render.DraptoBinary
	}
	if draptoBinary != "" {
		requirements = append(requirements, deps.Requirement{
			Name:        "Drapto",
			Command:     draptoBinary,
			Description: "Encodes drapto profiles",
			Optional:    true,
		})
	}
	results := deps.CheckBinaries(requirements)
	if draptoBinary != "" {
		results = append(results, deps.CheckFFmpegForDrapto(draptoBinary))
	}
	return results
}
