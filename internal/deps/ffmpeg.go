package deps

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// CheckFFmpegForDrapto reports the ffmpeg the drapto CLI will execute.
//
// Drapto prefers an ffmpeg sitting next to its own executable and otherwise
// resolves "ffmpeg" from PATH. Command holds whichever binary wins.
func CheckFFmpegForDrapto(draptoCommand string) Status {
	req := Requirement{Name: "FFmpeg", Command: "ffmpeg", Description: "Used by Drapto for encoding"}
	if sidecar := sidecarFFmpeg(strings.TrimSpace(draptoCommand)); sidecar != "" {
		req.Command = sidecar
		return Status{Requirement: req, Available: true, Path: sidecar}
	}
	status := lookup(req)
	if status.Available {
		status.Command = status.Path
	}
	return status
}

// sidecarFFmpeg returns the executable ffmpeg beside drapto, or "".
func sidecarFFmpeg(drapto string) string {
	if drapto == "" {
		return ""
	}
	resolved, err := exec.LookPath(drapto)
	if err != nil {
		return ""
	}
	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	candidate := filepath.Join(filepath.Dir(resolved), name)
	info, err := os.Stat(candidate)
	if err != nil || info.IsDir() {
		return ""
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return ""
	}
	return candidate
}
