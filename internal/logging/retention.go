package logging

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RetentionTarget names a directory whose files matching Pattern expire.
// Exclude lists paths that must survive regardless of age, such as the log
// file currently open.
type RetentionTarget struct {
	Dir     string
	Pattern string
	Exclude []string
}

// CleanupOldLogs deletes expired files from each target. retentionDays <= 0
// keeps everything. Failures are logged and never returned.
func CleanupOldLogs(logger *slog.Logger, retentionDays int, targets ...RetentionTarget) {
	if retentionDays <= 0 {
		return
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	keep := make(map[string]bool)
	for _, target := range targets {
		for _, path := range target.Exclude {
			if abs := absPath(path); abs != "" {
				keep[abs] = true
			}
		}
	}
	for _, target := range targets {
		for _, path := range expiredFiles(target, cutoff) {
			if keep[path] {
				continue
			}
			if err := os.Remove(path); err != nil {
				WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
					String("log_path", path),
					Error(err),
					String(FieldErrorHint, "check file permissions on log_dir"),
					String(FieldImpact, "old log file remains on disk"),
				)
				continue
			}
			if logger != nil {
				logger.Info("log pruned", String("log_path", path), String(FieldEventType, "log_pruned"))
			}
		}
	}
}

// expiredFiles lists absolute paths of regular files in target last modified
// before cutoff.
func expiredFiles(target RetentionTarget, cutoff time.Time) []string {
	dir := strings.TrimSpace(target.Dir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	pattern := strings.TrimSpace(target.Pattern)
	var expired []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !matches(pattern, entry.Name()) {
			continue
		}
		if info, err := entry.Info(); err != nil || !olderThan(info, cutoff) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if abs := absPath(path); abs != "" {
			path = abs
		}
		expired = append(expired, path)
	}
	return expired
}

func matches(pattern, name string) bool {
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

func olderThan(info fs.FileInfo, cutoff time.Time) bool {
	return info.ModTime().Before(cutoff)
}

func absPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return ""
	}
	return abs
}
