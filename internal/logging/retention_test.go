package logging_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"splicer/internal/logging"
)

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().Add(-10 * 24 * time.Hour)
	write := func(name string, mtime time.Time) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
		return path
	}
	stale := write("render-1.log", old)
	current := write("splicer.log", old)
	fresh := write("render-2.log", time.Now())
	other := write("notes.txt", old)

	logging.CleanupOldLogs(logging.NewNop(), 7, logging.RetentionTarget{
		Dir:     dir,
		Pattern: "*.log",
		Exclude: []string{current},
	})

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatalf("expected %s removed, stat err=%v", stale, err)
	}
	for _, path := range []string{current, fresh, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}

func TestCleanupOldLogsDisabled(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "old.log")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	past := time.Now().Add(-365 * 24 * time.Hour)
	_ = os.Chtimes(path, past, past)

	logging.CleanupOldLogs(nil, 0, logging.RetentionTarget{Dir: dir})
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("retention 0 should keep files: %v", err)
	}
}
