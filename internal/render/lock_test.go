package render

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"splicer/internal/services"
)

func TestOutputLockExcludesAndReacquires(t *testing.T) {
	output := filepath.Join(t.TempDir(), "nested", "out.mp4")

	first, err := acquireOutputLock(output)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if _, err := acquireOutputLock(output); !errors.Is(err, services.ErrOutputLocked) {
		t.Fatalf("expected output locked while held, got %v", err)
	}
	if err := first.release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	before, err := os.Stat(lockPath(output))
	if err != nil {
		t.Fatalf("lock file should survive release: %v", err)
	}
	second, err := acquireOutputLock(output)
	if err != nil {
		t.Fatalf("reacquire: %v", err)
	}
	defer second.release()
	after, err := os.Stat(lockPath(output))
	if err != nil {
		t.Fatalf("stat lock: %v", err)
	}
	if !os.SameFile(before, after) {
		t.Fatal("expected the same lock inode across acquisitions")
	}
}

func TestReleaseNilLock(t *testing.T) {
	var l *outputLock
	if err := l.release(); err != nil {
		t.Fatalf("nil release: %v", err)
	}
}
