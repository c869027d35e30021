package render

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"splicer/internal/services"
)

// outputLock guards an output path against concurrent renders, including
// renders in other processes.
type outputLock struct {
	path string
	lock *flock.Flock
}

func lockPath(outputPath string) string {
	return filepath.Join(filepath.Dir(outputPath), "."+filepath.Base(outputPath)+".lock")
}

func acquireOutputLock(outputPath string) (*outputLock, error) {
	path := lockPath(outputPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.WrapError(services.KindBackend, "render", "create output directory", err)
	}
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.WrapError(services.KindBackend, "render", "acquire output lock", err)
	}
	if !ok {
		return nil, &services.Error{
			Kind:    services.KindOutputLocked,
			Op:      "render",
			Message: fmt.Sprintf("output %s is being rendered by another renderer", outputPath),
		}
	}
	return &outputLock{path: path, lock: lock}, nil
}

// release unlocks but leaves the lock file in place. Unlinking it would let a
// waiter lock the orphaned inode while a newcomer creates and locks a fresh one.
func (l *outputLock) release() error {
	if l == nil {
		return nil
	}
	return l.lock.Unlock()
}
