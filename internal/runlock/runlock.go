// Package runlock keeps two audiovert runs from writing into the same output
// root at once.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrHeld is returned when another process owns the lock for the root.
var ErrHeld = errors.New("another audiovert run is writing to this directory")

// Lock is an advisory file lock keyed by an output root.
type Lock struct {
	root string
	lock *flock.Flock
}

// PathFor returns the lock file location for root inside dir.
// An empty dir selects os.TempDir().
func PathFor(dir, root string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.Clean(root)))
	return filepath.Join(dir, "audiovert-"+id.String()+".lock")
}

// New prepares a lock for root without acquiring it.
func New(dir, root string) *Lock {
	return &Lock{root: root, lock: flock.New(PathFor(dir, root))}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.lock.Path()
}

// Acquire takes the lock without blocking.
func (l *Lock) Acquire() error {
	ok, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock %s: %w", l.lock.Path(), err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrHeld, l.root)
	}
	return nil
}

// Release drops the lock and removes the lock file.
func (l *Lock) Release() error {
	if !l.lock.Locked() {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	if err := os.Remove(l.lock.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}
