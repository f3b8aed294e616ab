// Package filelock serializes folder commits with an advisory file lock.
// Partial renames are visible on disk mid-commit, so no two commits (or
// listing reads that feed a commit) may overlap on the same folder.
package filelock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockFileName is created inside the folder being committed.
const LockFileName = ".framekeep.lock"

// ErrAlreadyLocked indicates another process is committing this folder.
var ErrAlreadyLocked = errors.New("folder is locked by another commit")

// Lock represents an acquired folder-scoped advisory lock.
type Lock struct {
	flock *flock.Flock
}

// Acquire obtains an exclusive, non-blocking advisory lock for dir.
// If another process already holds the lock, Acquire returns
// ErrAlreadyLocked immediately.
func Acquire(dir string) (*Lock, error) {
	fl := flock.New(filepath.Join(dir, LockFileName))

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire folder lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyLocked, dir)
	}

	return &Lock{flock: fl}, nil
}

// Release unlocks and removes the lock file. It is safe to call on a nil
// Lock (no-op).
func (l *Lock) Release() error {
	if l == nil || l.flock == nil {
		return nil
	}

	path := l.flock.Path()

	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release folder lock: %w", err)
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}

	return nil
}
