// Package instance guards the data directory with an advisory file lock so
// two dashboard processes never share one SQLite file.
package instance

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned by Acquire when another process holds the
// lock.
var ErrAlreadyRunning = errors.New("instance: another dashboard is already running")

// Lock is a held single-instance lock.
type Lock struct {
	flock *flock.Flock
	path  string
}

// LockPath is the lock file for app name under dataDir.
func LockPath(dataDir, name string) string {
	return filepath.Join(dataDir, name+".lock")
}

// Acquire takes the lock without blocking.  The lock file records the
// holder's PID for diagnostics only.
func Acquire(dataDir, name string) (*Lock, error) {
	path := LockPath(dataDir, name)
	fl := flock.New(path)

	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("instance: lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}

	if err := writePID(fl, path); err != nil {
		zap.S().Debugw("lock file pid not recorded", "lock", path, "err", err)
	}
	return &Lock{flock: fl, path: path}, nil
}

// writePID records the holder's PID.  It writes through the locked handle
// first, since Windows refuses writes to a locked region from any other
// handle.
func writePID(fl *flock.Flock, path string) error {
	pid := []byte(strconv.Itoa(os.Getpid()) + "\n")
	if fh := fl.Fh(); fh != nil {
		if err := fh.Truncate(0); err == nil {
			if _, err = fh.WriteAt(pid, 0); err == nil {
				return nil
			}
		}
	}
	return os.WriteFile(path, pid, 0o644)
}

// Path returns the lock file location.
func (l *Lock) Path() string { return l.path }

// Release unlocks.  Safe to call more than once.
func (l *Lock) Release() error {
	if l == nil || !l.flock.Locked() {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("instance: unlock %s: %w", l.path, err)
	}
	return nil
}
