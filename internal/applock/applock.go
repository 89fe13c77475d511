// Package applock enforces a single launcher instance per data directory
// with an exclusive file lock.
package applock

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/SwonDev/Stacklume/internal/sentinel"
)

// ErrAlreadyRunning reports that another launcher instance holds the lock.
const ErrAlreadyRunning = sentinel.Error("another instance is already running")

// Lock is a held single-instance lock.
type Lock struct {
	fl     *flock.Flock
	logger *slog.Logger
}

// Acquire takes the instance lock under dataDir without blocking. Returns
// ErrAlreadyRunning when a second instance holds it.
func Acquire(dataDir string, logger *slog.Logger) (*Lock, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}

	path := filepath.Join(dataDir, "stacklume.lock")
	fl := flock.New(path)

	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring instance lock %s: %w", path, err)
	}
	if !locked {
		return nil, fmt.Errorf("%s: %w", path, ErrAlreadyRunning)
	}

	logger.Debug("instance_lock_acquired", "path", path)
	return &Lock{fl: fl, logger: logger}, nil
}

// Release releases the lock. The lock file is intentionally left on disk to
// avoid a race where removing it could invalidate a lock concurrently
// acquired by another process. Best-effort; errors are logged, not returned.
func (l *Lock) Release() {
	if l == nil || l.fl == nil {
		return
	}
	if err := l.fl.Close(); err != nil {
		l.logger.Debug("instance_lock_release_failed", "path", l.fl.Path(), "err", err)
	}
	l.fl = nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil || l.fl == nil {
		return ""
	}
	return l.fl.Path()
}
