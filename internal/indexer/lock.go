package indexer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrRebuildInProgress is returned when another rebuild holds the lock,
// in this process or another.
var ErrRebuildInProgress = errors.New("rebuild already in progress")

const lockFileName = ".rebuild.lock"

// rebuildLock is an exclusive, non-blocking lock file in the cache directory.
type rebuildLock struct {
	lock *flock.Flock
}

func acquireRebuildLock(cacheDir string) (*rebuildLock, error) {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	lock := flock.New(filepath.Join(cacheDir, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire rebuild lock: %w", err)
	}
	if !locked {
		return nil, ErrRebuildInProgress
	}
	return &rebuildLock{lock: lock}, nil
}

func (l *rebuildLock) release() error {
	return l.lock.Unlock()
}
