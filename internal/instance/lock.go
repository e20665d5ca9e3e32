// Package instance keeps a single daemon running per display.
package instance

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock takes an exclusive lock on path. The caller must Release the returned
// handle. An error is returned if another daemon already holds the lock.
func Lock(path string) (*flock.Flock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}
	fl := flock.New(path)
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another sabini daemon is already running (lock %s)", path)
	}
	return fl, nil
}

// Release drops the lock. It is safe to call with nil.
func Release(fl *flock.Flock) {
	if fl != nil {
		_ = fl.Unlock()
	}
}
