// Package staging manages the scratch directories a render run writes its
// frames into, including exclusivity locking and stale directory cleanup.
package staging

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"orrery/internal/config"
	"orrery/internal/services"
)

const lockFileName = ".orrery-render.lock"

// Workspace is one render run's scratch directory under the staging root. It
// holds the run lock until released.
type Workspace struct {
	Dir  string
	lock *flock.Flock
}

// Acquire creates a fresh scratch directory and takes the render lock. Only
// one render run may hold the lock at a time; a second caller fails
// immediately instead of competing for CPU and disk.
func Acquire(cfg *config.Config, kind string) (*Workspace, error) {
	root := cfg.Paths.StagingDir
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "staging", "acquire", "create staging root", err)
	}

	lock := flock.New(filepath.Join(root, lockFileName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "staging", "acquire", "acquire render lock", err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, "staging", "acquire", "another render run is in progress", nil)
	}

	dir, err := os.MkdirTemp(root, kind+"-")
	if err != nil {
		lock.Unlock()
		return nil, services.Wrap(services.ErrTransient, "staging", "acquire", "create scratch directory", err)
	}
	return &Workspace{Dir: dir, lock: lock}, nil
}

// Release removes the scratch directory and drops the render lock. Safe to
// call from a defer even after a failed run.
func (w *Workspace) Release() error {
	if w == nil {
		return nil
	}
	var firstErr error
	if w.Dir != "" {
		if err := os.RemoveAll(w.Dir); err != nil {
			firstErr = fmt.Errorf("remove scratch directory: %w", err)
		}
		w.Dir = ""
	}
	if w.lock != nil {
		if err := w.lock.Unlock(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("release render lock: %w", err)
		}
		w.lock = nil
	}
	return firstErr
}
