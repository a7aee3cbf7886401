package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adrg/xdg"
	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another instance holds the lock past the
// wait window.
var ErrAlreadyRunning = errors.New("another gradewidget instance is running")

const (
	instanceLockFile  = "gradewidget/instance.lock"
	instanceWait      = 10 * time.Second
	instanceRetryWait = 100 * time.Millisecond
)

// acquireInstance takes the single-instance lock. A relaunched process waits
// here until its predecessor has released the lock on exit.
func acquireInstance(ctx context.Context, path string, wait time.Duration) (*flock.Flock, error) {
	if path == "" {
		var err error
		if path, err = xdg.StateFile(instanceLockFile); err != nil {
			return nil, fmt.Errorf("resolve instance lock: %w", err)
		}
	}

	lock := flock.New(path)
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	ok, err := lock.TryLockContext(ctx, instanceRetryWait)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
		}
		return nil, fmt.Errorf("lock instance: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrAlreadyRunning, path)
	}
	return lock, nil
}
