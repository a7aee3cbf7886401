// Package restart relaunches the program after a setting that needs a fresh
// process has been saved.
//
// In ModeDetach the sequence is spawn, wait a short grace period, then
// terminate. In ModeExec the launch is checked, the process terminates its UI,
// and Handover replaces the process image. Either way, if the replacement
// cannot be started the current process keeps running.
package restart

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrSpawnFailed reports that the replacement process could not start.
	ErrSpawnFailed = errors.New("could not start replacement process")
	// ErrRestartPending reports a restart already under way.
	ErrRestartPending = errors.New("restart already pending")
)

// DefaultGrace gives UI teardown time to finish before termination.
const DefaultGrace = 500 * time.Millisecond

// LaunchLocator produces the command for the replacement. *Locator implements it.
type LaunchLocator interface {
	Locate() (Launch, error)
}

// Spawner starts a process detached from this one and returns its pid.
type Spawner interface {
	Spawn(ctx context.Context, l Launch) (int, error)
}

// SpawnerFunc adapts a function to Spawner.
type SpawnerFunc func(ctx context.Context, l Launch) (int, error)

// Spawn calls f.
func (f SpawnerFunc) Spawn(ctx context.Context, l Launch) (int, error) {
	return f(ctx, l)
}

// Option customises a Coordinator.
type Option func(*Coordinator)

// WithGrace overrides DefaultGrace.
func WithGrace(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.grace = d
		}
	}
}

// WithSpawner replaces the exec-based spawner.
func WithSpawner(s Spawner) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.spawner = s
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMode selects detached spawn or in-place exec. Defaults to ModeDetach.
func WithMode(m Mode) Option {
	return func(c *Coordinator) {
		c.mode = m
	}
}

// withExec replaces the image swap in tests.
func withExec(fn func(Launch) error) Option {
	return func(c *Coordinator) {
		c.exec = fn
	}
}

// Coordinator runs at most one restart per process.
type Coordinator struct {
	locator   LaunchLocator
	spawner   Spawner
	terminate func()
	grace     time.Duration
	logger    *slog.Logger
	mode      Mode
	check     func(Launch) error
	exec      func(Launch) error

	pending atomic.Bool

	mu       sync.Mutex
	handover *Launch
}

// NewCoordinator builds a Coordinator. terminate is called once, after the
// grace delay, when a replacement has started.
func NewCoordinator(locator LaunchLocator, terminate func(), opts ...Option) *Coordinator {
	c := &Coordinator{
		locator:   locator,
		spawner:   ExecSpawner{},
		terminate: terminate,
		grace:     DefaultGrace,
		logger:    slog.Default(),
		check:     checkLaunch,
		exec:      execLaunch,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending reports whether a restart has been committed.
func (c *Coordinator) Pending() bool {
	return c.pending.Load()
}

// RequestRestart starts the replacement and schedules termination. A second
// call while one is pending returns ErrRestartPending and does nothing. On
// ErrSpawnFailed nothing is scheduled and a later call may retry.
func (c *Coordinator) RequestRestart(ctx context.Context) error {
	if !c.pending.CompareAndSwap(false, true) {
		return ErrRestartPending
	}

	launch, err := c.locator.Locate()
	if err != nil {
		c.pending.Store(false)
		c.logger.Error("restart aborted", "error", err)
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}

	if c.mode == ModeExec {
		if err := c.check(launch); err != nil {
			c.pending.Store(false)
			c.logger.Error("restart aborted", "path", launch.Path, "error", err)
			return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
		}
		c.mu.Lock()
		c.handover = &launch
		c.mu.Unlock()
		c.logger.Info("restart scheduled", "mode", c.mode, "path", launch.Path, "dev", launch.Dev, "grace", c.grace)
		time.AfterFunc(c.grace, c.terminate)
		return nil
	}

	pid, err := c.spawner.Spawn(ctx, launch)
	if err != nil {
		c.pending.Store(false)
		c.logger.Error("restart aborted", "path", launch.Path, "error", err)
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}

	c.logger.Info("replacement started", "pid", pid, "path", launch.Path, "dev", launch.Dev, "grace", c.grace)
	time.AfterFunc(c.grace, c.terminate)
	return nil
}

// Handover replaces the process with the launch recorded by a ModeExec
// restart. Call it after the UI has released the terminal and every deferred
// cleanup has run. It returns nil when no handover is due and does not return
// at all on success.
func (c *Coordinator) Handover() error {
	c.mu.Lock()
	launch := c.handover
	c.mu.Unlock()
	if launch == nil {
		return nil
	}
	if err := c.exec(*launch); err != nil {
		return fmt.Errorf("%w: %w", ErrSpawnFailed, err)
	}
	return nil
}
