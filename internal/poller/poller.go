package poller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/juanzandev/CS487Project/internal/canvas"
	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/state"
	"github.com/juanzandev/CS487Project/internal/telemetry"
)

var (
	// ErrStopTimeout is returned by Stop when the loop did not exit in time.
	ErrStopTimeout = errors.New("poller did not stop in time")
	// ErrAlreadyStarted is returned by a second Start.
	ErrAlreadyStarted = errors.New("poller already started")
	// ErrStopped is returned by Start after Stop.
	ErrStopped = errors.New("poller stopped")
)

const defaultConcurrency = 4

// State is the poller's position in its cycle.
type State int32

const (
	Idle State = iota
	Fetching
	Reconciling
	Backoff
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Reconciling:
		return "reconciling"
	case Backoff:
		return "backoff"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// ConfigSource is read at the start of every cycle. *config.Store implements it.
type ConfigSource interface {
	Current() (config.Config, bool)
}

// Notifier receives every view the poller writes. *publish.Publisher implements it.
type Notifier interface {
	Publish(v state.View) bool
}

// Option customises a Poller.
type Option func(*Poller)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Poller) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithMetrics records cycle metrics.
func WithMetrics(m *telemetry.PollerMetrics) Option {
	return func(p *Poller) { p.metrics = m }
}

// WithConcurrency bounds parallel enrollment fetches.
func WithConcurrency(n int) Option {
	return func(p *Poller) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithCeiling sets the backoff cap as a multiple of the base interval.
func WithCeiling(multiple int) Option {
	return func(p *Poller) {
		if multiple > 0 {
			p.ceiling = multiple
		}
	}
}

// WithInterval overrides the configured poll interval.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.override = d
		}
	}
}

// WithClock replaces time.Now for snapshot timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// Poller drives refresh cycles against the Canvas API and is the only writer
// of the grade cache.
type Poller struct {
	api     canvas.API
	cache   *state.Cache
	notify  Notifier
	cfg     ConfigSource
	logger  *slog.Logger
	metrics *telemetry.PollerMetrics
	now     func() time.Time

	concurrency int
	ceiling     int
	override    time.Duration

	state   atomic.Int32
	cycleMu sync.Mutex
	trigger chan struct{}
	policy  *retryPolicy

	runMu   sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New builds a Poller. notify may be nil.
func New(api canvas.API, cache *state.Cache, notify Notifier, cfg ConfigSource, opts ...Option) *Poller {
	p := &Poller{
		api:         api,
		cache:       cache,
		notify:      notify,
		cfg:         cfg,
		logger:      slog.Default(),
		now:         time.Now,
		concurrency: defaultConcurrency,
		ceiling:     DefaultCeiling,
		trigger:     make(chan struct{}, 1),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// State returns the current cycle state.
func (p *Poller) State() State {
	return State(p.state.Load())
}

// Start runs the first cycle immediately and then keeps polling until ctx is
// cancelled or Stop is called.
func (p *Poller) Start(ctx context.Context) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	switch {
	case p.stopped:
		return ErrStopped
	case p.started:
		return ErrAlreadyStarted
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.started = true
	p.logger.Info("starting poller", "interval", p.interval(), "ceiling", p.ceiling)
	go p.loop(ctx)
	return nil
}

// Refresh requests a manual cycle. It skips any pending backoff delay. While a
// cycle is in flight, any number of requests collapse into one follow-up cycle.
func (p *Poller) Refresh() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Stop cancels the loop and waits up to timeout for it to exit. In-flight
// requests are abandoned, not awaited.
func (p *Poller) Stop(timeout time.Duration) error {
	p.runMu.Lock()
	p.stopped = true
	started, cancel := p.started, p.cancel
	p.runMu.Unlock()
	if !started {
		return nil
	}
	cancel()
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-p.done:
		p.logger.Info("poller stopped")
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// RunOnce performs a single cycle outside the loop, for headless mode. It
// shares the single-flight guard with the loop.
func (p *Poller) RunOnce(ctx context.Context) (state.View, error) {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()
	view, err := p.cycle(ctx, true)
	p.state.Store(int32(Idle))
	return view, err
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		manual := false
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		case <-p.trigger:
			manual = true
		}

		delay := p.step(ctx, manual)
		if ctx.Err() != nil {
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(delay)
	}
}

// step runs one cycle and returns the delay before the next automatic one.
func (p *Poller) step(ctx context.Context, manual bool) time.Duration {
	p.cycleMu.Lock()
	defer p.cycleMu.Unlock()

	base := p.interval()
	if p.policy == nil || p.policy.base != base {
		p.policy = newRetryPolicy(base, p.ceiling)
	}

	view, err := p.cycle(ctx, manual)
	if ctx.Err() != nil {
		p.state.Store(int32(Idle))
		return base
	}
	failed := err != nil || view.Snapshot.Status == state.StatusFailed
	delay := p.policy.next(failed)
	if failed {
		p.state.Store(int32(Backoff))
		p.metrics.RecordBackoff(ctx, delay)
		p.logger.Warn("poll failed, backing off", "delay", delay, "failures", view.Health.ConsecutiveFailures)
	} else {
		p.state.Store(int32(Idle))
		p.metrics.RecordBackoff(ctx, 0)
	}
	return delay
}

func (p *Poller) cycle(ctx context.Context, manual bool) (state.View, error) {
	cycleID := uuid.NewString()
	logger := p.logger.With("cycle", cycleID, "manual", manual)
	started := time.Now()

	p.state.Store(int32(Fetching))
	logger.Debug("fetching courses")
	courses, err := p.api.FetchCourses(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return state.View{}, ctx.Err()
		}
		view := p.cache.RecordFailure(err, p.now())
		p.publish(view)
		p.metrics.RecordCycle(ctx, "error", manual, time.Since(started), 0)
		logger.Warn("course list fetch failed", "error", err)
		return view, fmt.Errorf("fetch courses: %w", err)
	}

	entries := p.fetchEnrollments(ctx, logger, courses)
	if ctx.Err() != nil {
		// Shutting down: a snapshot built from abandoned requests would
		// misreport every course as failed.
		return state.View{}, ctx.Err()
	}

	p.state.Store(int32(Reconciling))
	snap := state.NewSnapshot(cycleID, p.now(), entries)
	view := p.cache.Replace(snap)
	p.publish(view)

	failures := snap.Failures()
	p.metrics.RecordCycle(ctx, string(snap.Status), manual, time.Since(started), failures)
	logger.Info("poll cycle finished",
		"status", snap.Status,
		"courses", len(snap.Entries),
		"failed", failures,
		"changed", len(view.Changed),
		"duration", time.Since(started).Round(time.Millisecond),
	)
	return view, nil
}

func (p *Poller) fetchEnrollments(ctx context.Context, logger *slog.Logger, courses []canvas.Course) []state.Entry {
	entries := make([]state.Entry, len(courses))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, course := range courses {
		g.Go(func() error {
			entry := state.Entry{Course: course}
			enr, err := p.api.FetchEnrollment(ctx, course.ID)
			if err != nil {
				entry.Err = err.Error()
				entry.Enrollment = canvas.Enrollment{CourseID: course.ID}
				logger.Debug("enrollment fetch failed", "course_id", course.ID, "error", err)
			} else {
				enr.CourseID = course.ID
				entry.Enrollment = enr
			}
			entries[i] = entry
			return nil
		})
	}
	_ = g.Wait()
	return entries
}

func (p *Poller) publish(v state.View) {
	if p.notify != nil {
		p.notify.Publish(v)
	}
}

func (p *Poller) interval() time.Duration {
	d := config.DefaultPollIntervalSeconds * time.Second
	switch {
	case p.override > 0:
		d = p.override
	case p.cfg != nil:
		if cfg, ok := p.cfg.Current(); ok && cfg.PollIntervalSeconds > 0 {
			d = cfg.PollInterval()
		}
	}
	return min(d, config.MaxPollInterval)
}
