package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/juanzandev/CS487Project/internal/canvas"
	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/logging"
	"github.com/juanzandev/CS487Project/internal/poller"
	"github.com/juanzandev/CS487Project/internal/publish"
	"github.com/juanzandev/CS487Project/internal/restart"
	"github.com/juanzandev/CS487Project/internal/state"
	"github.com/juanzandev/CS487Project/internal/telemetry"
	"github.com/juanzandev/CS487Project/internal/theme"
	"github.com/juanzandev/CS487Project/internal/ui"
)

const shutdownTimeout = 3 * time.Second

// Options configure a run of the widget.
type Options struct {
	ConfigPath string // empty uses $XDG_CONFIG_HOME/gradewidget/config.toml
	PollEvery  int    // seconds; zero follows the config
	Headless   bool
	Debug      bool
	LogPath    string    // empty uses $XDG_STATE_HOME/gradewidget/gradewidget.log
	LockPath   string    // empty uses $XDG_STATE_HOME/gradewidget/instance.lock
	Out        io.Writer // headless output; defaults to os.Stdout
}

// Run boots the widget until the context is cancelled, the user quits, or a
// theme restart hands over to a new process.
func Run(ctx context.Context, opts Options) error {
	handover, err := run(ctx, opts)
	if err != nil || handover == nil {
		return err
	}
	// Every deferred cleanup in run has happened: the terminal is restored,
	// the instance lock released and the log file closed.
	return handover()
}

// run does the work of Run. The returned func, when non-nil, replaces the
// process with its successor.
func run(ctx context.Context, opts Options) (func() error, error) {
	logger, logPath, closer, err := logging.New(logging.Options{
		Path:   opts.LogPath,
		Stderr: opts.Headless,
		Debug:  opts.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	defer func() { _ = closer.Close() }()
	slog.SetDefault(logger)

	store, err := config.NewStore(opts.ConfigPath, config.WithProber(canvas.NewProber()))
	if err != nil {
		return nil, fmt.Errorf("init config store: %w", err)
	}

	diag := telemetry.NewDiagnostics()
	defer func() { _ = diag.Shutdown(context.Background()) }()
	metrics, err := telemetry.NewPollerMetrics(diag.Provider())
	if err != nil {
		return nil, fmt.Errorf("init metrics: %w", err)
	}

	pollOpts := []poller.Option{poller.WithLogger(logger), poller.WithMetrics(metrics)}
	if opts.PollEvery > 0 {
		pollOpts = append(pollOpts, poller.WithInterval(time.Duration(opts.PollEvery)*time.Second))
	}
	pub := publish.New()
	defer pub.Close()
	p := poller.New(canvas.NewReloader(store), &state.Cache{}, pub, store, pollOpts...)

	if opts.Headless {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		return nil, runHeadless(ctx, out, store, p)
	}

	lock, err := acquireInstance(ctx, opts.LockPath, instanceWait)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	cfg, needsSetup, err := loadForUI(store, logger)
	if err != nil {
		return nil, err
	}

	engine := theme.NewEngine(nil, theme.WithLogger(logger))
	resolved := engine.Start(ctx, cfg.Theme)

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}
	coord := restart.NewCoordinator(restart.NewLocator(workDir, store.Path()), stop,
		restart.WithLogger(logger), restart.WithMode(restart.DefaultMode()))

	startPolling := func() {
		if err := p.Start(runCtx); errors.Is(err, poller.ErrAlreadyStarted) {
			p.Refresh()
		}
	}
	settings := NewSettings(store, engine, coord, startPolling, logger)
	if !needsSetup {
		startPolling()
	}

	sub := pub.Subscribe()
	defer sub.Close()

	uiErr := ui.Run(runCtx, ui.Options{
		Views:      sub.C(),
		Refresh:    p.Refresh,
		Busy: func() bool {
			s := p.State()
			return s == poller.Fetching || s == poller.Reconciling
		},
		Settings:   store.Current,
		NeedsSetup: needsSetup,
		Palette:    resolved.Resolved,
		LogPath:    logPath,
		Save: func(ctx context.Context, candidate config.Config) (bool, error) {
			out, err := settings.Apply(ctx, candidate)
			return out.Restarting, err
		},
		Diagnostics: func(ctx context.Context) ([]string, error) {
			sum, err := diag.Collect(ctx)
			if err != nil {
				return nil, err
			}
			return sum.Lines(), nil
		},
	})

	stop()
	if err := p.Stop(shutdownTimeout); err != nil {
		// The worker is abandoned; process exit ends it.
		logger.Error("poller shutdown", "error", err)
	}
	if coord.Pending() {
		logger.Info("exiting for restart")
		return coord.Handover, uiErr
	}
	return nil, uiErr
}

// loadForUI reads the settings for an interactive run. A missing document is
// not fatal: the template is written and the first-run wizard takes over.
func loadForUI(store *config.Store, logger *slog.Logger) (config.Config, bool, error) {
	cfg, err := store.Load()
	switch {
	case err == nil:
		logger.Info("settings loaded", "path", store.Path(), "settings", cfg)
		return cfg, false, nil
	case errors.Is(err, config.ErrConfigMissing):
		if path, werr := store.WriteTemplate(); werr != nil {
			logger.Warn("could not write config template", "error", werr)
		} else {
			logger.Info("config missing, wrote template", "template", path)
		}
		return config.Defaults(), true, nil
	default:
		return config.Config{}, false, fmt.Errorf("load config: %w", err)
	}
}
