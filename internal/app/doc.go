// Package app is the composition root of the grade widget.
//
// # Overview
//
// Run wires configuration, the Canvas client, the poller, the grade cache,
// the snapshot publisher, theme resolution, the restart coordinator and the
// terminal UI. Two modes exist:
//
//   - Interactive: takes the single-instance lock, resolves the theme once,
//     starts the poller and blocks in the bubbletea program.
//   - Headless: loads the settings, runs exactly one refresh cycle and prints
//     the snapshot as a table. A failed cycle returns ErrCycleFailed.
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> logging.New()        file sink (TUI) or stderr (headless)
//	       ├─────> config.NewStore()    TOML document + connection prober
//	       ├─────> poller.New()         canvas.Reloader -> state.Cache -> publish
//	       ├─────> acquireInstance()    waits for a restarting predecessor
//	       ├─────> theme.Engine.Start() one resolution per process
//	       └─────> ui.Run()             blocks until quit or restart
//
// # Settings
//
// Settings.Apply is the only path that writes the document after start-up:
// validate, probe the credentials when they changed, save, then restart when
// the theme changed. Interval and credential changes are picked up by the
// next cycle without a restart.
//
// # Shutdown
//
// Leaving the UI cancels the run context and waits up to three seconds for
// the poller. In-flight requests are abandoned; if the worker is still stuck
// the error is logged and Run returns anyway.
//
// A theme restart from a terminal finishes after all of that: once the
// deferred cleanup has restored the terminal and released the instance lock,
// Run execs the successor in place.
package app
