package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/restart"
	"github.com/juanzandev/CS487Project/internal/theme"
)

// Restarter relaunches the process. *restart.Coordinator implements it.
type Restarter interface {
	RequestRestart(ctx context.Context) error
}

// ThemeApplier re-resolves the palette after a save. *theme.Engine implements it.
type ThemeApplier interface {
	Apply(ctx context.Context, requested config.Theme) theme.State
}

// Outcome reports what a settings save did.
type Outcome struct {
	Edit       theme.Edit
	Written    bool
	Restarting bool
}

// Settings applies edits from the wizard and settings form.
type Settings struct {
	store     *config.Store
	engine    ThemeApplier
	restarter Restarter
	onSaved   func()
	logger    *slog.Logger

	mu sync.Mutex
}

// NewSettings builds the settings flow. onSaved runs after any write that
// does not end in a restart; it may be nil.
func NewSettings(store *config.Store, engine ThemeApplier, restarter Restarter, onSaved func(), logger *slog.Logger) *Settings {
	if logger == nil {
		logger = slog.Default()
	}
	return &Settings{
		store:     store,
		engine:    engine,
		restarter: restarter,
		onSaved:   onSaved,
		logger:    logger,
	}
}

// Apply validates the candidate, probes new credentials, persists the
// document and, when the theme changed, restarts the process. If the
// replacement cannot be started the previous theme is restored in memory and
// the error wraps restart.ErrSpawnFailed.
func (s *Settings) Apply(ctx context.Context, candidate config.Config) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, loaded := s.store.Current()
	edit, err := theme.ValidateEdit(old, candidate)
	if err != nil {
		return Outcome{}, err
	}
	if loaded && edit.Empty() {
		return Outcome{Edit: edit}, nil
	}

	if !loaded || edit.ConnChanged {
		if err := s.store.ValidateConnection(ctx, edit.Candidate); err != nil {
			return Outcome{Edit: edit}, fmt.Errorf("check connection: %w", err)
		}
	}

	res, err := s.store.Save(edit.Candidate)
	if err != nil {
		return Outcome{Edit: edit}, fmt.Errorf("save settings: %w", err)
	}
	out := Outcome{Edit: edit, Written: res.Written}
	s.logger.Info("settings saved",
		"theme_changed", res.ThemeChanged,
		"interval_changed", edit.IntervalChanged,
		"connection_changed", edit.ConnChanged,
	)

	if !res.ThemeChanged {
		if s.onSaved != nil {
			s.onSaved()
		}
		return out, nil
	}

	s.engine.Apply(ctx, edit.Candidate.Theme)
	if err := s.restarter.RequestRestart(ctx); err != nil {
		if errors.Is(err, restart.ErrRestartPending) {
			out.Restarting = true
			return out, nil
		}
		s.store.RollbackTheme(res.Previous.Theme)
		s.engine.Apply(ctx, res.Previous.Theme)
		s.logger.Error("theme restart failed, keeping previous theme", "theme", res.Previous.Theme, "error", err)
		return out, fmt.Errorf("restart for theme %q: %w", edit.Candidate.Theme, err)
	}
	out.Restarting = true
	return out, nil
}
