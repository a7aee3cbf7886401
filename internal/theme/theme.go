// Package theme resolves the effective palette from the requested theme and
// the host's light/dark appearance.
//
// Resolution happens once at start-up and once per settings save. The host
// appearance is not watched: with "auto" selected, an OS switch takes effect
// on the next launch.
package theme

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/juanzandev/CS487Project/internal/config"
)

// ErrUnsupported is returned by detectors on platforms without a known query.
var ErrUnsupported = errors.New("appearance detection unsupported on this platform")

// Appearance is the host's light or dark mode.
type Appearance string

const (
	AppearanceLight Appearance = "light"
	AppearanceDark  Appearance = "dark"
)

// Palette identifies a concrete color set.
type Palette string

const (
	PaletteLight Palette = "light"
	PaletteDark  Palette = "dark"
	PaletteNord  Palette = "nord"
)

// Resolve maps a requested theme onto a palette. auto follows the host; any
// explicit theme wins over the host.
func Resolve(requested config.Theme, host Appearance) Palette {
	switch requested {
	case config.ThemeLight:
		return PaletteLight
	case config.ThemeDark:
		return PaletteDark
	case config.ThemeNord:
		return PaletteNord
	}
	if host == AppearanceDark {
		return PaletteDark
	}
	return PaletteLight
}

// Detector reports the host appearance.
type Detector interface {
	Detect(ctx context.Context) (Appearance, error)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(ctx context.Context) (Appearance, error)

// Detect calls f.
func (f DetectorFunc) Detect(ctx context.Context) (Appearance, error) {
	return f(ctx)
}

// State is the requested theme together with what it resolved to.
type State struct {
	Requested  config.Theme
	Host       Appearance
	Resolved   Palette
	ResolvedAt time.Time
}

const detectTimeout = 2 * time.Second

// Engine owns the resolved theme for the life of the process.
type Engine struct {
	detector Detector
	fallback func() Appearance
	logger   *slog.Logger

	mu    sync.RWMutex
	state State
}

// EngineOption customises an Engine.
type EngineOption func(*Engine)

// WithFallback sets the appearance used when detection fails.
func WithFallback(f func() Appearance) EngineOption {
	return func(e *Engine) {
		if f != nil {
			e.fallback = f
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine builds an Engine. A nil detector selects SystemDetector.
func NewEngine(d Detector, opts ...EngineOption) *Engine {
	if d == nil {
		d = SystemDetector()
	}
	e := &Engine{
		detector: d,
		fallback: TerminalAppearance,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start performs the start-up resolution.
func (e *Engine) Start(ctx context.Context, requested config.Theme) State {
	return e.resolve(ctx, requested)
}

// Apply re-resolves after a settings save.
func (e *Engine) Apply(ctx context.Context, requested config.Theme) State {
	return e.resolve(ctx, requested)
}

// Current returns the last resolution.
func (e *Engine) Current() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Engine) resolve(ctx context.Context, requested config.Theme) State {
	host := AppearanceLight
	// Only auto consults the host, so explicit themes never shell out.
	if requested == config.ThemeAuto || requested == "" {
		host = e.detect(ctx)
	}
	st := State{
		Requested:  requested,
		Host:       host,
		Resolved:   Resolve(requested, host),
		ResolvedAt: time.Now(),
	}
	e.mu.Lock()
	e.state = st
	e.mu.Unlock()
	e.logger.Debug("theme resolved", "requested", requested, "host", host, "palette", st.Resolved)
	return st
}

func (e *Engine) detect(ctx context.Context) Appearance {
	ctx, cancel := context.WithTimeout(ctx, detectTimeout)
	defer cancel()
	a, err := e.detector.Detect(ctx)
	if err == nil && (a == AppearanceLight || a == AppearanceDark) {
		return a
	}
	fallback := e.fallback()
	e.logger.Debug("host appearance detection failed, using fallback", "error", err, "fallback", fallback)
	return fallback
}

// TerminalAppearance guesses from the terminal background color.
func TerminalAppearance() Appearance {
	if lipgloss.HasDarkBackground() {
		return AppearanceDark
	}
	return AppearanceLight
}
