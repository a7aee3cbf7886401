package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	lockTimeout    = 5 * time.Second
	lockRetryDelay = 50 * time.Millisecond

	documentHeader = "# gradewidget settings. This file holds your Canvas API token:\n" +
		"# keep it out of version control and share config.example.toml instead.\n\n"
)

// Prober checks candidate credentials against the remote API without side effects.
type Prober interface {
	Probe(ctx context.Context, cfg Config) error
}

// ProberFunc adapts a function to Prober.
type ProberFunc func(ctx context.Context, cfg Config) error

// Probe calls f.
func (f ProberFunc) Probe(ctx context.Context, cfg Config) error {
	return f(ctx, cfg)
}

// StoreOption customises a Store.
type StoreOption func(*Store)

// WithProber sets the connection prober used by ValidateConnection.
func WithProber(p Prober) StoreOption {
	return func(s *Store) {
		s.prober = p
	}
}

// SaveResult describes what a successful Save changed.
type SaveResult struct {
	Previous     Config
	ThemeChanged bool
	Written      bool
}

// Store owns the persisted Config. It is the only writer of the document;
// everything else reads through Current.
type Store struct {
	path   string
	lock   *flock.Flock
	prober Prober

	mu      sync.RWMutex
	current Config
	loaded  bool
}

// NewStore builds a Store for path. An empty path selects DefaultPath.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return nil, err
	}
	s := &Store{
		path: resolved,
		lock: flock.New(resolved + ".lock"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Path returns the resolved document path.
func (s *Store) Path() string {
	return s.path
}

// Current returns the last loaded or saved Config.
func (s *Store) Current() (Config, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loaded
}

// Load reads and validates the document.
func (s *Store) Load() (Config, error) {
	if _, err := os.Stat(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigMissing, s.path)
		}
		return Config{}, fmt.Errorf("stat config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	if _, err := s.lock.TryRLockContext(ctx, lockRetryDelay); err != nil {
		return Config{}, fmt.Errorf("lock config: %w", err)
	}
	data, err := os.ReadFile(s.path)
	_ = s.lock.Unlock()
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw document
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: parse %s: %v", ErrConfigInvalid, s.path, err)
	}
	cfg := raw.config().Normalized()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", s.path, err)
	}

	s.mu.Lock()
	s.current = cfg
	s.loaded = true
	s.mu.Unlock()
	return cfg, nil
}

// ValidateConnection checks the candidate's fields and then probes the API
// with its credentials. Nothing is persisted.
func (s *Store) ValidateConnection(ctx context.Context, candidate Config) error {
	candidate = candidate.Normalized()
	if err := candidate.Validate(); err != nil {
		return err
	}
	if s.prober == nil {
		return errors.New("no connection prober configured")
	}
	return s.prober.Probe(ctx, candidate)
}

// Save validates and persists cfg. Saving a Config equal to the loaded one
// leaves the document untouched.
func (s *Store) Save(cfg Config) (SaveResult, error) {
	cfg = cfg.Normalized()
	if err := cfg.Validate(); err != nil {
		return SaveResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result := SaveResult{Previous: s.current}
	if s.loaded && s.current == cfg {
		return result, nil
	}
	if err := s.write(cfg); err != nil {
		return SaveResult{}, err
	}
	result.Written = true
	result.ThemeChanged = s.loaded && s.current.Theme != cfg.Theme
	s.current = cfg
	s.loaded = true
	return result, nil
}

// RollbackTheme restores the in-memory theme after a restart could not be
// performed. The persisted document keeps the requested theme so that a retry
// of the same save is still seen as a theme change.
func (s *Store) RollbackTheme(previous Theme) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Theme = previous
}

// WriteTemplate writes the redacted example document next to the live file.
func (s *Store) WriteTemplate() (string, error) {
	path := TemplatePath(s.path)
	data, err := encode(Template())
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	return path, nil
}

// Template is the placeholder document shipped instead of real credentials.
func Template() Config {
	return Config{
		BaseURL:             "https://" + placeholderHost,
		APIToken:            placeholderToken,
		Theme:               DefaultTheme,
		PollIntervalSeconds: DefaultPollIntervalSeconds,
	}
}

func (s *Store) write(cfg Config) error {
	data, err := encode(cfg)
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), lockTimeout)
	defer cancel()
	if _, err := s.lock.TryLockContext(ctx, lockRetryDelay); err != nil {
		return fmt.Errorf("lock config: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close config: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod config: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	return nil
}

// document is the on-disk shape. A missing poll_interval_seconds key takes
// the default; an explicit value, zero included, is kept for Validate.
type document struct {
	BaseURL             string `toml:"base_url"`
	APIToken            string `toml:"api_token"`
	Theme               Theme  `toml:"theme"`
	PollIntervalSeconds *int   `toml:"poll_interval_seconds"`
}

func (d document) config() Config {
	cfg := Config{BaseURL: d.BaseURL, APIToken: d.APIToken, Theme: d.Theme, PollIntervalSeconds: DefaultPollIntervalSeconds}
	if d.PollIntervalSeconds != nil {
		cfg.PollIntervalSeconds = *d.PollIntervalSeconds
	}
	return cfg
}

func encode(cfg Config) ([]byte, error) {
	body, err := toml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return append([]byte(documentHeader), body...), nil
}
