package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrConfigMissing reports that no settings document exists yet.
	ErrConfigMissing = errors.New("config missing")
	// ErrConfigInvalid reports a malformed or incomplete settings document.
	ErrConfigInvalid = errors.New("config invalid")
)

// Theme is the palette the user asked for.
type Theme string

const (
	ThemeAuto  Theme = "auto"
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeNord  Theme = "nord"
)

var themeOrder = []Theme{ThemeAuto, ThemeLight, ThemeDark, ThemeNord}

// Themes returns the selectable themes in display order.
func Themes() []Theme {
	out := make([]Theme, len(themeOrder))
	copy(out, themeOrder)
	return out
}

// NextTheme returns the theme after current in the cycle.
func NextTheme(current Theme) Theme {
	for i, t := range themeOrder {
		if t == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ParseTheme accepts a theme name case-insensitively.
func ParseTheme(value string) (Theme, error) {
	candidate := Theme(strings.ToLower(strings.TrimSpace(value)))
	for _, t := range themeOrder {
		if t == candidate {
			return t, nil
		}
	}
	return "", &ValidationError{Field: "theme", Reason: fmt.Sprintf("unknown theme %q", value)}
}

const (
	// DefaultPollIntervalSeconds matches the ten minute refresh of the desktop widget.
	DefaultPollIntervalSeconds = 600
	// MaxPollIntervalSeconds is one week. Backoff multiplies the interval, so
	// the bound keeps every derived delay far inside time.Duration.
	MaxPollIntervalSeconds = 7 * 24 * 60 * 60
	DefaultTheme               = ThemeAuto

	placeholderHost  = "your-school.instructure.com"
	placeholderToken = "your_api_token_here"
)

// Config is the persisted connection and preference document.
type Config struct {
	BaseURL             string `toml:"base_url"`
	APIToken            string `toml:"api_token"`
	Theme               Theme  `toml:"theme"`
	PollIntervalSeconds int    `toml:"poll_interval_seconds"`
}

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}

// Validate checks the document invariants and returns the first violation.
func (c Config) Validate() error {
	if err := validateBaseURL(c.BaseURL); err != nil {
		return err
	}
	token := strings.TrimSpace(c.APIToken)
	if token == "" {
		return &ValidationError{Field: "api_token", Reason: "must not be empty"}
	}
	if token == placeholderToken {
		return &ValidationError{Field: "api_token", Reason: "still set to the template placeholder"}
	}
	if _, err := ParseTheme(string(c.Theme)); err != nil {
		return err
	}
	if c.PollIntervalSeconds <= 0 {
		return &ValidationError{Field: "poll_interval_seconds", Reason: "must be greater than zero"}
	}
	if c.PollIntervalSeconds > MaxPollIntervalSeconds {
		return &ValidationError{Field: "poll_interval_seconds", Reason: fmt.Sprintf("must be at most %d (one week)", MaxPollIntervalSeconds)}
	}
	return nil
}

func validateBaseURL(raw string) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &ValidationError{Field: "base_url", Reason: "must not be empty"}
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return &ValidationError{Field: "base_url", Reason: err.Error()}
	}
	if !u.IsAbs() || u.Host == "" {
		return &ValidationError{Field: "base_url", Reason: "must be an absolute URL such as https://school.instructure.com"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "base_url", Reason: fmt.Sprintf("unsupported scheme %q", u.Scheme)}
	}
	if strings.EqualFold(u.Hostname(), placeholderHost) {
		return &ValidationError{Field: "base_url", Reason: "still set to the template placeholder"}
	}
	return nil
}

// MaxPollInterval is MaxPollIntervalSeconds as a Duration.
const MaxPollInterval = MaxPollIntervalSeconds * time.Second

// PollInterval returns the configured refresh cadence, saturated at
// MaxPollInterval.
func (c Config) PollInterval() time.Duration {
	if c.PollIntervalSeconds > MaxPollIntervalSeconds {
		return MaxPollInterval
	}
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Defaults is the starting point for a first-run setup.
func Defaults() Config {
	return Config{Theme: DefaultTheme, PollIntervalSeconds: DefaultPollIntervalSeconds}
}

// Normalized trims whitespace and fills in the theme when it is blank. The
// poll interval is left as given.
func (c Config) Normalized() Config {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	c.APIToken = strings.TrimSpace(c.APIToken)
	if strings.TrimSpace(string(c.Theme)) == "" {
		c.Theme = DefaultTheme
	} else if t, err := ParseTheme(string(c.Theme)); err == nil {
		c.Theme = t
	}
	return c
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.APIToken = redact(c.APIToken)
	return c
}

// LogValue keeps the token out of structured logs.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("base_url", c.BaseURL),
		slog.String("api_token", redact(c.APIToken)),
		slog.String("theme", string(c.Theme)),
		slog.Int("poll_interval_seconds", c.PollIntervalSeconds),
	)
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
