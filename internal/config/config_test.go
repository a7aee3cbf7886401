package config

import (
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		BaseURL:             "https://x.instructure.com",
		APIToken:            "abc",
		Theme:               ThemeAuto,
		PollIntervalSeconds: 60,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty base url", func(c *Config) { c.BaseURL = "  " }, "base_url"},
		{"relative base url", func(c *Config) { c.BaseURL = "x.instructure.com/api" }, "base_url"},
		{"ftp scheme", func(c *Config) { c.BaseURL = "ftp://x.instructure.com" }, "base_url"},
		{"placeholder base url", func(c *Config) { c.BaseURL = "https://your-school.instructure.com" }, "base_url"},
		{"empty token", func(c *Config) { c.APIToken = "" }, "api_token"},
		{"placeholder token", func(c *Config) { c.APIToken = "your_api_token_here" }, "api_token"},
		{"unknown theme", func(c *Config) { c.Theme = "solarized" }, "theme"},
		{"zero interval", func(c *Config) { c.PollIntervalSeconds = 0 }, "poll_interval_seconds"},
		{"negative interval", func(c *Config) { c.PollIntervalSeconds = -5 }, "poll_interval_seconds"},
		{"one week interval", func(c *Config) { c.PollIntervalSeconds = MaxPollIntervalSeconds }, ""},
		{"interval past one week", func(c *Config) { c.PollIntervalSeconds = MaxPollIntervalSeconds + 1 }, "poll_interval_seconds"},
		{"interval overflowing duration", func(c *Config) { c.PollIntervalSeconds = math.MaxInt }, "poll_interval_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Fatalf("Validate returned %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("Validate error = %v, want ErrConfigInvalid", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Field != tt.field {
				t.Fatalf("Validate error = %v, want field %q", err, tt.field)
			}
		})
	}
}

func TestParseTheme(t *testing.T) {
	got, err := ParseTheme("  NoRd ")
	if err != nil || got != ThemeNord {
		t.Fatalf("ParseTheme = %q, %v, want nord", got, err)
	}
	if _, err := ParseTheme("sepia"); !errors.Is(err, ErrConfigInvalid) {
		t.Fatalf("ParseTheme(sepia) error = %v, want ErrConfigInvalid", err)
	}
}

func TestNextTheme(t *testing.T) {
	if got := NextTheme(ThemeAuto); got != ThemeLight {
		t.Fatalf("NextTheme(auto) = %q, want light", got)
	}
	if got := NextTheme(ThemeNord); got != ThemeAuto {
		t.Fatalf("NextTheme(nord) = %q, want auto", got)
	}
	if got := NextTheme("bogus"); got != ThemeAuto {
		t.Fatalf("NextTheme(bogus) = %q, want auto", got)
	}
}

func TestNormalizedFillsThemeOnly(t *testing.T) {
	cfg := Config{BaseURL: " https://x.instructure.com/ ", APIToken: " abc "}.Normalized()
	if cfg.BaseURL != "https://x.instructure.com" {
		t.Fatalf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.APIToken != "abc" {
		t.Fatalf("APIToken = %q", cfg.APIToken)
	}
	if cfg.Theme != DefaultTheme {
		t.Fatalf("Theme = %q, want %q", cfg.Theme, DefaultTheme)
	}
	if cfg.PollIntervalSeconds != 0 {
		t.Fatalf("PollIntervalSeconds = %d, want the zero left for Validate to reject", cfg.PollIntervalSeconds)
	}
}

func TestPollIntervalSaturates(t *testing.T) {
	if got := (Config{PollIntervalSeconds: 90}).PollInterval(); got != 90*time.Second {
		t.Fatalf("PollInterval = %v, want 1m30s", got)
	}
	got := Config{PollIntervalSeconds: math.MaxInt}.PollInterval()
	if got != MaxPollInterval {
		t.Fatalf("PollInterval = %v, want %v", got, MaxPollInterval)
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	if d.Theme != DefaultTheme || d.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Fatalf("Defaults = %+v", d)
	}
}

func TestLogValueRedactsToken(t *testing.T) {
	var sb strings.Builder
	logger := slog.New(slog.NewTextHandler(&sb, nil))
	cfg := validConfig()
	cfg.APIToken = "7~supersecrettoken"
	logger.Info("loaded", "config", cfg)

	out := sb.String()
	if strings.Contains(out, "supersecret") {
		t.Fatalf("log output leaked token: %s", out)
	}
	if !strings.Contains(out, "****oken") {
		t.Fatalf("log output = %s, want redacted suffix", out)
	}
	if cfg.Redacted().APIToken == cfg.APIToken {
		t.Fatalf("Redacted kept the token")
	}
}
