package theme

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/juanzandev/CS487Project/internal/config"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		requested config.Theme
		host      Appearance
		want      Palette
	}{
		{config.ThemeAuto, AppearanceDark, PaletteDark},
		{config.ThemeAuto, AppearanceLight, PaletteLight},
		{config.ThemeLight, AppearanceDark, PaletteLight},
		{config.ThemeDark, AppearanceLight, PaletteDark},
		{config.ThemeNord, AppearanceLight, PaletteNord},
		{config.ThemeNord, AppearanceDark, PaletteNord},
		{"", AppearanceDark, PaletteDark},
	}
	for _, tt := range tests {
		if got := Resolve(tt.requested, tt.host); got != tt.want {
			t.Fatalf("Resolve(%q, %q) = %q, want %q", tt.requested, tt.host, got, tt.want)
		}
	}
}

type countingDetector struct {
	appearance Appearance
	err        error
	calls      int
}

func (d *countingDetector) Detect(context.Context) (Appearance, error) {
	d.calls++
	return d.appearance, d.err
}

func TestEngine_ResolvesAtStartAndApplyOnly(t *testing.T) {
	d := &countingDetector{appearance: AppearanceDark}
	e := NewEngine(d)

	st := e.Start(context.Background(), config.ThemeAuto)
	if st.Resolved != PaletteDark || st.Host != AppearanceDark {
		t.Fatalf("Start = %+v, want dark", st)
	}

	// The host switching later is not observed until the next Apply.
	d.appearance = AppearanceLight
	if got := e.Current().Resolved; got != PaletteDark {
		t.Fatalf("Current = %q, want dark until re-resolved", got)
	}
	if d.calls != 1 {
		t.Fatalf("detector called %d times, want 1", d.calls)
	}

	st = e.Apply(context.Background(), config.ThemeNord)
	if st.Resolved != PaletteNord || d.calls != 1 {
		t.Fatalf("Apply(nord) = %+v after %d detections, want nord without detection", st, d.calls)
	}

	st = e.Apply(context.Background(), config.ThemeAuto)
	if st.Resolved != PaletteLight || d.calls != 2 {
		t.Fatalf("Apply(auto) = %+v after %d detections, want light", st, d.calls)
	}
}

func TestEngine_FallbackOnDetectionError(t *testing.T) {
	d := &countingDetector{err: ErrUnsupported}
	e := NewEngine(d, WithFallback(func() Appearance { return AppearanceDark }))

	if st := e.Start(context.Background(), config.ThemeAuto); st.Resolved != PaletteDark {
		t.Fatalf("Start = %+v, want fallback dark", st)
	}
}

func TestParseMacStyle(t *testing.T) {
	if a, err := parseMacStyle("Dark\n", nil); err != nil || a != AppearanceDark {
		t.Fatalf("parseMacStyle(Dark) = %q, %v", a, err)
	}
	if a, err := parseMacStyle("", &exec.ExitError{}); err != nil || a != AppearanceLight {
		t.Fatalf("parseMacStyle(missing key) = %q, %v", a, err)
	}
	if _, err := parseMacStyle("", errors.New("not found")); err == nil {
		t.Fatalf("parseMacStyle should surface non-exit errors")
	}
}

func TestParseColorScheme(t *testing.T) {
	tests := map[string]Appearance{
		"'prefer-dark'\n":  AppearanceDark,
		"'prefer-light'\n": AppearanceLight,
		"'default'":        AppearanceLight,
	}
	for in, want := range tests {
		if got, ok := parseColorScheme(in); !ok || got != want {
			t.Fatalf("parseColorScheme(%q) = %q, %v, want %q", in, got, ok, want)
		}
	}
	if _, ok := parseColorScheme("''"); ok {
		t.Fatalf("parseColorScheme accepted an empty value")
	}
}

func TestParseGtkTheme(t *testing.T) {
	if a, ok := parseGtkTheme("Adwaita:dark"); !ok || a != AppearanceDark {
		t.Fatalf("parseGtkTheme(Adwaita:dark) = %q, %v", a, ok)
	}
	if a, ok := parseGtkTheme("'Yaru-dark'"); !ok || a != AppearanceDark {
		t.Fatalf("parseGtkTheme(Yaru-dark) = %q, %v", a, ok)
	}
	if a, ok := parseGtkTheme("Adwaita"); !ok || a != AppearanceLight {
		t.Fatalf("parseGtkTheme(Adwaita) = %q, %v", a, ok)
	}
	if _, ok := parseGtkTheme(" "); ok {
		t.Fatalf("parseGtkTheme accepted an empty name")
	}
}

func TestValidateEdit(t *testing.T) {
	old := config.Config{BaseURL: "https://x.instructure.com", APIToken: "abc", Theme: config.ThemeAuto, PollIntervalSeconds: 60}

	edit, err := ValidateEdit(old, old)
	if err != nil || !edit.Empty() {
		t.Fatalf("ValidateEdit(same) = %+v, %v, want empty edit", edit, err)
	}

	next := old
	next.Theme = config.ThemeNord
	next.PollIntervalSeconds = 120
	edit, err = ValidateEdit(old, next)
	if err != nil {
		t.Fatalf("ValidateEdit returned %v", err)
	}
	if !edit.ThemeChanged || !edit.IntervalChanged || edit.ConnChanged || !edit.RestartRequired() {
		t.Fatalf("ValidateEdit = %+v", edit)
	}

	next = old
	next.APIToken = "def"
	edit, _ = ValidateEdit(old, next)
	if edit.RestartRequired() || !edit.ConnChanged {
		t.Fatalf("token change = %+v, want connection change without restart", edit)
	}

	next.BaseURL = "not a url"
	if _, err := ValidateEdit(old, next); !errors.Is(err, config.ErrConfigInvalid) {
		t.Fatalf("ValidateEdit(bad url) error = %v, want ErrConfigInvalid", err)
	}

	next = old
	next.PollIntervalSeconds = 0
	if _, err := ValidateEdit(old, next); !errors.Is(err, config.ErrConfigInvalid) {
		t.Fatalf("ValidateEdit(zero interval) error = %v, want ErrConfigInvalid", err)
	}
}
