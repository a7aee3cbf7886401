package theme

import (
	"context"
	"errors"
	"os/exec"
	"strings"
)

// runCommand is replaced in tests.
var runCommand = func(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return string(out), err
}

// parseMacStyle reads `defaults read -g AppleInterfaceStyle`. The key only
// exists in dark mode.
func parseMacStyle(out string, err error) (Appearance, error) {
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return AppearanceLight, nil
		}
		return "", err
	}
	if strings.EqualFold(strings.TrimSpace(out), "dark") {
		return AppearanceDark, nil
	}
	return AppearanceLight, nil
}

// parseColorScheme reads `gsettings get org.gnome.desktop.interface color-scheme`.
func parseColorScheme(out string) (Appearance, bool) {
	value := strings.Trim(strings.TrimSpace(out), `'"`)
	switch value {
	case "prefer-dark":
		return AppearanceDark, true
	case "prefer-light", "default":
		return AppearanceLight, true
	}
	return "", false
}

// parseGtkTheme reads a GTK theme name such as "Adwaita:dark" or "Yaru-dark".
func parseGtkTheme(name string) (Appearance, bool) {
	name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `'"`))
	if name == "" {
		return "", false
	}
	if strings.HasSuffix(name, ":dark") || strings.HasSuffix(name, "-dark") {
		return AppearanceDark, true
	}
	return AppearanceLight, true
}
