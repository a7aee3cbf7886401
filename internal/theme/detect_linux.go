//go:build linux

package theme

import (
	"context"
	"os"
)

// SystemDetector asks GNOME's color-scheme setting, then the GTK theme name.
func SystemDetector() Detector {
	return DetectorFunc(func(ctx context.Context) (Appearance, error) {
		if out, err := runCommand(ctx, "gsettings", "get", "org.gnome.desktop.interface", "color-scheme"); err == nil {
			if a, ok := parseColorScheme(out); ok {
				return a, nil
			}
		}
		if a, ok := parseGtkTheme(os.Getenv("GTK_THEME")); ok {
			return a, nil
		}
		out, err := runCommand(ctx, "gsettings", "get", "org.gnome.desktop.interface", "gtk-theme")
		if err != nil {
			return "", err
		}
		if a, ok := parseGtkTheme(out); ok {
			return a, nil
		}
		return "", ErrUnsupported
	})
}
