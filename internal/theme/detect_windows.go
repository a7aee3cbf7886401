//go:build windows

package theme

import (
	"context"

	"golang.org/x/sys/windows/registry"
)

const personalizeKey = `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`

// SystemDetector reads AppsUseLightTheme from the current user's registry.
func SystemDetector() Detector {
	return DetectorFunc(func(context.Context) (Appearance, error) {
		k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, registry.QUERY_VALUE)
		if err != nil {
			return "", err
		}
		defer func() { _ = k.Close() }()

		v, _, err := k.GetIntegerValue("AppsUseLightTheme")
		if err != nil {
			return "", err
		}
		if v == 0 {
			return AppearanceDark, nil
		}
		return AppearanceLight, nil
	})
}
