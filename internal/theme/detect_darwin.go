//go:build darwin

package theme

import "context"

// SystemDetector queries the macOS global AppleInterfaceStyle default.
func SystemDetector() Detector {
	return DetectorFunc(func(ctx context.Context) (Appearance, error) {
		return parseMacStyle(runCommand(ctx, "defaults", "read", "-g", "AppleInterfaceStyle"))
	})
}
