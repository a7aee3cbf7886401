//go:build !darwin && !linux && !windows

package theme

import "context"

// SystemDetector has no query on this platform; the engine falls back to the
// terminal background.
func SystemDetector() Detector {
	return DetectorFunc(func(context.Context) (Appearance, error) {
		return "", ErrUnsupported
	})
}
