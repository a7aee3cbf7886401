package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const (
	appDir       = "gradewidget"
	configFile   = "config.toml"
	templateFile = "config.example.toml"
)

// DefaultPath returns $XDG_CONFIG_HOME/gradewidget/config.toml, creating the
// parent directory when needed.
func DefaultPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join(appDir, configFile))
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return path, nil
}

// TemplatePath returns the redacted template location that sits next to path.
func TemplatePath(path string) string {
	return filepath.Join(filepath.Dir(path), templateFile)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPath()
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
