// Package logging builds the process-wide slog logger.
//
// In the terminal UI the log goes to a file under $XDG_STATE_HOME because
// bubbletea owns the screen; headless runs log to stderr.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const logFile = "gradewidget/gradewidget.log"

// Options selects the sink and level.
type Options struct {
	// Path overrides the default log file. Ignored when Stderr is set.
	Path   string
	Stderr bool
	Debug  bool
}

// DefaultPath returns $XDG_STATE_HOME/gradewidget/gradewidget.log, creating
// the directory when needed.
func DefaultPath() (string, error) {
	path, err := xdg.StateFile(logFile)
	if err != nil {
		return "", fmt.Errorf("resolve log path: %w", err)
	}
	return path, nil
}

// New returns a logger and a closer for its sink. The path is empty when
// logging to stderr.
func New(opts Options) (*slog.Logger, string, io.Closer, error) {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if opts.Stderr {
		return slog.New(slog.NewTextHandler(os.Stderr, handlerOpts)), "", nopCloser{}, nil
	}

	path := opts.Path
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, "", nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, "", nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, "", nil, fmt.Errorf("open log: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, handlerOpts)), path, f, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
