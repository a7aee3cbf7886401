package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/juanzandev/CS487Project/internal/app"
	"github.com/juanzandev/CS487Project/internal/config"
)

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitCycleFailed = 2
	exitConfig      = 3
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCmd(app.Run)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "gradewidget: %v\n", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrCycleFailed):
		return exitCycleFailed
	case errors.Is(err, config.ErrConfigMissing), errors.Is(err, config.ErrConfigInvalid):
		return exitConfig
	default:
		return exitError
	}
}
