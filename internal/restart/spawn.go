package restart

import (
	"context"
	"os"
	"os/exec"
)

// ExecSpawner starts the replacement with os/exec, detached from this
// process's lifetime. The replacement inherits the standard streams.
type ExecSpawner struct{}

// Spawn starts l and releases it without waiting.
func (ExecSpawner) Spawn(_ context.Context, l Launch) (int, error) {
	if err := checkLaunch(l); err != nil {
		return 0, err
	}
	// Not CommandContext: cancelling the caller must not kill the replacement.
	cmd := exec.Command(l.Path, l.Args...)
	cmd.Dir = l.Dir
	cmd.Env = l.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = detachedAttr()
	if err := cmd.Start(); err != nil {
		return 0, err
	}
	pid := cmd.Process.Pid
	// The replacement is running either way; Release only frees our handle.
	_ = cmd.Process.Release()
	return pid, nil
}
