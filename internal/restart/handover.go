package restart

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/term"
)

// Mode picks how the replacement takes over.
type Mode int

const (
	// ModeDetach starts a detached child, then terminates this process.
	ModeDetach Mode = iota
	// ModeExec terminates the UI first and then replaces this process image,
	// so the replacement keeps the terminal and the shell's job control.
	ModeExec
)

func (m Mode) String() string {
	if m == ModeExec {
		return "exec"
	}
	return "detach"
}

// DefaultMode is ModeExec for an interactive terminal on Unix. A detached
// child would share the tty with the shell once this process exits.
func DefaultMode() Mode {
	if runtime.GOOS != "windows" && term.IsTerminal(int(os.Stdin.Fd())) {
		return ModeExec
	}
	return ModeDetach
}

// checkLaunch verifies that l can be started, so a broken launch is reported
// while the current process is still fully alive.
func checkLaunch(l Launch) error {
	if l.Path == "" {
		return errors.New("launch path is empty")
	}
	info, err := os.Stat(l.Path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", l.Path)
	}
	if !isExecutable(info) {
		return fmt.Errorf("%s is not executable", l.Path)
	}
	if l.Dir != "" {
		dir, err := os.Stat(l.Dir)
		if err != nil {
			return fmt.Errorf("working directory: %w", err)
		}
		if !dir.IsDir() {
			return fmt.Errorf("working directory %s is not a directory", l.Dir)
		}
	}
	return nil
}

// execLaunch replaces the process image with l. It returns only on failure.
func execLaunch(l Launch) error {
	if l.Dir != "" {
		if err := os.Chdir(l.Dir); err != nil {
			return fmt.Errorf("chdir: %w", err)
		}
	}
	argv := append([]string{l.Path}, l.Args...)
	return execve(l.Path, argv, l.Env)
}
