//go:build !windows

package restart

import "syscall"

// New session: a signal to this process group must not reach the replacement.
func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
