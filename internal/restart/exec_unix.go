//go:build !windows

package restart

import (
	"io/fs"
	"syscall"
)

func isExecutable(info fs.FileInfo) bool {
	return info.Mode().Perm()&0o111 != 0
}

func execve(path string, argv, env []string) error {
	return syscall.Exec(path, argv, env)
}
