//go:build windows

package restart

import (
	"errors"
	"io/fs"
)

func isExecutable(fs.FileInfo) bool {
	return true
}

func execve(string, []string, []string) error {
	return errors.New("in-place restart is not supported on windows")
}
