package restart

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime/debug"
	"strings"
)

// ConfigEnv carries the settings path to the replacement process.
const ConfigEnv = "GRADEWIDGET_CONFIG"

// ErrTransientExecutable reports an executable path that will not outlive
// this process, such as a macOS App Translocation mount.
var ErrTransientExecutable = errors.New("executable runs from a transient location")

// Launch is everything needed to start the replacement process.
type Launch struct {
	Path string
	Args []string
	Dir  string
	Env  []string
	// Dev is true for a `go run` invocation rather than a built binary.
	Dev bool
}

// Locator decides how to relaunch the current program.
type Locator struct {
	workDir    string
	configPath string

	executable func() (string, error)
	resolve    func(string) (string, error)
	buildInfo  func() (*debug.BuildInfo, bool)
	lookPath   func(string) (string, error)
	environ    func() []string
	tempDir    string
}

// NewLocator captures the start-up working directory and the settings path
// the replacement should load.
func NewLocator(workDir, configPath string) *Locator {
	return &Locator{
		workDir:    workDir,
		configPath: configPath,
		executable: os.Executable,
		resolve:    filepath.EvalSymlinks,
		buildInfo:  debug.ReadBuildInfo,
		lookPath:   exec.LookPath,
		environ:    os.Environ,
		tempDir:    os.TempDir(),
	}
}

// Locate returns the Launch for this process. A built binary relaunches from
// its resolved path; a `go run` binary, which lives in a go-build directory
// that is deleted on exit, relaunches through the go tool instead.
func (l *Locator) Locate() (Launch, error) {
	exe, err := l.executable()
	if err != nil {
		return Launch{}, fmt.Errorf("resolve executable: %w", err)
	}
	if resolved, err := l.resolve(exe); err == nil {
		exe = resolved
	}
	if strings.Contains(filepath.ToSlash(exe), "/AppTranslocation/") {
		return Launch{}, fmt.Errorf("%w: %s", ErrTransientExecutable, exe)
	}

	launch := Launch{Dir: l.workDir, Env: l.env()}
	if !l.isGoRunBinary(exe) {
		launch.Path = exe
		return launch, nil
	}

	info, ok := l.buildInfo()
	if !ok || info.Path == "" || info.Path == "command-line-arguments" {
		return Launch{}, fmt.Errorf("%w: go run binary without a main package path", ErrTransientExecutable)
	}
	goTool, err := l.lookPath("go")
	if err != nil {
		return Launch{}, fmt.Errorf("find go tool: %w", err)
	}
	launch.Path = goTool
	launch.Args = []string{"run", info.Path}
	launch.Dev = true
	return launch, nil
}

func (l *Locator) isGoRunBinary(exe string) bool {
	tmp := l.tempDir
	if resolved, err := l.resolve(tmp); err == nil {
		tmp = resolved
	}
	rel, err := filepath.Rel(tmp, exe)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	for _, seg := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(seg, "go-build") {
			return true
		}
	}
	return false
}

func (l *Locator) env() []string {
	base := l.environ()
	out := make([]string, 0, len(base)+1)
	for _, kv := range base {
		if strings.HasPrefix(kv, ConfigEnv+"=") {
			continue
		}
		out = append(out, kv)
	}
	if l.configPath != "" {
		out = append(out, ConfigEnv+"="+l.configPath)
	}
	return out
}
