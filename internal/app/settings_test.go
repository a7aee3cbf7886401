package app

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanzandev/CS487Project/internal/canvas"
	"github.com/juanzandev/CS487Project/internal/config"
	"github.com/juanzandev/CS487Project/internal/restart"
	"github.com/juanzandev/CS487Project/internal/theme"
)

type recordingEngine struct {
	mu      sync.Mutex
	applied []config.Theme
}

func (e *recordingEngine) Apply(_ context.Context, requested config.Theme) theme.State {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applied = append(e.applied, requested)
	return theme.State{Requested: requested, Resolved: theme.Resolve(requested, theme.AppearanceLight)}
}

func (e *recordingEngine) calls() []config.Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]config.Theme(nil), e.applied...)
}

type staticLocator struct{}

func (staticLocator) Locate() (restart.Launch, error) {
	return restart.Launch{Path: "/opt/gradewidget/gradewidget"}, nil
}

type settingsFixture struct {
	store    *config.Store
	engine   *recordingEngine
	probes   atomic.Int32
	probeErr error
	spawnErr error
	spawned  atomic.Int32
	saved    atomic.Int32
	settings *Settings
}

func newSettingsFixture(t *testing.T) *settingsFixture {
	t.Helper()
	f := &settingsFixture{engine: &recordingEngine{}}

	prober := config.ProberFunc(func(context.Context, config.Config) error {
		f.probes.Add(1)
		return f.probeErr
	})
	store, err := config.NewStore(filepath.Join(t.TempDir(), "config.toml"), config.WithProber(prober))
	require.NoError(t, err)
	f.store = store

	spawner := restart.SpawnerFunc(func(context.Context, restart.Launch) (int, error) {
		f.spawned.Add(1)
		if f.spawnErr != nil {
			return 0, f.spawnErr
		}
		return 1234, nil
	})
	coord := restart.NewCoordinator(staticLocator{}, func() {},
		restart.WithSpawner(spawner), restart.WithGrace(time.Hour))

	f.settings = NewSettings(store, f.engine, coord, func() { f.saved.Add(1) }, nil)
	return f
}

func baseSettings() config.Config {
	return config.Config{
		BaseURL:             "https://x.instructure.com",
		APIToken:            "abc",
		Theme:               config.ThemeLight,
		PollIntervalSeconds: 60,
	}
}

func TestApply_FirstSaveProbesAndStartsPolling(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)

	out, err := f.settings.Apply(context.Background(), baseSettings())
	require.NoError(t, err)

	assert.True(t, out.Written)
	assert.False(t, out.Restarting)
	assert.Equal(t, int32(1), f.probes.Load())
	assert.Equal(t, int32(1), f.saved.Load())
	assert.Zero(t, f.spawned.Load())

	cur, ok := f.store.Current()
	require.True(t, ok)
	assert.Equal(t, baseSettings(), cur)
}

func TestApply_RejectedCredentialsAreNotSaved(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)
	f.probeErr = &canvas.HTTPError{StatusCode: 401, Path: "/api/v1/users/self"}

	_, err := f.settings.Apply(context.Background(), baseSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, canvas.ErrAuth)

	_, ok := f.store.Current()
	assert.False(t, ok)
	_, err = f.store.Load()
	assert.ErrorIs(t, err, config.ErrConfigMissing)
}

func TestApply_InvalidCandidate(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)

	cand := baseSettings()
	cand.PollIntervalSeconds = -5
	_, err := f.settings.Apply(context.Background(), cand)

	var verr *config.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "poll_interval_seconds", verr.Field)
	assert.Zero(t, f.probes.Load())
}

func TestApply_IntervalChangeSkipsProbeAndRestart(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)
	_, err := f.settings.Apply(context.Background(), baseSettings())
	require.NoError(t, err)

	cand := baseSettings()
	cand.PollIntervalSeconds = 120
	out, err := f.settings.Apply(context.Background(), cand)
	require.NoError(t, err)

	assert.True(t, out.Edit.IntervalChanged)
	assert.False(t, out.Restarting)
	assert.Equal(t, int32(1), f.probes.Load(), "interval edits do not probe")
	assert.Equal(t, int32(2), f.saved.Load())
	assert.Zero(t, f.spawned.Load())
}

func TestApply_UnchangedIsNoop(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)
	_, err := f.settings.Apply(context.Background(), baseSettings())
	require.NoError(t, err)

	out, err := f.settings.Apply(context.Background(), baseSettings())
	require.NoError(t, err)
	assert.False(t, out.Written)
	assert.Equal(t, int32(1), f.saved.Load())
}

func TestApply_ThemeChangeRestarts(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)
	_, err := f.settings.Apply(context.Background(), baseSettings())
	require.NoError(t, err)

	cand := baseSettings()
	cand.Theme = config.ThemeNord
	out, err := f.settings.Apply(context.Background(), cand)
	require.NoError(t, err)

	assert.True(t, out.Restarting)
	assert.Equal(t, int32(1), f.spawned.Load())
	assert.Equal(t, []config.Theme{config.ThemeNord}, f.engine.calls())
	cur, _ := f.store.Current()
	assert.Equal(t, config.ThemeNord, cur.Theme)
}

func TestApply_SpawnFailureRollsBackTheme(t *testing.T) {
	t.Parallel()
	f := newSettingsFixture(t)
	_, err := f.settings.Apply(context.Background(), baseSettings())
	require.NoError(t, err)

	f.spawnErr = errors.New("permission denied")
	cand := baseSettings()
	cand.Theme = config.ThemeDark
	out, err := f.settings.Apply(context.Background(), cand)

	require.ErrorIs(t, err, restart.ErrSpawnFailed)
	assert.False(t, out.Restarting)
	cur, _ := f.store.Current()
	assert.Equal(t, config.ThemeLight, cur.Theme, "in-memory theme rolled back")
	assert.Equal(t, []config.Theme{config.ThemeDark, config.ThemeLight}, f.engine.calls())

	// The retry is still a theme change and restarts once spawning works.
	f.spawnErr = nil
	out, err = f.settings.Apply(context.Background(), cand)
	require.NoError(t, err)
	assert.True(t, out.Restarting)
	assert.Equal(t, int32(2), f.spawned.Load())
}
