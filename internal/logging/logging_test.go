package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "gradewidget.log")

	logger, got, closer, err := New(Options{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, got)

	logger.Debug("hidden")
	logger.Info("poll cycle finished", "status", "complete")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `msg="poll cycle finished" status=complete`)
	assert.NotContains(t, string(data), "hidden")
}

func TestNew_DebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gradewidget.log")

	logger, _, closer, err := New(Options{Path: path, Debug: true})
	require.NoError(t, err)
	logger.Debug("fetching courses")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "level=DEBUG"))
}

func TestNew_Stderr(t *testing.T) {
	logger, path, closer, err := New(Options{Stderr: true})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.Empty(t, path)
	assert.NoError(t, closer.Close())
}
