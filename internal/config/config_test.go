package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workspaceRoots:
  - /ws/schemas
maxSearchResults: 10
logLevel: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/schemas"}, cfg.WorkspaceRoots)
	assert.Equal(t, 10, cfg.MaxSearchResults)
	assert.Equal(t, "debug", cfg.LogLevel)

	// Untouched fields keep their defaults.
	assert.Equal(t, Default().CacheDir, cfg.CacheDir)
	assert.Equal(t, Default().DebounceMillis, cfg.DebounceMillis)
	assert.Equal(t, Default().ExcludeGlobs, cfg.ExcludeGlobs)
}

func TestLoadNormalizesBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
workspaceRoots: []
maxSearchResults: -1
debounceMillis: 0
cacheDir: ""
logLevel: ""
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"."}, cfg.WorkspaceRoots)
	assert.Equal(t, 50, cfg.MaxSearchResults)
	assert.Equal(t, 200, cfg.DebounceMillis)
	assert.Equal(t, "tmp/.xcache", cfg.CacheDir)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "navigator.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workspaceRoots: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
