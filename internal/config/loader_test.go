package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFile(t *testing.T) {
	root := t.TempDir()

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.Equal(t, 64, cfg.Ingest.BatchSize)
	assert.Equal(t, ".rlm/index.db", cfg.Store.Path)
	assert.False(t, cfg.Watch.Enabled)
}

func TestLoad_WithFile(t *testing.T) {
	root := t.TempDir()
	rlmDir := filepath.Join(root, ".rlm")
	require.NoError(t, os.MkdirAll(rlmDir, 0755))

	configContent := `
ingest:
  workers: 8
  batch_size: 128
store:
  path: custom/index.db
watch:
  enabled: true
  debounce_millis: 750
`
	require.NoError(t, os.WriteFile(filepath.Join(rlmDir, "config.yml"), []byte(configContent), 0644))

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Ingest.Workers)
	assert.Equal(t, 128, cfg.Ingest.BatchSize)
	assert.Equal(t, "custom/index.db", cfg.Store.Path)
	assert.True(t, cfg.Watch.Enabled)
	assert.Equal(t, int64(750), cfg.Watch.DebounceMillis)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	rlmDir := filepath.Join(root, ".rlm")
	require.NoError(t, os.MkdirAll(rlmDir, 0755))

	configContent := "ingest:\n  workers: 8\n"
	require.NoError(t, os.WriteFile(filepath.Join(rlmDir, "config.yml"), []byte(configContent), 0644))

	t.Setenv("RLM_INGEST_WORKERS", "16")

	cfg, err := NewLoader(root).Load()
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Ingest.Workers)
}

func TestLoad_RejectsInvalidConfig(t *testing.T) {
	root := t.TempDir()
	rlmDir := filepath.Join(root, ".rlm")
	require.NoError(t, os.MkdirAll(rlmDir, 0755))

	configContent := "ingest:\n  workers: 0\n"
	require.NoError(t, os.WriteFile(filepath.Join(rlmDir, "config.yml"), []byte(configContent), 0644))

	_, err := NewLoader(root).Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, Validate(cfg))

	cfg.Ingest.Workers = 0
	require.Error(t, Validate(cfg))
}
