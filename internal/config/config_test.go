package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	require.NotNil(t, cfg)
	assert.Equal(t, "table", cfg.Format)
	assert.False(t, cfg.Quiet)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "50ms", cfg.Mixer.PeakPollInterval)
	assert.Equal(t, "2s", cfg.Mixer.ProcPollInterval)
	assert.Equal(t, 0.05, cfg.Mixer.VolumeStep)
	assert.True(t, cfg.Mixer.ShowSystemSounds)
}

func TestLoad(t *testing.T) {
	t.Run("returns defaults when no config file exists", func(t *testing.T) {
		tmpDir := t.TempDir()
		origDir, _ := os.Getwd()
		os.Chdir(tmpDir)
		defer os.Chdir(origDir)

		cfg, err := Load()
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "table", cfg.Format)
	})

	t.Run("loads config from file", func(t *testing.T) {
		tmpDir := t.TempDir()

		configContent := `
format: json
quiet: true
mixer:
  peak_poll_interval: "100ms"
  volume_step: 0.02
  show_system_sounds: false
`
		configPath := filepath.Join(tmpDir, "deskmix.yaml")
		err := os.WriteFile(configPath, []byte(configContent), 0644)
		require.NoError(t, err)

		cfg, err := LoadFromFile(configPath)
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, "json", cfg.Format)
		assert.True(t, cfg.Quiet)
		assert.Equal(t, "100ms", cfg.Mixer.PeakPollInterval)
		assert.Equal(t, 0.02, cfg.Mixer.VolumeStep)
		assert.False(t, cfg.Mixer.ShowSystemSounds)
	})

	t.Run("rejects unreadable file", func(t *testing.T) {
		_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})
}
