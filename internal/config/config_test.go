package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Scheduler.MaxParallel, cfg.Scheduler.MaxParallel)
}

func TestLoadConfigMergesFileOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "quality:\n  review_score_threshold: 9\nsandbox:\n  backend: remote\n  remote_url: https://runner.example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.Quality.ReviewScoreThreshold)
	assert.Equal(t, "remote", cfg.Sandbox.Backend)
	assert.Equal(t, "https://runner.example.com", cfg.Sandbox.RemoteURL)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultConfig().Scheduler.MaxParallel, cfg.Scheduler.MaxParallel)
}

func TestLoadConfigMalformedFileIsError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("not: [valid: yaml"), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestConsoleEnvOverrides(t *testing.T) {
	t.Setenv("WORLDMIND_CONSOLE_COLOR", "0")
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.False(t, cfg.Console.EnableColor)
}

func TestValidateRejectsBadRecursionLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RecursionLimit = 0
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsRemoteBackendWithoutURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Sandbox.Backend = "remote"
	cfg.Sandbox.RemoteURL = ""
	assert.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownCheckpointStore(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Checkpoint.Store = "postgres"
	assert.Error(t, cfg.Validate())
}
