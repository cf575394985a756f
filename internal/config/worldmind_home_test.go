package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetWorldmindHomeHonorsEnvVar(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORLDMIND_HOME", dir)

	home, err := GetWorldmindHome()
	require.NoError(t, err)
	assert.Equal(t, dir, home)
}

func TestGetWorldmindHomeFindsMarkerFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".worldmind-root"), nil, 0o644))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Chdir(nested)

	home, err := GetWorldmindHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, ".worldmind"), home)
}

func TestCheckpointPathsAreUnderHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WORLDMIND_HOME", dir)

	dbPath, err := CheckpointSQLitePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "checkpoints.db"), dbPath)

	fileDir, err := CheckpointFileDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "checkpoints"), fileDir)
	info, err := os.Stat(fileDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
