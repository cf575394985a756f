package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/worldmind/worldmind/internal/checkpoint"
	"github.com/worldmind/worldmind/internal/models"
)

// writeTestConfig writes a minimal config.yaml that avoids any external
// dependency: the remote sandbox backend only stores fields at
// construction time (no dial), and the file checkpoint store is a plain
// directory of JSON files.
func writeTestConfig(t *testing.T, checkpointDir string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := fmt.Sprintf(`
checkpoint:
  store: file
  file_dir: %s
sandbox:
  backend: remote
  remote_url: http://sandbox.invalid
`, checkpointDir)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// seedCheckpoint writes mission's current state as the latest checkpoint in
// dir, the same shape stategraph.Driver's own checkpointing produces.
func seedCheckpoint(t *testing.T, dir string, mission *models.Mission) {
	t.Helper()
	store, err := checkpoint.NewFileStore(dir)
	require.NoError(t, err)
	defer store.Close()

	snapshot, err := json.Marshal(mission)
	require.NoError(t, err)

	err = store.Append(context.Background(), models.Checkpoint{
		MissionID:     mission.ID,
		StepID:        "seed-1",
		StateSnapshot: snapshot,
		CreatedAt:     time.Now(),
	})
	require.NoError(t, err)
}
