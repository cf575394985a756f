// Package checkpoint implements Worldmind's append-only checkpoint log
// (spec §4.8): every state-graph transition writes a full mission-state
// snapshot, linked to its parent step, so a mission can be replayed from
// its last checkpoint after a crash or an explicit `worldmind resume`.
package checkpoint

import (
	"context"

	"github.com/worldmind/worldmind/internal/models"
)

// Store is the interface both the durable (sqlite) and fallback
// (in-memory/file) implementations satisfy. It never overwrites or deletes
// a row: Append is the only write.
type Store interface {
	// Append records a new checkpoint. It is an error for StepID to
	// already exist for MissionID.
	Append(ctx context.Context, cp models.Checkpoint) error
	// Latest returns the most recently appended checkpoint for missionID,
	// or ok=false if the mission has no checkpoints.
	Latest(ctx context.Context, missionID string) (cp models.Checkpoint, ok bool, err error)
	// History returns every checkpoint for missionID in append order.
	History(ctx context.Context, missionID string) ([]models.Checkpoint, error)
	Close() error
}
