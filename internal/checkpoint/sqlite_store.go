package checkpoint

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/worldmind/worldmind/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStore is the durable checkpoint store: one row per
// (mission_id, step_id), matching the relational schema named in spec §6.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) a sqlite-backed checkpoint
// database at dbPath, or an in-process database when dbPath is ":memory:".
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("create checkpoint directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init checkpoint schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(ctx context.Context, cp models.Checkpoint) error {
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO checkpoints (mission_id, step_id, parent_step_id, blob, created_at) VALUES (?, ?, ?, ?, ?)`,
		cp.MissionID, cp.StepID, cp.ParentStepID, cp.StateSnapshot, cp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append checkpoint %s/%s: %w", cp.MissionID, cp.StepID, err)
	}
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context, missionID string) (models.Checkpoint, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT mission_id, step_id, parent_step_id, blob, created_at FROM checkpoints
		 WHERE mission_id = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`,
		missionID,
	)
	var cp models.Checkpoint
	if err := row.Scan(&cp.MissionID, &cp.StepID, &cp.ParentStepID, &cp.StateSnapshot, &cp.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return models.Checkpoint{}, false, nil
		}
		return models.Checkpoint{}, false, fmt.Errorf("query latest checkpoint for %s: %w", missionID, err)
	}
	return cp, true, nil
}

func (s *SQLiteStore) History(ctx context.Context, missionID string) ([]models.Checkpoint, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT mission_id, step_id, parent_step_id, blob, created_at FROM checkpoints
		 WHERE mission_id = ? ORDER BY created_at ASC, rowid ASC`,
		missionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query checkpoint history for %s: %w", missionID, err)
	}
	defer rows.Close()

	var out []models.Checkpoint
	for rows.Next() {
		var cp models.Checkpoint
		if err := rows.Scan(&cp.MissionID, &cp.StepID, &cp.ParentStepID, &cp.StateSnapshot, &cp.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan checkpoint row: %w", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
