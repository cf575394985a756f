package checkpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/worldmind/worldmind/internal/filelock"
	"github.com/worldmind/worldmind/internal/models"
)

// FileStore is the fallback checkpoint store for environments without a
// sqlite driver available: one JSON file per mission under dir, written
// with the filelock package's lock-then-atomic-write-then-rename sequence
// so concurrent writers never corrupt a mission's checkpoint file. An
// in-memory index avoids re-reading the file for every Latest/History call
// within a single process.
type FileStore struct {
	dir string
	mu  sync.Mutex
	// cache mirrors on-disk state per mission for this process only; the
	// file itself remains the source of truth across processes.
	cache map[string][]models.Checkpoint
}

// NewFileStore creates a FileStore rooted at dir, creating it if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return &FileStore{dir: dir, cache: make(map[string][]models.Checkpoint)}, nil
}

func (s *FileStore) missionPath(missionID string) string {
	return filepath.Join(s.dir, missionID+".json")
}

func (s *FileStore) Append(_ context.Context, cp models.Checkpoint) error {
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.loadLocked(cp.MissionID)
	if err != nil {
		return err
	}
	for _, existing := range history {
		if existing.StepID == cp.StepID {
			return fmt.Errorf("checkpoint %s/%s already exists", cp.MissionID, cp.StepID)
		}
	}
	history = append(history, cp)

	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal checkpoint history for %s: %w", cp.MissionID, err)
	}
	if err := filelock.LockAndWrite(s.missionPath(cp.MissionID), data); err != nil {
		return fmt.Errorf("persist checkpoint %s/%s: %w", cp.MissionID, cp.StepID, err)
	}

	s.cache[cp.MissionID] = history
	return nil
}

func (s *FileStore) Latest(_ context.Context, missionID string) (models.Checkpoint, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, err := s.loadLocked(missionID)
	if err != nil {
		return models.Checkpoint{}, false, err
	}
	if len(history) == 0 {
		return models.Checkpoint{}, false, nil
	}
	return history[len(history)-1], true, nil
}

func (s *FileStore) History(_ context.Context, missionID string) ([]models.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(missionID)
}

// loadLocked returns the cached history for missionID, reading the
// on-disk file the first time a mission is touched in this process.
// Caller must hold s.mu.
func (s *FileStore) loadLocked(missionID string) ([]models.Checkpoint, error) {
	if history, ok := s.cache[missionID]; ok {
		return history, nil
	}

	data, err := os.ReadFile(s.missionPath(missionID))
	if os.IsNotExist(err) {
		s.cache[missionID] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint file for %s: %w", missionID, err)
	}

	var history []models.Checkpoint
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("decode checkpoint file for %s: %w", missionID, err)
	}
	sort.Slice(history, func(i, j int) bool { return history[i].CreatedAt.Before(history[j].CreatedAt) })
	s.cache[missionID] = history
	return history, nil
}

func (s *FileStore) Close() error { return nil }
