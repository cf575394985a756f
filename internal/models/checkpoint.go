package models

import "time"

// Checkpoint is one entry in a mission's append-only checkpoint log: a full
// snapshot of mission state taken at a state-graph step, linked to its
// parent step so the log forms a chain rather than a flat list.
type Checkpoint struct {
	MissionID     string
	StepID        string
	ParentStepID  string // empty for the first checkpoint of a mission
	StateSnapshot []byte // serialized Mission, opaque to the checkpoint store
	CreatedAt     time.Time
}
