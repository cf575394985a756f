// Package models holds the data types shared across Worldmind's
// orchestration packages: missions, tasks, waves, dispatch results, and the
// review/quality types that flow between them.
package models

import "time"

// MissionStatus is the current phase of a mission within the state graph.
type MissionStatus string

const (
	MissionClassifying      MissionStatus = "CLASSIFYING"
	MissionUploading        MissionStatus = "UPLOADING"
	MissionClarifying       MissionStatus = "CLARIFYING"
	MissionSpecifying       MissionStatus = "SPECIFYING"
	MissionPlanning         MissionStatus = "PLANNING"
	MissionAwaitingApproval MissionStatus = "AWAITING_APPROVAL"
	MissionExecuting        MissionStatus = "EXECUTING"
	MissionCompleted        MissionStatus = "COMPLETED"
	MissionFailed           MissionStatus = "FAILED"
	MissionCancelled        MissionStatus = "CANCELLED"
)

// Terminal reports whether a mission in this status can make no further
// progress.
func (s MissionStatus) Terminal() bool {
	switch s {
	case MissionCompleted, MissionFailed, MissionCancelled:
		return true
	default:
		return false
	}
}

// Mission is the top-level unit of work submitted by a user: a natural
// language request that gets classified, specified, planned into a task
// DAG, and executed wave by wave.
type Mission struct {
	ID               string
	Request          string
	Status           MissionStatus
	ProductSpec      string // Markdown product spec produced by SPECIFYING
	Tasks            []Task
	Waves            []Wave
	CompletedTaskIDs map[string]bool
	RecursionCount   int // node invocations so far, checked against RecursionLimit
	WorkspacePath    string
	RepoURL          string
	BaseBranch       string // defaults to "main" when empty
	Strategy         SchedulingStrategy
	MaxParallel      int

	// ApprovalMode, when true, routes PLANNING through AWAITING_APPROVAL
	// instead of straight to EXECUTING (spec §4.1 route2). Approved
	// records that a human has cleared the plan (CLI `worldmind resume
	// --approve`).
	ApprovalMode bool
	Approved     bool

	// ClarificationQuestion is set by the upload node when it decides the
	// request is ambiguous; ClarificationAnswer is supplied externally
	// (CLI `worldmind resume --answer`) before the mission can proceed
	// past CLARIFYING.
	ClarificationQuestion string
	ClarificationAnswer   string

	Errors []string // accumulated node-fault messages, most recent last

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewMission creates a mission in its initial CLASSIFYING status.
func NewMission(id, request string) *Mission {
	now := time.Now()
	return &Mission{
		ID:               id,
		Request:          request,
		Status:           MissionClassifying,
		CompletedTaskIDs: make(map[string]bool),
		Strategy:         StrategyParallel,
		MaxParallel:      4,
		BaseBranch:       "main",
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// MarkCompleted records that taskID finished successfully.
func (m *Mission) MarkCompleted(taskID string) {
	if m.CompletedTaskIDs == nil {
		m.CompletedTaskIDs = make(map[string]bool)
	}
	m.CompletedTaskIDs[taskID] = true
}

// AllTasksCompleted reports whether every declared task has completed.
func (m *Mission) AllTasksCompleted() bool {
	for _, t := range m.Tasks {
		if !m.CompletedTaskIDs[t.ID] {
			return false
		}
	}
	return true
}
