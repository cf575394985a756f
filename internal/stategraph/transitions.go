package stategraph

import "github.com/worldmind/worldmind/internal/models"

// Events a node can emit. CLARIFYING and AWAITING_APPROVAL are optional
// detours: UPLOADING can emit EvSpecified to skip straight past
// CLARIFYING, and PLANNING can emit EvApproved to skip straight past
// AWAITING_APPROVAL, when the node decides no human input is needed.
const (
	EvUploaded           Event = "uploaded"
	EvNeedsClarification Event = "needs_clarification"
	EvClarified          Event = "clarified"
	EvSpecified          Event = "specified"
	EvPlanned            Event = "planned"
	EvNeedsApproval      Event = "needs_approval"
	EvApproved           Event = "approved"
	EvWavesComplete      Event = "waves_complete"
	EvFailed             Event = "failed"
	EvCancelled          Event = "cancelled"
)

// transition defines one valid (from status, event) -> to status mapping.
type transition struct {
	From  models.MissionStatus
	Event Event
	To    models.MissionStatus
}

// validTransitions is the canonical mission status transition table
// (spec §2/§7).
var validTransitions = []transition{
	{models.MissionClassifying, EvUploaded, models.MissionUploading},

	{models.MissionUploading, EvNeedsClarification, models.MissionClarifying},
	{models.MissionUploading, EvSpecified, models.MissionSpecifying},

	{models.MissionClarifying, EvClarified, models.MissionSpecifying},

	{models.MissionSpecifying, EvPlanned, models.MissionPlanning},

	{models.MissionPlanning, EvNeedsApproval, models.MissionAwaitingApproval},
	{models.MissionPlanning, EvApproved, models.MissionExecuting},

	{models.MissionAwaitingApproval, EvApproved, models.MissionExecuting},

	{models.MissionExecuting, EvWavesComplete, models.MissionCompleted},

	// A fault reaches FAILED from any non-terminal status.
	{models.MissionClassifying, EvFailed, models.MissionFailed},
	{models.MissionUploading, EvFailed, models.MissionFailed},
	{models.MissionClarifying, EvFailed, models.MissionFailed},
	{models.MissionSpecifying, EvFailed, models.MissionFailed},
	{models.MissionPlanning, EvFailed, models.MissionFailed},
	{models.MissionAwaitingApproval, EvFailed, models.MissionFailed},
	{models.MissionExecuting, EvFailed, models.MissionFailed},

	// Cancellation reaches CANCELLED from any non-terminal status.
	{models.MissionClassifying, EvCancelled, models.MissionCancelled},
	{models.MissionUploading, EvCancelled, models.MissionCancelled},
	{models.MissionClarifying, EvCancelled, models.MissionCancelled},
	{models.MissionSpecifying, EvCancelled, models.MissionCancelled},
	{models.MissionPlanning, EvCancelled, models.MissionCancelled},
	{models.MissionAwaitingApproval, EvCancelled, models.MissionCancelled},
	{models.MissionExecuting, EvCancelled, models.MissionCancelled},
}

// nextStatus looks up the transition table for (from, event).
func nextStatus(from models.MissionStatus, event Event) (models.MissionStatus, bool) {
	for _, t := range validTransitions {
		if t.From == from && t.Event == event {
			return t.To, true
		}
	}
	return "", false
}
