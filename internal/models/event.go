package models

import "time"

// EventKind names the class of an Event, used by subscribers to filter
// without inspecting Payload.
type EventKind string

const (
	EventMissionStatusChanged EventKind = "mission.status_changed"
	EventWaveStarted          EventKind = "wave.started"
	EventWaveCompleted        EventKind = "wave.completed"
	EventTaskDispatched       EventKind = "task.dispatched"
	EventTaskCompleted        EventKind = "task.completed"
	EventQualityDecision      EventKind = "task.quality_decision"
	EventMergeResolved        EventKind = "git.merge_resolved"
	EventEscalated            EventKind = "task.escalated"
)

// Event is a single notification published on the event bus. Delivery is
// synchronous and at-most-once: a subscriber that attaches after an event
// was published never sees it. Replay for that case comes from the
// checkpoint store, not the bus.
type Event struct {
	Kind      EventKind
	MissionID string
	TaskID    string // empty for mission-scoped events
	Payload   interface{}
	Timestamp time.Time
}
