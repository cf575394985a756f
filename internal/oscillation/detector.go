// Package oscillation implements the failure controller's oscillation
// detector (spec §4.6): it watches each task's bounded history of error
// keys and promotes a pending RETRY to ESCALATE once it sees an A-B-A
// pattern, rather than letting a task retry forever between the same two
// failure modes.
package oscillation

import "github.com/worldmind/worldmind/internal/models"

// DefaultHistoryLimit bounds how many error keys are retained per task;
// only the pattern over the most recent entries matters.
const DefaultHistoryLimit = 8

// Detector tracks per-task error-key history. The zero value is ready to
// use. Not safe for concurrent use by multiple goroutines on the same
// task ID without external synchronization — callers own one Detector per
// mission and drive it from a single orchestration goroutine.
type Detector struct {
	limit   int
	history map[string][]string
}

// New constructs a Detector with the default history limit.
func New() *Detector {
	return &Detector{limit: DefaultHistoryLimit, history: make(map[string][]string)}
}

// Record appends errorKey to taskID's history, trimming to the history
// limit, and reports whether the updated history now exhibits an A-B-A
// oscillation: history[i] == history[i-2] && history[i] != history[i-1]
// at the most recent three entries.
func (d *Detector) Record(taskID, errorKey string) (oscillating bool) {
	h := append(d.history[taskID], errorKey)
	if len(h) > d.limit {
		h = h[len(h)-d.limit:]
	}
	d.history[taskID] = h
	return hasOscillation(h)
}

// hasOscillation reports whether the tail of history matches the A-B-A
// pattern required for escalation: the same error key recurring with a
// different one in between.
func hasOscillation(history []string) bool {
	n := len(history)
	if n < 3 {
		return false
	}
	return history[n-1] == history[n-3] && history[n-1] != history[n-2]
}

// NextActionFor returns the action the task should take given the base
// action requested (typically task.EffectiveOnFailure()) and whether this
// error was just recorded as oscillating. An oscillating RETRY is promoted
// to ESCALATE; any other action, or a non-oscillating RETRY, passes
// through unchanged.
func NextActionFor(base models.NextAction, oscillating bool) models.NextAction {
	if oscillating && base == models.ActionRetry {
		return models.ActionEscalate
	}
	return base
}

// Reset clears history for taskID, used when a task is re-dispatched
// after a successful merge of a prior wave so stale error keys from an
// earlier task instance (same ID, new mission run) don't leak in.
func (d *Detector) Reset(taskID string) {
	delete(d.history, taskID)
}
