package models

import "time"

// TaskStatus is the lifecycle state of a single task within a mission.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskDispatched TaskStatus = "dispatched"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
	TaskEscalated  TaskStatus = "escalated"
	TaskCancelled  TaskStatus = "cancelled"
)

// NextAction is what the quality gate (or the failure controller) wants the
// state graph to do about a task that did not pass review.
type NextAction string

const (
	ActionRetry    NextAction = "retry"
	ActionEscalate NextAction = "escalate"
	ActionFail     NextAction = "fail"
)

// AgentTag identifies which agent persona should execute a task. Behavior
// differences between agent types live entirely in the instruction template
// and command/path allowlist selected by this tag — the tag is not a
// subtype, Task has no per-agent struct variant.
type AgentTag string

const (
	AgentCoder    AgentTag = "coder"
	AgentReviewer AgentTag = "reviewer"
	AgentTester   AgentTag = "tester"
	AgentResearch AgentTag = "research"
)

// Task is one node of a mission's task DAG: a unit of work assigned to an
// agent, with declared dependencies (by task ID or agent tag) and a
// conservative declaration of files it intends to touch.
type Task struct {
	ID            string
	Name          string
	Prompt        string
	Agent         AgentTag
	DependsOn     []string // task IDs, or "agent:<tag>" references resolved against declared agent tags
	TargetFiles   []string // empty means "no claim" — permissive, see scheduler package doc
	OnFailure     NextAction
	MaxIterations int
	Iteration     int
	Status        TaskStatus
	StartedAt     *time.Time
	CompletedAt   *time.Time
}

// DefaultMaxIterations is used when a task does not declare one.
const DefaultMaxIterations = 3

// EffectiveOnFailure returns the task's configured failure action, or the
// spec default of RETRY when unset.
func (t *Task) EffectiveOnFailure() NextAction {
	if t.OnFailure == "" {
		return ActionRetry
	}
	return t.OnFailure
}

// EffectiveMaxIterations returns the task's configured retry budget, or the
// package default when unset.
func (t *Task) EffectiveMaxIterations() int {
	if t.MaxIterations <= 0 {
		return DefaultMaxIterations
	}
	return t.MaxIterations
}

// ExhaustedRetries reports whether the task has used up its iteration
// budget, meaning any further RETRY must be promoted to ESCALATE.
func (t *Task) ExhaustedRetries() bool {
	return t.Iteration >= t.EffectiveMaxIterations()
}

// HasDependency reports whether dep appears in the task's declared
// dependencies, either as a literal task ID or as an "agent:<tag>"
// reference.
func (t *Task) HasDependency(dep string) bool {
	for _, d := range t.DependsOn {
		if d == dep {
			return true
		}
	}
	return false
}
