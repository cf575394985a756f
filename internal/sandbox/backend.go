// Package sandbox implements Worldmind's sandbox driver (spec §4.4): the
// boundary that dispatches a task's agent process into an isolated
// execution environment, either a local Docker container or a remote
// one-shot task-runner, behind a single Backend contract.
package sandbox

import (
	"context"
	"time"

	"github.com/worldmind/worldmind/internal/models"
)

// MCPEndpoint is one Model Context Protocol server a dispatched agent
// should be able to reach, passed through the container entrypoint's
// MCP_SERVER_<NAME>_URL / MCP_SERVER_<NAME>_TOKEN environment contract.
type MCPEndpoint struct {
	Name  string
	URL   string
	Token string
}

// DispatchSpec is everything a backend needs to run one task.
type DispatchSpec struct {
	Task              models.Task
	WorkingTree       string // host path to the task's git worktree
	CredentialsToken  string
	MCPEndpoints      []MCPEndpoint
	Runtime           string // selects the agent-sandbox-<runtime> image for the local backend
	Timeout           time.Duration
}

// Backend is implemented by each sandbox execution strategy. Both
// implementations in this package satisfy the exact same contract so the
// state graph's dispatch node never needs to know which one is active.
type Backend interface {
	Dispatch(ctx context.Context, spec DispatchSpec) (models.DispatchResult, error)
	// Cancel asks a still-running dispatch for taskID to stop. It is not an
	// error to cancel a dispatch that has already finished.
	Cancel(ctx context.Context, taskID string) error
}
