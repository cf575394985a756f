package gitengine

import (
	"context"
	"sync"
)

// MergeRequest is one task's completed work, ready to be rebased and
// merged onto the mission's target branch.
type MergeRequest struct {
	TaskID       string
	TargetBranch string
}

// MergeQueue serializes merges for a single mission: at most one merge is
// ever in flight. Merges run in the order Submit callers acquire the
// mutex, which follows when tasks finish rather than the order they were
// declared in a wave; sync.Mutex does not guarantee first-come,
// first-served among callers that are already waiting.
// This is a supplement beyond the base spec text, added because the
// git isolation engine's "no concurrent merges" invariant otherwise has no
// obvious enforcement point.
type MergeQueue struct {
	engine *Engine
	mu     sync.Mutex
}

// NewMergeQueue constructs a MergeQueue bound to engine.
func NewMergeQueue(engine *Engine) *MergeQueue {
	return &MergeQueue{engine: engine}
}

// Submit blocks until it can acquire the per-mission merge lock, then
// performs the merge. Two goroutines calling Submit concurrently for the
// same mission are serialized here; there is no queueing of requests
// beyond the mutex, since the caller (the orchestrator's wave driver)
// already feeds requests in the order tasks completed.
func (q *MergeQueue) Submit(ctx context.Context, req MergeRequest) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.engine.MergeTask(ctx, req.TaskID, req.TargetBranch)
}
