package gitengine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/worldmind/worldmind/internal/errs"
)

// MaxConflictRetries bounds how many times MergeTask will rebase-and-retry
// before giving up with an unresolvable_conflict (spec §4.3/§7).
const MaxConflictRetries = 2

// RetryBackoff is the delay between rebase retry attempts.
const RetryBackoff = 500 * time.Millisecond

// MergeTask rebases taskID's branch onto targetBranch and fast-forward
// merges it in, retrying up to MaxConflictRetries times on conflict with a
// fixed backoff between attempts. Exhausting the retry budget aborts the
// in-progress rebase and returns an *errs.MergeConflictError.
func (e *Engine) MergeTask(ctx context.Context, taskID, targetBranch string) error {
	branch := branchName(taskID)
	path := worktreePath(e.RepoPath, taskID)

	var lastErr error
	for attempt := 0; attempt <= MaxConflictRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(RetryBackoff):
			}
		}

		if out, err := e.Runner.Run(ctx, path, "rebase", targetBranch); err != nil {
			if isConflict(out) {
				_, _ = e.Runner.Run(ctx, path, "rebase", "--abort")
				lastErr = fmt.Errorf("rebase conflict: %s", out)
				continue
			}
			return fmt.Errorf("rebase task %s onto %s: %w (%s)", taskID, targetBranch, err, out)
		}

		if out, err := e.run(ctx, "merge", "--ff-only", branch); err != nil {
			return fmt.Errorf("fast-forward merge task %s: %w (%s)", taskID, err, out)
		}
		return nil
	}

	return &errs.MergeConflictError{TaskID: taskID, Retries: MaxConflictRetries, Err: lastErr}
}

func isConflict(commandOutput string) bool {
	lower := strings.ToLower(commandOutput)
	return strings.Contains(lower, "conflict") || strings.Contains(lower, "could not apply")
}
