package gitengine

import (
	"context"
	"fmt"
	"path/filepath"
)

// Engine drives per-mission worktree lifecycle against a single bare/clone
// workspace at RepoPath. One Engine is constructed per mission.
type Engine struct {
	RepoPath string
	Runner   CommandRunner
}

// New constructs an Engine rooted at repoPath, using the real git binary.
func New(repoPath string) *Engine {
	return &Engine{RepoPath: repoPath, Runner: ShellCommandRunner{}}
}

func (e *Engine) run(ctx context.Context, args ...string) (string, error) {
	return e.Runner.Run(ctx, e.RepoPath, args...)
}

// branchName is the deterministic branch name for a task, always derived
// the same way so a repeated AcquireWorktree call for the same task is
// idempotent about naming (though never about branch *contents* — see
// AcquireWorktree).
func branchName(taskID string) string {
	return "worldmind/task-" + taskID
}

func worktreePath(repoPath, taskID string) string {
	return filepath.Join(repoPath, "worktrees", "task-"+taskID)
}

// AcquireWorktree creates a fresh worktree for taskID off of baseBranch.
// Per spec §4.3, the branch is always created fresh: any stale branch left
// over from a prior attempt at this task is force-deleted first, so a
// retried task never inherits a previous attempt's commits.
func (e *Engine) AcquireWorktree(ctx context.Context, taskID, baseBranch string) (path string, err error) {
	branch := branchName(taskID)
	path = worktreePath(e.RepoPath, taskID)

	// Best-effort teardown of a stale worktree/branch from a prior attempt.
	_, _ = e.run(ctx, "worktree", "remove", "--force", path)
	_, _ = e.run(ctx, "branch", "-D", branch)

	if out, err := e.run(ctx, "worktree", "add", "-b", branch, path, baseBranch); err != nil {
		return "", fmt.Errorf("acquire worktree for task %s: %w (%s)", taskID, err, out)
	}
	return path, nil
}

// ReleaseWorktree removes the worktree directory for taskID. The branch is
// left in place, and the merge step does not delete it either; a
// released worktree with an undeleted branch is safe to re-acquire, since
// AcquireWorktree always force-deletes the branch before recreating it.
func (e *Engine) ReleaseWorktree(ctx context.Context, taskID string) error {
	path := worktreePath(e.RepoPath, taskID)
	if out, err := e.run(ctx, "worktree", "remove", "--force", path); err != nil {
		return fmt.Errorf("release worktree for task %s: %w (%s)", taskID, err, out)
	}
	return nil
}

// IsClean reports whether the worktree for taskID has no uncommitted
// changes.
func (e *Engine) IsClean(ctx context.Context, taskID string) (bool, error) {
	path := worktreePath(e.RepoPath, taskID)
	out, err := e.Runner.Run(ctx, path, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("check status for task %s: %w", taskID, err)
	}
	return out == "", nil
}
