// Package gitengine implements Worldmind's git isolation engine (spec
// §4.3): per-task worktrees cut from a per-mission workspace, always-fresh
// branches, and a rebase-first merge protocol with bounded conflict retry.
package gitengine

import (
	"context"
	"os/exec"
)

// CommandRunner abstracts shell command execution so the engine's merge
// and worktree logic can be tested without a real git repository.
type CommandRunner interface {
	Run(ctx context.Context, dir string, args ...string) (output string, err error)
}

// ShellCommandRunner runs git via os/exec in the given directory.
type ShellCommandRunner struct{}

func (ShellCommandRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
