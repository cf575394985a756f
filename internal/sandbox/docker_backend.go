package sandbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"

	"github.com/worldmind/worldmind/internal/models"
)

// DefaultTimeout is the wall-clock budget for a task dispatch when the
// task itself does not specify one.
const DefaultTimeout = 10 * time.Minute

// DockerBackend runs each task in its own throwaway container, mounting
// the task's git worktree as the container's working directory.
type DockerBackend struct {
	client *client.Client
	Image  func(runtime string) string

	mu        sync.Mutex
	running   map[string]string // taskID -> containerID
	cancelled map[string]bool
}

// NewDockerBackend dials the local Docker daemon using the standard
// DOCKER_HOST / TLS environment, negotiating the API version against
// whatever the daemon supports.
func NewDockerBackend() (*DockerBackend, error) {
	cli, err := client.NewClientWithOpts(
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	)
	if err != nil {
		return nil, fmt.Errorf("docker sdk client init failed: %w", err)
	}
	return &DockerBackend{
		client:    cli,
		Image:     defaultImageForRuntime,
		running:   make(map[string]string),
		cancelled: make(map[string]bool),
	}, nil
}

func defaultImageForRuntime(runtime string) string {
	if runtime == "" {
		return "worldmind/agent-sandbox:latest"
	}
	return "worldmind/agent-sandbox-" + runtime + ":latest"
}

// Dispatch runs spec.Task's agent inside a fresh container rooted at
// spec.WorkingTree, enforcing spec.Timeout (or DefaultTimeout) as a hard
// wall-clock budget. A timeout or cancellation both kill the container
// with SIGKILL; the distinction is reported on the returned result so the
// quality gate and oscillation detector can tell them apart.
func (b *DockerBackend) Dispatch(ctx context.Context, spec DispatchSpec) (models.DispatchResult, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	image := b.Image(spec.Runtime)
	name := "worldmind-task-" + spec.Task.ID

	env := []string{
		"WORLDMIND_TASK_ID=" + spec.Task.ID,
		"WORLDMIND_AGENT=" + string(spec.Task.Agent),
		"WORLDMIND_CREDENTIALS_TOKEN=" + spec.CredentialsToken,
	}
	for _, ep := range spec.MCPEndpoints {
		env = append(env, "MCP_SERVER_"+strings.ToUpper(ep.Name)+"_URL="+ep.URL)
		env = append(env, "MCP_SERVER_"+strings.ToUpper(ep.Name)+"_TOKEN="+ep.Token)
	}

	created, err := b.client.ContainerCreate(execCtx, &container.Config{
		Image:        image,
		WorkingDir:   "/workspace",
		Cmd:          []string{"agent-run", "--prompt-file", "/workspace/.worldmind-prompt"},
		Env:          env,
		AttachStdout: true,
		AttachStderr: true,
		Tty:          false,
	}, &container.HostConfig{
		Binds:      []string{spec.WorkingTree + ":/workspace"},
		AutoRemove: false,
	}, &network.NetworkingConfig{}, nil, name)
	if err != nil {
		return models.DispatchResult{}, fmt.Errorf("docker container create for task %s: %w", spec.Task.ID, err)
	}

	containerID := created.ID
	b.trackStart(spec.Task.ID, containerID)
	defer b.trackStop(spec.Task.ID)
	defer func() {
		_ = b.client.ContainerRemove(context.Background(), containerID, container.RemoveOptions{Force: true})
	}()

	start := time.Now()
	result := models.DispatchResult{TaskID: spec.Task.ID}

	if err := b.client.ContainerStart(execCtx, containerID, container.StartOptions{}); err != nil {
		return models.DispatchResult{}, fmt.Errorf("docker container start for task %s: %w", spec.Task.ID, err)
	}

	waitCh, errCh := b.client.ContainerWait(execCtx, containerID, container.WaitConditionNotRunning)

	select {
	case <-execCtx.Done():
		_ = b.client.ContainerKill(context.Background(), containerID, "SIGKILL")
		result.Duration = time.Since(start)
		if errors.Is(execCtx.Err(), context.DeadlineExceeded) {
			result.TimedOut = true
			result.ExitCode = 124
		} else {
			result.Cancelled = b.wasCancelled(spec.Task.ID)
			result.ExitCode = 137
		}
	case resp := <-waitCh:
		result.Duration = time.Since(start)
		result.ExitCode = int(resp.StatusCode)
	case err := <-errCh:
		return models.DispatchResult{}, fmt.Errorf("docker container wait for task %s: %w", spec.Task.ID, err)
	}

	stdout, stderr, err := b.readLogs(context.Background(), containerID)
	if err != nil {
		result.Err = err
	}
	result.Stdout = stdout
	result.Stderr = stderr

	files, err := filesAffected(execCtx, spec.WorkingTree)
	if err == nil {
		result.FilesAffected = files
	}

	return result, nil
}

// Cancel marks taskID cancelled and kills its container if still running.
// Killing a container that has already exited is a no-op error the caller
// can ignore.
func (b *DockerBackend) Cancel(ctx context.Context, taskID string) error {
	b.mu.Lock()
	containerID, ok := b.running[taskID]
	if ok {
		b.cancelled[taskID] = true
	}
	b.mu.Unlock()
	if !ok {
		return nil
	}
	return b.client.ContainerKill(ctx, containerID, "SIGKILL")
}

func (b *DockerBackend) trackStart(taskID, containerID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.running[taskID] = containerID
}

func (b *DockerBackend) trackStop(taskID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.running, taskID)
	delete(b.cancelled, taskID)
}

func (b *DockerBackend) wasCancelled(taskID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.cancelled[taskID]
}

func (b *DockerBackend) readLogs(ctx context.Context, containerID string) (stdout, stderr string, err error) {
	out, err := b.client.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("read container logs: %w", err)
	}
	defer out.Close()

	var stdoutBuf, stderrBuf bytes.Buffer
	if _, err := stdcopy.StdCopy(&stdoutBuf, &stderrBuf, out); err != nil {
		return "", "", fmt.Errorf("demultiplex container logs: %w", err)
	}
	return stdoutBuf.String(), stderrBuf.String(), nil
}

// filesAffected reports which files changed in workingTree during a
// dispatch, via a plain git diff of the working tree against HEAD. This is the fallback
// path per spec §4.4 for agents that don't self-report their touched
// files in structured output.
func filesAffected(ctx context.Context, workingTree string) ([]string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", workingTree, "diff", "--name-only", "HEAD")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff --name-only in %s: %w", workingTree, err)
	}
	trimmed := strings.TrimSpace(string(out))
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}
