package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/worldmind/worldmind/internal/models"
)

// RemoteBackend dispatches a task to an external one-shot task-runner
// service over HTTP instead of a local container. It implements the same
// Backend contract as DockerBackend so the state graph can switch between
// them purely via configuration.
type RemoteBackend struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// NewRemoteBackend constructs a RemoteBackend targeting baseURL, using a
// client whose timeout is left to the per-request context rather than a
// fixed client-level deadline.
func NewRemoteBackend(baseURL, apiKey string) *RemoteBackend {
	return &RemoteBackend{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{},
	}
}

type remoteRunRequest struct {
	RunID            string            `json:"run_id"`
	TaskID           string            `json:"task_id"`
	Agent            string            `json:"agent"`
	Prompt           string            `json:"prompt"`
	CredentialsToken string            `json:"credentials_token"`
	MCPEndpoints     map[string]string `json:"mcp_endpoints"`
	TimeoutSeconds   int               `json:"timeout_seconds"`
}

type remoteRunResponse struct {
	ExitCode      int      `json:"exit_code"`
	Stdout        string   `json:"stdout"`
	Stderr        string   `json:"stderr"`
	FilesAffected []string `json:"files_affected"`
	TimedOut      bool     `json:"timed_out"`
	DurationMs    int64    `json:"duration_ms"`
}

// Dispatch submits spec as one synchronous run to the remote task-runner
// and blocks for its response. The remote service owns uploading
// spec.WorkingTree's contents and isolating the run; this backend only
// owns the request/response envelope and timeout propagation.
func (b *RemoteBackend) Dispatch(ctx context.Context, spec DispatchSpec) (models.DispatchResult, error) {
	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mcp := make(map[string]string, len(spec.MCPEndpoints)*2)
	for _, ep := range spec.MCPEndpoints {
		mcp[ep.Name+"_url"] = ep.URL
		mcp[ep.Name+"_token"] = ep.Token
	}

	reqBody := remoteRunRequest{
		RunID:            uuid.New().String(),
		TaskID:           spec.Task.ID,
		Agent:            string(spec.Task.Agent),
		Prompt:           spec.Task.Prompt,
		CredentialsToken: spec.CredentialsToken,
		MCPEndpoints:     mcp,
		TimeoutSeconds:   int(timeout.Seconds()),
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return models.DispatchResult{}, fmt.Errorf("marshal remote run request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(execCtx, http.MethodPost, b.BaseURL+"/v1/runs", bytes.NewReader(payload))
	if err != nil {
		return models.DispatchResult{}, fmt.Errorf("build remote run request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+b.APIKey)

	start := time.Now()
	resp, err := b.HTTPClient.Do(httpReq)
	if err != nil {
		return models.DispatchResult{}, fmt.Errorf("remote run request for task %s: %w", spec.Task.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.DispatchResult{}, fmt.Errorf("remote run for task %s: unexpected status %d", spec.Task.ID, resp.StatusCode)
	}

	var runResp remoteRunResponse
	if err := json.NewDecoder(resp.Body).Decode(&runResp); err != nil {
		return models.DispatchResult{}, fmt.Errorf("decode remote run response for task %s: %w", spec.Task.ID, err)
	}

	return models.DispatchResult{
		TaskID:        spec.Task.ID,
		ExitCode:      runResp.ExitCode,
		Stdout:        runResp.Stdout,
		Stderr:        runResp.Stderr,
		FilesAffected: runResp.FilesAffected,
		Duration:      time.Since(start),
		TimedOut:      runResp.TimedOut,
	}, nil
}

// Cancel asks the remote task-runner to stop a run. The remote service is
// responsible for idempotently handling a cancel against a run that has
// already finished.
func (b *RemoteBackend) Cancel(ctx context.Context, taskID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.BaseURL+"/v1/runs/"+taskID+"/cancel", nil)
	if err != nil {
		return fmt.Errorf("build remote cancel request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.APIKey)

	resp, err := b.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("remote cancel request for task %s: %w", taskID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remote cancel for task %s: unexpected status %d", taskID, resp.StatusCode)
	}
	return nil
}
