package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/worldmind/worldmind/internal/errs"
	"github.com/worldmind/worldmind/internal/gitengine"
	"github.com/worldmind/worldmind/internal/llm"
	"github.com/worldmind/worldmind/internal/models"
	"github.com/worldmind/worldmind/internal/oscillation"
	"github.com/worldmind/worldmind/internal/quality"
	"github.com/worldmind/worldmind/internal/sandbox"
	"github.com/worldmind/worldmind/internal/scheduler"
	"github.com/worldmind/worldmind/internal/stategraph"
)

const reviewExtractionSchema = `{"type":"object","required":["score","comments"],"properties":{"score":{"type":"integer"},"comments":{"type":"string"}}}`

// execute drives the mission's task DAG to completion: it repeatedly asks
// the scheduler for the next ready wave, dispatches every task in that
// wave concurrently, runs each result through the quality gate, merges
// granted work, and loops until every task has reached a completion
// status or the mission cannot make further progress (spec §4.1 route3/4).
func (o *Orchestrator) execute(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	newEngine := o.newEngine
	if newEngine == nil {
		newEngine = gitengine.New
	}
	engine := newEngine(m.WorkspacePath)
	queue := gitengine.NewMergeQueue(engine)
	maxParallel := m.MaxParallel
	if maxParallel <= 0 {
		maxParallel = o.Config.Scheduler.MaxParallel
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		waveIndex := len(m.Waves)
		ready, err := scheduler.NextWave(m.Tasks, m.CompletedTaskIDs, m.Strategy, maxParallel)
		if err != nil {
			return "", fmt.Errorf("schedule wave %d: %w", waveIndex, err)
		}

		if len(ready) == 0 {
			if m.AllTasksCompleted() {
				return stategraph.EvWavesComplete, nil
			}
			return "", fmt.Errorf("mission %s: no ready tasks but not all tasks completed — unsatisfiable dependency or exhausted escalation", m.ID)
		}

		wave := models.Wave{Index: waveIndex, TaskIDs: ready, MaxParallel: maxParallel}
		m.Waves = append(m.Waves, wave)
		if o.Metrics != nil {
			o.Metrics.WaveExecutions.WithLabelValues(string(m.Strategy)).Inc()
			o.Metrics.TasksPerWave.Observe(float64(len(ready)))
		}
		if o.Logger != nil {
			o.Logger.LogWaveStart(m.ID, wave)
		}
		o.publishTask(models.EventWaveStarted, m.ID, "", wave)

		waveStart := time.Now()
		execErr := o.dispatchWave(ctx, m, engine, queue, ready)

		if o.Logger != nil {
			o.Logger.LogWaveComplete(m.ID, wave, time.Since(waveStart))
		}
		o.publishTask(models.EventWaveCompleted, m.ID, "", wave)

		if execErr != nil {
			return "", execErr
		}
	}
}

// dispatchWave runs every task in taskIDs concurrently and applies the
// quality gate to each result. It returns a non-nil error when the
// mission as a whole cannot continue: an ABORT-bound (onFailure=fail) task
// was denied, or a task's dispatch itself errored (reported as the wave's
// ExecutionError). RETRY and ESCALATE outcomes are handled in place and do
// not stop the wave.
func (o *Orchestrator) dispatchWave(ctx context.Context, m *models.Mission, engine *gitengine.Engine, queue *gitengine.MergeQueue, taskIDs []string) error {
	byID := make(map[string]*models.Task, len(m.Tasks))
	for i := range m.Tasks {
		byID[m.Tasks[i].ID] = &m.Tasks[i]
	}

	execErr := errs.NewExecutionError(errs.PhaseWave)
	execErr.TotalTasks = len(taskIDs)

	var mu sync.Mutex
	var wg sync.WaitGroup
	var abort error

	for _, id := range taskIDs {
		task := byID[id]
		if task == nil {
			continue
		}
		wg.Add(1)
		go func(task *models.Task) {
			defer wg.Done()
			action, err := o.runTask(ctx, m, engine, queue, task)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				execErr.AddTask(errs.NewTaskError(task.ID, "dispatch failed", err))
				return
			}

			switch action {
			case models.ActionFail:
				abort = fmt.Errorf("task %s: onFailure=fail, aborting mission", task.ID)
			case models.ActionEscalate:
				task.Status = models.TaskEscalated
				if o.Logger != nil {
					o.Logger.LogEscalation(task.ID, "quality gate denied after exhausting retries")
				}
				o.publishTask(models.EventEscalated, m.ID, task.ID, nil)
				if o.Metrics != nil {
					o.Metrics.EscalationsByReason.WithLabelValues("quality_gate_denied").Inc()
				}
				m.MarkCompleted(task.ID) // escalated tasks leave the ready set; a human resolves them out of band
			case models.ActionRetry:
				task.Iteration++
				task.Status = models.TaskPending
			default:
				// granted: runTask already marked it completed.
			}
		}(task)
	}

	wg.Wait()

	if abort != nil {
		return abort
	}
	if execErr.FailedTasks > 0 {
		return execErr
	}
	return nil
}

// runTask dispatches one task into the sandbox, evaluates the result
// through the quality gate, and merges granted work. It returns the
// quality gate's NextAction for denied work, or "" for granted work
// (nothing further for dispatchWave to do).
func (o *Orchestrator) runTask(ctx context.Context, m *models.Mission, engine *gitengine.Engine, queue *gitengine.MergeQueue, task *models.Task) (models.NextAction, error) {
	start := time.Now()
	task.Status = models.TaskDispatched
	task.StartedAt = &start
	if o.Logger != nil {
		o.Logger.LogTaskDispatched(*task)
	}
	o.publishTask(models.EventTaskDispatched, m.ID, task.ID, nil)

	worktree, err := engine.AcquireWorktree(ctx, task.ID, m.BaseBranch)
	if err != nil {
		return "", fmt.Errorf("acquire worktree: %w", err)
	}

	token, err := sandbox.ResolveCredential(m.ID, o.Config.Sandbox.CredentialEnvKey, o.Config.Sandbox.DefaultCredential, o.CredentialLookup)
	if err != nil {
		return "", fmt.Errorf("resolve credential: %w", err)
	}

	timeout := o.Config.Sandbox.TaskTimeout
	if timeout <= 0 {
		timeout = sandbox.DefaultTimeout
	}

	result, err := o.Sandbox.Dispatch(ctx, sandbox.DispatchSpec{
		Task:             *task,
		WorkingTree:      worktree,
		CredentialsToken: token,
		Timeout:          timeout,
	})
	if err != nil {
		return "", fmt.Errorf("dispatch: %w", err)
	}

	completed := time.Now()
	task.CompletedAt = &completed
	if o.Metrics != nil {
		o.Metrics.ObserveTaskDuration(string(task.Agent), result.Duration)
	}
	if o.Logger != nil {
		o.Logger.LogTaskResult(*task, result)
	}
	o.publishTask(models.EventTaskCompleted, m.ID, task.ID, result)

	tests := quality.ParseTestOutput(result.Stdout)
	review := o.resolveReview(ctx, result.Stdout)

	decision := o.Gate.Decide(task, tests, review)

	o.oscillationMu.Lock()
	oscillating := o.Oscillation.Record(task.ID, decision.Reason)
	o.oscillationMu.Unlock()
	if oscillating {
		decision.NextAction = oscillation.NextActionFor(decision.NextAction, true)
	}

	if o.Metrics != nil {
		label := "denied"
		if decision.Granted {
			label = "granted"
		}
		o.Metrics.QualityGateDecisions.WithLabelValues(label).Inc()
		o.Metrics.TaskIterationDepth.Observe(float64(task.Iteration))
	}
	if o.Logger != nil {
		o.Logger.LogQualityDecision(*task, decision)
	}
	o.publishTask(models.EventQualityDecision, m.ID, task.ID, decision)

	if !decision.Granted {
		_ = engine.ReleaseWorktree(ctx, task.ID)
		return decision.NextAction, nil
	}

	mergeErr := queue.Submit(ctx, gitengine.MergeRequest{TaskID: task.ID, TargetBranch: m.BaseBranch})
	resolved := mergeErr == nil
	if o.Logger != nil {
		retries := 0
		if mc, ok := asMergeConflict(mergeErr); ok {
			retries = mc.Retries
		}
		o.Logger.LogMergeResolved(task.ID, resolved, retries)
	}
	o.publishTask(models.EventMergeResolved, m.ID, task.ID, resolved)
	if o.Metrics != nil {
		o.Metrics.MergeConflicts.WithLabelValues(fmt.Sprintf("%v", resolved)).Inc()
	}

	_ = engine.ReleaseWorktree(ctx, task.ID)

	if !resolved {
		if task.ExhaustedRetries() {
			return models.ActionEscalate, nil
		}
		return models.ActionRetry, nil
	}

	task.Status = models.TaskCompleted
	m.MarkCompleted(task.ID)

	o.oscillationMu.Lock()
	o.Oscillation.Reset(task.ID)
	o.oscillationMu.Unlock()

	return "", nil
}

func asMergeConflict(err error) (*errs.MergeConflictError, bool) {
	mc, ok := err.(*errs.MergeConflictError)
	return mc, ok
}

// resolveReview combines the deterministic regex score extraction with
// the collaborator's structured extraction of the same text (spec §4.5).
// A collaborator failure falls back to the regex-only result rather than
// failing the task outright — a review score of 0 is treated as "not
// granted", which is the safe default.
func (o *Orchestrator) resolveReview(ctx context.Context, rawOutput string) models.ReviewFeedback {
	prompt := fmt.Sprintf("Extract the review score (0-10) and comments from this review output, without re-grading it:\n\n%s", rawOutput)
	raw, err := o.Collaborator.StructuredCall(ctx, llm.Request{Prompt: prompt, Schema: reviewExtractionSchema})
	if err != nil {
		regexScore, regexComments := quality.ParseReviewScore(rawOutput)
		return models.ReviewFeedback{Score: regexScore, Comments: regexComments, Source: "regex"}
	}

	var structured quality.StructuredReview
	if err := json.Unmarshal(raw, &structured); err != nil {
		regexScore, regexComments := quality.ParseReviewScore(rawOutput)
		return models.ReviewFeedback{Score: regexScore, Comments: regexComments, Source: "regex"}
	}

	return quality.ResolveReview(rawOutput, structured)
}
