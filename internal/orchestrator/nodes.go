package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/worldmind/worldmind/internal/errs"
	"github.com/worldmind/worldmind/internal/llm"
	"github.com/worldmind/worldmind/internal/models"
	"github.com/worldmind/worldmind/internal/stategraph"
)

// classify is a pass-through today: the request's raw text is carried
// forward unchanged into upload_context. A future classifier (routing by
// request kind — bugfix vs. feature vs. research) has an obvious home
// here without touching any other node.
func (o *Orchestrator) classify(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	return stategraph.EvUploaded, nil
}

type uploadDecision struct {
	NeedsClarification bool   `json:"needsClarification"`
	Question           string `json:"question"`
}

const uploadSchema = `{"type":"object","required":["needsClarification"],"properties":{"needsClarification":{"type":"boolean"},"question":{"type":"string"}}}`

// upload decides whether the mission request is specific enough to
// specify directly, or needs a clarifying question answered first (spec
// §4.1 route1).
func (o *Orchestrator) upload(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	prompt := fmt.Sprintf("Request: %q\n\nDoes this request need a clarifying question before a product spec can be written? Respond with needsClarification and, if true, a single question.", m.Request)

	var decision uploadDecision
	if err := o.callStructured(ctx, prompt, uploadSchema, &decision); err != nil {
		return "", err
	}

	if decision.NeedsClarification {
		m.ClarificationQuestion = decision.Question
		return stategraph.EvNeedsClarification, nil
	}
	return stategraph.EvSpecified, nil
}

// clarify pauses the mission (spec §4.1: "AWAIT_CLARIFICATION (terminal
// pause)") until an external caller records an answer via
// mission.ClarificationAnswer — set by the CLI's `resume --answer` before
// calling Driver.Run again.
func (o *Orchestrator) clarify(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	if m.ClarificationAnswer == "" {
		return "", stategraph.ErrAwaitingInput
	}
	return stategraph.EvClarified, nil
}

type specResult struct {
	ProductSpec string `json:"productSpec"`
}

const specSchema = `{"type":"object","required":["productSpec"],"properties":{"productSpec":{"type":"string"}}}`

// specify turns the (possibly clarified) request into a Markdown product
// spec.
func (o *Orchestrator) specify(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	prompt := fmt.Sprintf("Request: %q\n", m.Request)
	if m.ClarificationQuestion != "" {
		prompt += fmt.Sprintf("Clarifying question: %q\nAnswer: %q\n", m.ClarificationQuestion, m.ClarificationAnswer)
	}
	prompt += "Write a Markdown product spec covering scope, acceptance criteria, and constraints."

	var result specResult
	if err := o.callStructured(ctx, prompt, specSchema, &result); err != nil {
		return "", err
	}
	m.ProductSpec = result.ProductSpec
	return stategraph.EvPlanned, nil
}

type planTask struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Prompt        string   `json:"prompt"`
	Agent         string   `json:"agent"`
	DependsOn     []string `json:"dependsOn"`
	TargetFiles   []string `json:"targetFiles"`
	OnFailure     string   `json:"onFailure"`
	MaxIterations int      `json:"maxIterations"`
}

type planResult struct {
	Tasks            []planTask `json:"tasks"`
	RequiresApproval bool       `json:"requiresApproval"`
}

const planSchema = `{"type":"object","required":["tasks"],"properties":{"tasks":{"type":"array"},"requiresApproval":{"type":"boolean"}}}`

// plan decomposes the product spec into a task DAG (spec §4.1/§3), then
// routes either to AWAITING_APPROVAL or straight to EXECUTING depending on
// the mission's approval mode (route2).
func (o *Orchestrator) plan(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	prompt := fmt.Sprintf("Product spec:\n%s\n\nDecompose this into a task DAG: each task has an id, name, prompt, agent tag (coder/reviewer/tester/research), dependsOn (task ids or agent:<tag>), targetFiles, onFailure (retry/skip/escalate/abort), and maxIterations.", m.ProductSpec)

	var result planResult
	if err := o.callStructured(ctx, prompt, planSchema, &result); err != nil {
		return "", err
	}

	tasks := make([]models.Task, 0, len(result.Tasks))
	for _, pt := range result.Tasks {
		tasks = append(tasks, models.Task{
			ID:            pt.ID,
			Name:          pt.Name,
			Prompt:        pt.Prompt,
			Agent:         models.AgentTag(pt.Agent),
			DependsOn:     pt.DependsOn,
			TargetFiles:   pt.TargetFiles,
			OnFailure:     models.NextAction(pt.OnFailure),
			MaxIterations: pt.MaxIterations,
			Status:        models.TaskPending,
		})
	}
	m.Tasks = tasks

	if m.ApprovalMode || result.RequiresApproval {
		m.ApprovalMode = true
		return stategraph.EvNeedsApproval, nil
	}
	return stategraph.EvApproved, nil
}

// awaitApproval pauses the mission (spec §4.1 route2) until an external
// caller sets mission.Approved — the CLI's `resume --approve`.
func (o *Orchestrator) awaitApproval(ctx context.Context, m *models.Mission) (stategraph.Event, error) {
	if !m.Approved {
		return "", stategraph.ErrAwaitingInput
	}
	return stategraph.EvApproved, nil
}

// callStructured invokes the collaborator and unmarshals its JSON response
// into out, retrying once on an errs.LLMError per spec §7 before failing
// the node.
func (o *Orchestrator) callStructured(ctx context.Context, prompt, schema string, out interface{}) error {
	raw, err := o.Collaborator.StructuredCall(ctx, llm.Request{Prompt: prompt, Schema: schema})
	var llmErr *errs.LLMError
	if errors.As(err, &llmErr) {
		raw, err = o.Collaborator.StructuredCall(ctx, llm.Request{Prompt: prompt, Schema: schema})
	}
	if err != nil {
		return fmt.Errorf("collaborator call: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse collaborator response: %w", err)
	}
	return nil
}
