// Package llm implements Worldmind's language-model collaborator seam
// (spec §6): the boundary every planning, classification, and review step
// calls through for a structured response. It is a thin CLI-shelling
// client, not an LLM implementation — the actual model lives behind
// whatever binary BinaryPath points at.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/worldmind/worldmind/internal/errs"
)

// DefaultSystemPrompt enforces JSON-only output so every structured call
// can be parsed without prose, markdown fences, or explanations mixed in.
const DefaultSystemPrompt = "You are an orchestration assistant. Your ONLY output must be valid JSON matching the provided schema. No markdown, no code fences, no prose. Output raw JSON only."

// Request is one structured-call invocation.
type Request struct {
	Prompt string
	Schema string   // JSON schema the response must validate against
	Tools  []string // tool names exposed to this call, for StructuredCallWithTools
}

// Collaborator is a reusable client for a CLI-based language model
// assistant: construct once, call many times, safe for concurrent use.
type Collaborator struct {
	BinaryPath   string
	SystemPrompt string
	Timeout      time.Duration
}

// New constructs a Collaborator with package defaults.
func New(binaryPath string) *Collaborator {
	if binaryPath == "" {
		binaryPath = "worldmind-agent"
	}
	return &Collaborator{BinaryPath: binaryPath, SystemPrompt: DefaultSystemPrompt}
}

// StructuredCall invokes the collaborator with req and returns the parsed
// JSON response body. A response whose extracted content is blank becomes
// an errs.LLMError{Kind: "empty_response"}; a response with no extractable
// JSON content, or whose content cannot be unmarshaled, becomes an
// errs.LLMError{Kind: "parse_error"} — per
// spec §7, callers retry once on either before failing the task node.
func (c *Collaborator) StructuredCall(ctx context.Context, req Request) (json.RawMessage, error) {
	return c.structuredCall(ctx, req, nil)
}

// StructuredCallWithTools is StructuredCall but additionally exposes the
// named tools to the collaborator for this call.
func (c *Collaborator) StructuredCallWithTools(ctx context.Context, req Request, tools []string) (json.RawMessage, error) {
	return c.structuredCall(ctx, req, tools)
}

func (c *Collaborator) structuredCall(ctx context.Context, req Request, tools []string) (json.RawMessage, error) {
	ctxToUse := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctxToUse, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	raw, err := c.invoke(ctxToUse, req, tools)
	if err != nil {
		return nil, err
	}

	content, err := extractContent(raw)
	if err != nil {
		return nil, &errs.LLMError{Kind: "parse_error", Err: err}
	}
	if content == "" {
		return nil, &errs.LLMError{Kind: "empty_response", Err: fmt.Errorf("no content in response")}
	}

	var probe interface{}
	if err := json.Unmarshal([]byte(content), &probe); err != nil {
		return nil, &errs.LLMError{Kind: "parse_error", Err: err}
	}

	return json.RawMessage(content), nil
}

func (c *Collaborator) invoke(ctx context.Context, req Request, tools []string) ([]byte, error) {
	if req.Prompt == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	systemPrompt := c.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	args := []string{"--system-prompt", systemPrompt, "-p", req.Prompt, "--output-format", "json"}
	if req.Schema != "" {
		args = append(args, "--json-schema", req.Schema)
	}
	if len(tools) > 0 {
		args = append(args, "--tools", strings.Join(tools, ","))
	}

	cmd := exec.CommandContext(ctx, c.BinaryPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("collaborator invocation failed: %w (output: %s)", err, string(output))
	}
	return output, nil
}

// extractContent pulls the response body out of the collaborator's JSON
// envelope, trying structured_output, then result, then content, then
// falling back to locating the outermost JSON object in mixed output —
// the same ordered fallback a CLI-shelled assistant's wrapper format
// requires.
func extractContent(rawOutput []byte) (string, error) {
	var envelope map[string]interface{}
	if err := json.Unmarshal(rawOutput, &envelope); err != nil {
		output := string(rawOutput)
		start := strings.Index(output, "{")
		end := strings.LastIndex(output, "}")
		if start >= 0 && end > start {
			extracted := output[start : end+1]
			if json.Valid([]byte(extracted)) {
				return extracted, nil
			}
		}
		return "", fmt.Errorf("no JSON object found in collaborator output")
	}

	if structured, ok := envelope["structured_output"]; ok && structured != nil {
		if m, isMap := structured.(map[string]interface{}); isMap && len(m) > 0 {
			if b, err := json.Marshal(structured); err == nil {
				return string(b), nil
			}
		}
	}
	if result, ok := envelope["result"].(string); ok {
		return result, nil
	}
	if content, ok := envelope["content"].(string); ok {
		return content, nil
	}

	output := string(rawOutput)
	start := strings.Index(output, "{")
	end := strings.LastIndex(output, "}")
	if start >= 0 && end > start {
		return output[start : end+1], nil
	}
	return "", nil
}
