// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package researcher implements the tool-calling research agent. The agent
// runs a bounded decide/act loop: the model either requests tool calls,
// which are executed sequentially and fed back as observations, or emits
// the final report text. Tool failures become observations for the model
// to react to; they never abort the run.
package researcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pdiddy/research-council/internal/llm"
	"github.com/pdiddy/research-council/internal/tools"
	"github.com/pdiddy/research-council/pkg/types"
)

const defaultMaxSteps = 12

// now is substituted in tests for deterministic transcript timestamps.
var now = time.Now

// Agent is the researcher. Zero-value fields get defaults on Run.
type Agent struct {
	Client llm.Client
	Tools  *tools.Registry

	// MaxSteps bounds the number of tool-calling rounds per pass. When the
	// budget is exhausted a final completion is requested without tools.
	MaxSteps int

	// Progress receives human-readable step logging. Defaults to io.Discard.
	Progress io.Writer
}

// Research conducts an initial research pass for query and returns the
// report as iteration 1.
func (a *Agent) Research(ctx context.Context, query string) (types.ResearchReport, error) {
	if query == "" {
		return types.ResearchReport{}, fmt.Errorf("research query is empty")
	}
	return a.run(ctx, query, 1)
}

// Revise conducts a revision pass driven by a council feedback brief and
// returns the report under the given iteration number.
func (a *Agent) Revise(ctx context.Context, brief string, iteration int) (types.ResearchReport, error) {
	if brief == "" {
		return types.ResearchReport{}, fmt.Errorf("revision brief is empty")
	}
	return a.run(ctx, brief, iteration)
}

func (a *Agent) run(ctx context.Context, task string, iteration int) (types.ResearchReport, error) {
	progress := a.Progress
	if progress == nil {
		progress = io.Discard
	}
	maxSteps := a.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}

	report := types.ResearchReport{Iteration: iteration}
	messages := []llm.Message{{Role: llm.RoleUser, Content: task}}
	defs := a.Tools.Definitions()

	for step := 0; step < maxSteps; step++ {
		resp, err := a.Client.Chat(ctx, llm.ChatRequest{
			System:   systemPrompt,
			Messages: messages,
			Tools:    defs,
		})
		if err != nil {
			return types.ResearchReport{}, fmt.Errorf("research step %d: %w", step+1, err)
		}

		if !resp.WantsTools() {
			report.Text = resp.Content
			return report, nil
		}

		messages = append(messages, llm.Message{
			Role:      llm.RoleAssistant,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Sequential execution keeps the transcript ordered and avoids
		// hammering upstream services.
		for _, call := range resp.ToolCalls {
			observation, isErr := a.invoke(ctx, call)
			fmt.Fprintf(progress, "  step %d: %s (%d bytes)\n", step+1, call.Name, len(observation))

			report.ToolCalls = append(report.ToolCalls, types.ToolInvocationRecord{
				Tool:        call.Name,
				Arguments:   string(call.Arguments),
				Observation: observation,
				IsError:     isErr,
				Timestamp:   now(),
			})
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    observation,
				ToolCallID: call.ID,
			})
		}
	}

	// Budget exhausted: one final completion with tools withheld so the
	// model has no choice but to write the report.
	fmt.Fprintf(progress, "  tool budget exhausted after %d steps, finalizing\n", maxSteps)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: finalizePrompt})

	resp, err := a.Client.Chat(ctx, llm.ChatRequest{
		System:   systemPrompt,
		Messages: messages,
	})
	if err != nil {
		return types.ResearchReport{}, fmt.Errorf("finalizing research: %w", err)
	}
	report.Text = resp.Content
	return report, nil
}

// invoke executes one tool call. All failure modes, including unknown tool
// names and bad arguments, are turned into observations.
func (a *Agent) invoke(ctx context.Context, call llm.ToolCall) (observation string, isErr bool) {
	tool, ok := a.Tools.Get(call.Name)
	if !ok {
		return fmt.Sprintf("Error: unknown tool %q. Available tools: %s.",
			call.Name, strings.Join(a.Tools.Names(), ", ")), true
	}

	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	result, err := tool.Call(ctx, args)
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return result, false
}
