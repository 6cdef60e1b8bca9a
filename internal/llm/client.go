// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm abstracts the language model backend behind a small chat
// interface so agents and tests can swap implementations. The production
// implementation talks to an OpenAI-compatible gateway (OpenRouter).
package llm

import (
	"context"
	"encoding/json"
)

// Role values for chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolDefinition describes one callable tool advertised to the model.
type ToolDefinition struct {
	// Name is the tool name as the model must reference it.
	Name string

	// Description tells the model what the tool does and when to use it.
	Description string

	// Parameters is a JSON Schema object describing the arguments.
	Parameters json.RawMessage
}

// ToolCall is a model-requested tool invocation.
type ToolCall struct {
	// ID links the call to its result message.
	ID string

	// Name is the requested tool.
	Name string

	// Arguments is the raw JSON argument object.
	Arguments json.RawMessage
}

// Message is one turn of conversation history. A message is either plain
// content, an assistant turn carrying tool calls, or a tool result.
type Message struct {
	Role    string
	Content string

	// ToolCalls is set on assistant messages that requested tool use.
	ToolCalls []ToolCall

	// ToolCallID is set on tool messages to link the observation back to
	// the assistant's request.
	ToolCallID string
}

// ChatRequest is a full prompt: system instructions, history, and the tool
// signatures the model may call.
type ChatRequest struct {
	System   string
	Messages []Message
	Tools    []ToolDefinition
}

// ChatResponse is the model's decision: either tool calls to execute or
// final text.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
}

// WantsTools reports whether the model requested tool execution.
func (r ChatResponse) WantsTools() bool {
	return len(r.ToolCalls) > 0
}

// Client is the "decide next action given history" capability consumed by
// the agents. A failed call is a turn-level failure; callers do not recover
// it locally.
type Client interface {
	Chat(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
