// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tools implements the researcher agent's callable tools: web
// search, webpage scraping, document analysis, source synthesis, and
// citation tracking. Each tool accepts a JSON argument object and returns a
// JSON-serializable result string, or an error for recoverable upstream
// failures. Tool errors are observations for the agent, never run failures.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pdiddy/research-council/internal/llm"
)

// Tool is a deterministic function with a documented input/output contract,
// invocable by an agent.
type Tool interface {
	Name() string
	Description() string

	// Parameters is a JSON Schema object describing the argument object.
	Parameters() json.RawMessage

	// Call executes the tool. The returned string is the observation shown
	// to the model; a non-nil error signals a recoverable failure.
	Call(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the fixed tool set in a stable order.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names are
// rejected since the model addresses tools by name.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the tool names in registration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Definitions returns the tool signatures advertised to the model.
func (r *Registry) Definitions() []llm.ToolDefinition {
	defs := make([]llm.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}
	return defs
}

// marshalResult encodes a tool result as compact JSON. Tool results are
// documented response shapes, so a marshal failure is a programming error.
func marshalResult(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding tool result: %w", err)
	}
	return string(data), nil
}
