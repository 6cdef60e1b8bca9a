// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/research-council/pkg/types"
)

// DefaultBaseURL is the OpenRouter OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// OpenRouterClient implements Client against any OpenAI-compatible API.
type OpenRouterClient struct {
	client     *openai.Client
	model      string
	maxTokens  int
	maxRetries int
}

// NewOpenRouter builds a client from an LLMConfig. The API key is required;
// base URL, token, and retry limits default when unset.
func NewOpenRouter(cfg types.LLMConfig) (*OpenRouterClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("llm: API key is required (set openrouter-api-key in .secrets/)")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = baseURL

	return &OpenRouterClient{
		client:     openai.NewClientWithConfig(apiCfg),
		model:      cfg.Model,
		maxTokens:  maxTokens,
		maxRetries: maxRetries,
	}, nil
}

// Chat sends the prompt and returns the model's decision. Failed calls are
// retried with exponential backoff before the error is surfaced.
func (c *OpenRouterClient) Chat(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	apiReq := openai.ChatCompletionRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages:  apiMessages(req),
	}
	if len(req.Tools) > 0 {
		apiReq.Tools = apiTools(req.Tools)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return ChatResponse{}, ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, apiReq)
		if err == nil {
			return decodeResponse(resp)
		}
		if !retryableChatError(err) {
			return ChatResponse{}, fmt.Errorf("llm: %w", err)
		}
		lastErr = err
	}
	return ChatResponse{}, fmt.Errorf("llm: after %d retries: %w", c.maxRetries, lastErr)
}

// retryableChatError reports whether a chat failure is worth retrying.
// Rate limits and server errors are transient; other API failures, a bad
// key or an unknown model, will not improve on retry. Transport errors
// carry no status and are treated as transient.
func retryableChatError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}

// apiMessages converts the request history to API form, prepending the
// system prompt when present.
func apiMessages(req ChatRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)

	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	for _, msg := range req.Messages {
		switch msg.Role {
		case RoleAssistant:
			m := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: msg.Content,
			}
			for _, tc := range msg.ToolCalls {
				m.ToolCalls = append(m.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: string(tc.Arguments),
					},
				})
			}
			messages = append(messages, m)

		case RoleTool:
			content := msg.Content
			if content == "" {
				content = "(empty)"
			}
			messages = append(messages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				ToolCallID: msg.ToolCallID,
			})

		default:
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: msg.Content,
			})
		}
	}
	return messages
}

// apiTools converts tool definitions to API form. An unparsable schema
// degrades to a bare object schema rather than failing the request.
func apiTools(tools []ToolDefinition) []openai.Tool {
	converted := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		var params map[string]any
		if err := json.Unmarshal(tool.Parameters, &params); err != nil {
			params = map[string]any{"type": "object"}
		}
		converted = append(converted, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  params,
			},
		})
	}
	return converted
}

// decodeResponse maps the API response back to a ChatResponse. An empty
// choice list is a malformed response and surfaces as an error.
func decodeResponse(resp openai.ChatCompletionResponse) (ChatResponse, error) {
	if len(resp.Choices) == 0 {
		return ChatResponse{}, fmt.Errorf("llm: response contained no choices")
	}

	choice := resp.Choices[0]
	out := ChatResponse{Content: choice.Message.Content}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return out, nil
}
