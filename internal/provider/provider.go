// Package provider defines the model-turn boundary of the agent loop.
// The loop hands a full conversation to a TurnProvider and receives one
// assistant turn back; tool requests travel inside the text and are
// extracted by the tool package, so the transport stays model-agnostic.
package provider

import "context"

// TurnProvider produces one assistant turn for a conversation.
type TurnProvider interface {
	// Complete sends the conversation and returns the full response.
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)

	// ModelName returns the identifier of the underlying model.
	ModelName() string
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

// Conversation roles. RoleSystem also carries the hidden tool-result
// feedback turns the loop appends between rounds.
const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

// FinishReason describes why the model stopped generating.
type FinishReason string

// Completion termination reasons.
const (
	FinishStop      FinishReason = "stop"
	FinishLength    FinishReason = "length"
	FinishFiltering FinishReason = "filtering"
)

// CompletionRequest is the input to a Complete call.
type CompletionRequest struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// CompletionResponse is one assistant turn.
type CompletionResponse struct {
	Content      string       `json:"content"`
	FinishReason FinishReason `json:"finish_reason"`
	Usage        TokenUsage   `json:"usage"`
}

// TokenUsage tracks token consumption for a completion.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
