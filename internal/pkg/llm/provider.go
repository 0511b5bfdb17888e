package llm

import (
	"context"
	"encoding/json"
)

// Provider is a chat model that can call tools and stream plain text.
type Provider interface {
	// Chat sends one request. The model either answers with text or calls one of req.Tools.
	Chat(ctx context.Context, req Request) (*Response, error)

	// Stream sends one request without tools and hands every text delta to onDelta.
	// The returned response carries the full text. An error from onDelta aborts the stream.
	Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error)

	ModelID() string
}

type Request struct {
	System   string
	Messages []Message
	Tools    []Tool

	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Tool is a function the model may call. Parameters is a JSON Schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a function call chosen by the model. Arguments is raw JSON.
type ToolCall struct {
	Name      string
	Arguments json.RawMessage
}

type Response struct {
	Text      string
	ToolCalls []ToolCall

	Usage Usage
	Model string
	// StopReason is normalized to "end", "tool_call" or "max_tokens".
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
