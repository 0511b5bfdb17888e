package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient uses the native Gemini API with function calling.
type GeminiClient struct {
	Model  string
	client *genai.Client
}

func NewGeminiClient(ctx context.Context, cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{Model: cfg.Model, client: client}, nil
}

func (c *GeminiClient) Chat(ctx context.Context, req Request) (*Response, error) {
	config := buildGeminiConfig(req)
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.Parameters,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.Model, buildGeminiContents(req.Messages), config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	out := &Response{
		Text:       strings.TrimSpace(result.Text()),
		Model:      c.Model,
		StopReason: mapGeminiStopReason(result),
		Usage:      geminiUsage(result),
	}
	for _, call := range result.FunctionCalls() {
		args, err := json.Marshal(call.Args)
		if err != nil {
			return nil, &ErrInvalidResponse{Err: fmt.Errorf("marshal function call args: %w", err)}
		}
		out.ToolCalls = append(out.ToolCalls, ToolCall{Name: call.Name, Arguments: args})
	}
	if len(out.ToolCalls) > 0 {
		out.StopReason = "tool_call"
	}

	if out.StopReason == "max_tokens" {
		return nil, &ErrMaxTokensExceeded{Content: json.RawMessage(out.Text)}
	}
	if out.Text == "" && len(out.ToolCalls) == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("gemini returned empty response")}
	}

	return out, nil
}

func (c *GeminiClient) Stream(ctx context.Context, req Request, onDelta func(string) error) (*Response, error) {
	var sb strings.Builder
	var usage Usage

	for chunk, err := range c.client.Models.GenerateContentStream(ctx, c.Model, buildGeminiContents(req.Messages), buildGeminiConfig(req)) {
		if err != nil {
			return nil, mapGeminiError(err)
		}
		usage = geminiUsage(chunk)

		delta := chunk.Text()
		if delta == "" {
			continue
		}
		sb.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return nil, err
		}
	}

	if sb.Len() == 0 {
		return nil, &ErrInvalidResponse{Err: fmt.Errorf("gemini stream returned no text")}
	}

	return &Response{Text: sb.String(), Model: c.Model, StopReason: "end", Usage: usage}, nil
}

func (c *GeminiClient) ModelID() string {
	return c.Model
}

func buildGeminiConfig(req Request) *genai.GenerateContentConfig {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}

	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}
	return config
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

func geminiUsage(result *genai.GenerateContentResponse) Usage {
	if result == nil || result.UsageMetadata == nil {
		return Usage{}
	}
	return Usage{
		InputTokens:  int(result.UsageMetadata.PromptTokenCount),
		OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
	}
}

func mapGeminiStopReason(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) > 0 && result.Candidates[0].FinishReason == "MAX_TOKENS" {
		return "max_tokens"
	}
	return "end"
}

func mapGeminiError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// genai returns APIError by value.
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusTooManyRequests:
			return &ErrRateLimit{Err: err}
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return &ErrRequestRejected{StatusCode: apiErr.Code, Err: err}
		}
	}
	return &ErrProviderUnavailable{Err: err}
}
