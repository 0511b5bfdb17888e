package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIClient(t *testing.T, handler http.HandlerFunc) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: server.URL + "/v1",
	})
	require.NoError(t, err)
	return c
}

func completion(message map[string]any, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{
			{"index": 0, "message": message, "finish_reason": finish},
		},
		"usage": map[string]any{
			"prompt_tokens":     40,
			"completion_tokens": 25,
			"total_tokens":      65,
		},
	}
}

func TestOpenAIClient_ToolCall(t *testing.T) {
	var got map[string]any
	handler := func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion(map[string]any{
			"role":    "assistant",
			"content": "",
			"tool_calls": []map[string]any{
				{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      "provideHint",
						"arguments": `{"hint":"Think about labelled data."}`,
					},
				},
			},
		}, "tool_calls"))
	}

	c := newTestOpenAIClient(t, handler)
	resp, err := c.Chat(context.Background(), Request{
		System:   "You are a quiz master.",
		Messages: []Message{{Role: RoleUser, Content: "hint please"}},
		Tools: []Tool{{
			Name:        "provideHint",
			Description: "Give a hint",
			Parameters:  map[string]any{"type": "object"},
		}},
	})
	require.NoError(t, err)

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "provideHint", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"hint":"Think about labelled data."}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, "tool_call", resp.StopReason)
	assert.Equal(t, 40, resp.Usage.InputTokens)

	messages := got["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	tools := got["tools"].([]any)
	require.Len(t, tools, 1)
}

func TestOpenAIClient_PlainText(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion(map[string]any{
			"role":    "assistant",
			"content": "  Hello there!  ",
		}, "stop"))
	}

	resp, err := newTestOpenAIClient(t, handler).Chat(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp.Text)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "end", resp.StopReason)
}

func TestOpenAIClient_EmptyResponse(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion(map[string]any{"role": "assistant", "content": ""}, "stop"))
	}

	_, err := newTestOpenAIClient(t, handler).Chat(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	assert.True(t, errors.As(err, &invalid), "got %T (%v)", err, err)
}

func TestOpenAIClient_Truncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(completion(map[string]any{"role": "assistant", "content": "half a sent"}, "length"))
	}

	_, err := newTestOpenAIClient(t, handler).Chat(context.Background(), Request{})
	var maxTok *ErrMaxTokensExceeded
	assert.True(t, errors.As(err, &maxTok), "got %T (%v)", err, err)
}

func TestOpenAIClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusInternalServerError, func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{http.StatusUnauthorized, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.StatusCode == 401 }},
		{http.StatusBadRequest, func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.StatusCode == 400 }},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"type": "error", "message": "nope"},
				})
			}
			_, err := newTestOpenAIClient(t, handler).Chat(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "test"}},
			})
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %T (%v)", err, err)
		})
	}
}

func TestOpenAIClient_Stream(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Regression ", "predicts ", "numbers."} {
			chunk := map[string]any{
				"id":      "chatcmpl-test",
				"object":  "chat.completion.chunk",
				"created": 1234567890,
				"model":   "gpt-4o-mini",
				"choices": []map[string]any{
					{"index": 0, "delta": map[string]any{"content": part}},
				},
			}
			b, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}

	var deltas []string
	resp, err := newTestOpenAIClient(t, handler).Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "explain"}},
	}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Regression ", "predicts ", "numbers."}, deltas)
	assert.Equal(t, "Regression predicts numbers.", resp.Text)
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	assert.Error(t, err)

	c, err := NewOpenAIClient(OpenAIConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", c.ModelID())
	assert.Equal(t, "https://api.openai.com/v1", c.BaseURL)
}
