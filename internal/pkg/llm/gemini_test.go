package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeminiClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewGeminiClient(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		Model:   "gemini-2.0-flash",
		BaseURL: server.URL,
	})
	require.NoError(t, err)
	return c
}

func geminiResult(parts []map[string]any, finish string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content":      map[string]any{"role": "model", "parts": parts},
				"finishReason": finish,
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     40,
			"candidatesTokenCount": 25,
			"totalTokenCount":      65,
		},
	}
}

func TestGeminiClient_FunctionCall(t *testing.T) {
	var got map[string]any
	var path string
	handler := func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResult([]map[string]any{
			{"functionCall": map[string]any{
				"name": "provideHint",
				"args": map[string]any{"hint": "Think about labelled data."},
			}},
		}, "STOP"))
	}

	c := newTestGeminiClient(t, handler)
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

	assert.True(t, strings.HasSuffix(path, "models/gemini-2.0-flash:generateContent"), path)
	assert.Contains(t, got, "tools")
	assert.Contains(t, got, "systemInstruction")

	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, "provideHint", resp.ToolCalls[0].Name)
	assert.JSONEq(t, `{"hint":"Think about labelled data."}`, string(resp.ToolCalls[0].Arguments))
	assert.Equal(t, "tool_call", resp.StopReason)
	assert.Equal(t, 65, resp.Usage.TotalTokens)
}

func TestGeminiClient_PlainText(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResult([]map[string]any{{"text": "Welcome to the AI-900 quiz!"}}, "STOP"))
	}

	resp, err := newTestGeminiClient(t, handler).Chat(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Welcome to the AI-900 quiz!", resp.Text)
	assert.Empty(t, resp.ToolCalls)
	assert.Equal(t, "end", resp.StopReason)
}

func TestGeminiClient_Truncated(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(geminiResult([]map[string]any{{"text": "Regression predicts"}}, "MAX_TOKENS"))
	}

	_, err := newTestGeminiClient(t, handler).Chat(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "explain"}},
	})
	var maxTok *ErrMaxTokensExceeded
	assert.ErrorAs(t, err, &maxTok)
}

func TestGeminiClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		code   string
		check  func(error) bool
	}{
		{http.StatusTooManyRequests, "RESOURCE_EXHAUSTED", func(err error) bool { var e *ErrRateLimit; return errors.As(err, &e) }},
		{http.StatusServiceUnavailable, "UNAVAILABLE", func(err error) bool { var e *ErrProviderUnavailable; return errors.As(err, &e) }},
		{http.StatusBadRequest, "INVALID_ARGUMENT", func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.StatusCode == 400 }},
		{http.StatusForbidden, "PERMISSION_DENIED", func(err error) bool { var e *ErrRequestRejected; return errors.As(err, &e) && e.StatusCode == 403 }},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": tt.status, "message": "nope", "status": tt.code},
				})
			}
			_, err := newTestGeminiClient(t, handler).Chat(context.Background(), Request{
				Messages: []Message{{Role: RoleUser, Content: "test"}},
			})
			require.Error(t, err)
			assert.True(t, tt.check(err), "got %T (%v)", err, err)
		})
	}
}

func TestGeminiClient_Stream(t *testing.T) {
	var path string
	handler := func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{"Regression ", "predicts ", "numbers."} {
			b, _ := json.Marshal(geminiResult([]map[string]any{{"text": part}}, ""))
			fmt.Fprintf(w, "data: %s\n\n", b)
		}
	}

	var deltas []string
	resp, err := newTestGeminiClient(t, handler).Stream(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "explain"}},
	}, func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(path, ":streamGenerateContent"), path)
	assert.Equal(t, []string{"Regression ", "predicts ", "numbers."}, deltas)
	assert.Equal(t, "Regression predicts numbers.", resp.Text)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	_, err := NewGeminiClient(context.Background(), GeminiConfig{})
	assert.Error(t, err)
}
