package dialogue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/evandrarf/certquiz-be/internal/pkg/llm"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"github.com/sirupsen/logrus"
)

// Turn is everything the orchestrator sees for one user message. State is a copy.
type Turn struct {
	State     quiz.State
	Selection *quiz.Selection
	// Current is the last presented question, nil before the first one.
	Current *quiz.Presented
	History []llm.Message
	Message string
}

type ExplainRequest struct {
	Prompt   string
	Answer   string
	Language string
}

type Orchestrator interface {
	// Decide asks the model for exactly one action for the turn.
	Decide(ctx context.Context, turn Turn) (Action, error)
	// Explain streams an explanation, handing each text delta to onDelta, and returns the full text.
	Explain(ctx context.Context, req ExplainRequest, onDelta func(string) error) (string, error)
}

type StructValidator interface {
	Struct(v any) error
}

type Config struct {
	Provider    llm.Provider
	Validator   StructValidator
	Log         logrus.FieldLogger
	Temperature float64
	MaxTokens   int
}

type LLMOrchestrator struct {
	cfg Config
}

func NewLLMOrchestrator(cfg Config) *LLMOrchestrator {
	if cfg.Log == nil {
		l := logrus.New()
		l.Out = io.Discard
		cfg.Log = l
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2048
	}
	return &LLMOrchestrator{cfg: cfg}
}

func (o *LLMOrchestrator) Decide(ctx context.Context, turn Turn) (Action, error) {
	if strings.TrimSpace(turn.Message) == "" {
		return nil, fmt.Errorf("%w: empty user message", ErrMalformedAction)
	}

	system := completionPrompt(turn.State)
	if !turn.State.Completed() {
		system = systemPrompt(turn)
	}
	tools := toolsFor(turn.State, turn.Current)

	messages := make([]llm.Message, 0, len(turn.History)+1)
	messages = append(messages, turn.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: turn.Message})

	resp, err := o.cfg.Provider.Chat(ctx, llm.Request{
		System:      system,
		Messages:    messages,
		Tools:       tools,
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		return nil, fmt.Errorf("dialogue model call: %w", err)
	}

	call, ok := firstToolCall(resp)
	if !ok {
		return Reply{Text: resp.Text}, nil
	}
	if len(resp.ToolCalls) > 1 {
		o.cfg.Log.WithField("tool_calls", len(resp.ToolCalls)).Warn("model returned several tool calls, using the first")
	}

	action, err := o.parse(call, tools, turn)
	if err != nil {
		o.cfg.Log.WithFields(logrus.Fields{
			"tool":      call.Name,
			"arguments": string(call.Arguments),
		}).WithError(err).Warn("rejected model action")
		return nil, err
	}
	return action, nil
}

func (o *LLMOrchestrator) Explain(ctx context.Context, req ExplainRequest, onDelta func(string) error) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" || strings.TrimSpace(req.Answer) == "" {
		return "", fmt.Errorf("%w: explanation needs a question and an answer", ErrMalformedAction)
	}

	resp, err := o.cfg.Provider.Stream(ctx, llm.Request{
		System:      explanationPrompt(req),
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: req.Prompt}},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	}, onDelta)
	if err != nil {
		return "", fmt.Errorf("explanation model call: %w", err)
	}
	return resp.Text, nil
}

// firstToolCall returns the tool call of a response. Some models write the call as a
// JSON text like {"tool": "resetQuiz"} instead of using the tool channel.
func firstToolCall(resp *llm.Response) (llm.ToolCall, bool) {
	if len(resp.ToolCalls) > 0 {
		return resp.ToolCalls[0], true
	}

	clean := strings.TrimSpace(resp.Text)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)
	if !strings.HasPrefix(clean, "{") {
		return llm.ToolCall{}, false
	}

	var inline struct {
		Tool      string          `json:"tool"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal([]byte(clean), &inline); err != nil || inline.Tool == "" {
		return llm.ToolCall{}, false
	}
	return llm.ToolCall{Name: inline.Tool, Arguments: inline.Arguments}, true
}

func (o *LLMOrchestrator) parse(call llm.ToolCall, offered []llm.Tool, turn Turn) (Action, error) {
	var tool *llm.Tool
	for i := range offered {
		if offered[i].Name == call.Name {
			tool = &offered[i]
			break
		}
	}
	if tool == nil {
		return nil, fmt.Errorf("%w: tool %q is not available in phase %s", ErrMalformedAction, call.Name, turn.State.Phase())
	}

	args := call.Arguments
	if len(args) == 0 || string(args) == "null" {
		args = json.RawMessage(`{}`)
	}
	if err := llm.ValidateArguments(*tool, args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}

	switch Kind(call.Name) {
	case KindPresentNextQuestion:
		var in struct {
			Question QuestionPayload `json:"question"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		if err := o.validate(in.Question); err != nil {
			return nil, err
		}
		if err := in.Question.check(turn.Selection); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedAction, err)
		}
		return PresentNextQuestion{Question: in.Question}, nil

	case KindProvideHint:
		var in struct {
			Hint string `json:"hint" validate:"required"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		if err := o.validate(in); err != nil {
			return nil, err
		}
		return ProvideHint{Hint: strings.TrimSpace(in.Hint)}, nil

	case KindProvideExplanation:
		var in struct {
			Prompt string `json:"prompt" validate:"required"`
			Answer string `json:"answer" validate:"required"`
		}
		if err := json.Unmarshal(args, &in); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedAction, err)
		}
		if err := o.validate(in); err != nil {
			return nil, err
		}
		return ProvideExplanation{Prompt: in.Prompt, Answer: in.Answer}, nil

	case KindDisplayCurrentScore:
		return DisplayCurrentScore{}, nil

	case KindResetQuiz:
		return ResetQuiz{}, nil
	}

	return nil, fmt.Errorf("%w: unknown tool %q", ErrMalformedAction, call.Name)
}

func (o *LLMOrchestrator) validate(v any) error {
	if o.cfg.Validator == nil {
		return nil
	}
	if err := o.cfg.Validator.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedAction, err)
	}
	return nil
}
