package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/evandrarf/certquiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/certquiz-be/internal/dialogue"
	internalEntity "github.com/evandrarf/certquiz-be/internal/entity"
	"github.com/evandrarf/certquiz-be/internal/pkg/llm"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	roleUser      = "user"
	roleAssistant = "assistant"
	actionAnswer  = "submitAnswer"
)

// SendMessage runs one dialogue turn: pick a question, let the model choose an action,
// apply it to a copy of the state and persist the result. Nothing is saved on failure.
func (u *quizUsecase) SendMessage(ctx context.Context, sessionID string, req entity.SendMessageRequest) (*entity.TurnResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: empty message", dialogue.ErrMalformedAction)
	}

	unlock, err := u.cfg.Locks.TryLock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(ctx, u.turnTimeout)
	defer cancel()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.state.Phase() == quiz.PhaseUnconfigured {
		return nil, ErrSessionNotConfigured
	}

	var selection *quiz.Selection
	if !s.state.Completed() {
		selection, err = u.cfg.Selector.Select(s.state.Difficulty.Level())
		if err != nil {
			return nil, fmt.Errorf("failed to select question: %w", err)
		}
	}

	history, err := u.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	action, err := u.cfg.Orchestrator.Decide(ctx, dialogue.Turn{
		State:     *s.state.Clone(),
		Selection: selection,
		Current:   s.current,
		History:   history,
		Message:   message,
	})
	if err != nil {
		return nil, u.modelError(ctx, err)
	}

	next := s.state.Clone()
	res, current, err := u.apply(s, next, selection, action)
	if err != nil {
		return nil, err
	}

	userMsg := &internalEntity.ChatMessage{SessionID: sessionID, Role: roleUser, Message: message}
	botMsg := &internalEntity.ChatMessage{
		SessionID: sessionID,
		Role:      roleAssistant,
		Message:   assistantText(action.Kind(), res, current),
		Action:    string(action.Kind()),
	}
	if err := u.commit(ctx, s, next, current, false, userMsg, botMsg); err != nil {
		return nil, err
	}

	u.cfg.Log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"action":     action.Kind(),
		"total":      next.TotalQuestions,
	}).Info("turn processed")

	res.SessionID = sessionID
	res.Action = string(action.Kind())
	res.Session = toSessionResponse(s.row, next, current)
	return res, nil
}

// apply mutates next according to the action and returns the new current question.
// The guards here hold even when the model ignores the tools it was offered.
func (u *quizUsecase) apply(s *session, next *quiz.State, selection *quiz.Selection, action dialogue.Action) (*entity.TurnResponse, *quiz.Presented, error) {
	res := &entity.TurnResponse{}

	switch a := action.(type) {
	case dialogue.PresentNextQuestion:
		if next.Completed() {
			return nil, nil, quiz.ErrQuizCompleted
		}
		q := a.Question
		url := q.URL
		if url == "" && selection != nil {
			url = selection.URL()
		}
		current, err := quiz.Present(u.cfg.Random, quiz.PresentInput{
			ID:             uuid.NewString(),
			Number:         next.TotalQuestions + 1,
			Type:           q.QuestionType,
			Text:           q.Text,
			Options:        q.Options,
			CorrectIndices: q.CorrectAnswer,
			SourceURL:      url,
			Labels:         q.Labels(),
			Selection:      selection,
		})
		if err != nil {
			if errors.Is(err, quiz.ErrInvalidPermutation) {
				return nil, nil, fmt.Errorf("%w: %v", dialogue.ErrMalformedAction, err)
			}
			return nil, nil, fmt.Errorf("failed to present question: %w", err)
		}
		res.Question = toQuestionView(current)
		return res, current, nil

	case dialogue.ProvideHint:
		if s.current == nil || s.current.Answered {
			return nil, nil, ErrNoActiveQuestion
		}
		if s.current.HintUsed {
			return nil, nil, ErrHintAlreadyUsed
		}
		if err := next.ConsumeHint(); err != nil {
			return nil, nil, err
		}
		current := *s.current
		current.HintUsed = true
		res.Message = a.Hint
		return res, &current, nil

	case dialogue.ProvideExplanation:
		if s.current == nil {
			return nil, nil, ErrNoActiveQuestion
		}
		res.Explanation = &entity.ExplanationView{
			Prompt:    a.Prompt,
			Answer:    a.Answer,
			StreamURL: fmt.Sprintf("/sessions/%s/explanation", s.row.SessionID),
		}
		return res, s.current, nil

	case dialogue.DisplayCurrentScore:
		score := toScoreResponse(next.Score())
		res.Score = &score
		return res, s.current, nil

	case dialogue.ResetQuiz:
		next.Reset(quiz.ResetProgress)
		return res, nil, nil

	case dialogue.Reply:
		res.Message = a.Text
		return res, s.current, nil
	}

	return nil, nil, fmt.Errorf("%w: unhandled action %T", dialogue.ErrMalformedAction, action)
}

// history returns the latest chat messages for the model, oldest first.
func (u *quizUsecase) history(ctx context.Context, sessionID string) ([]llm.Message, error) {
	messages, err := u.cfg.Repository.FindChatMessagesBySessionID(u.db(ctx), sessionID, u.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}

	out := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		role := llm.RoleAssistant
		if msg.Role == roleUser {
			role = llm.RoleUser
		}
		out = append(out, llm.Message{Role: role, Content: msg.Message})
	}
	return out, nil
}

func (u *quizUsecase) modelError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, dialogue.ErrMalformedAction):
		return err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTurnTimeout, err)
	case errors.Is(err, context.Canceled):
		return err
	}
	return fmt.Errorf("%w: %w", ErrModelFailed, err)
}

// SubmitAnswer grades the current question once and records the result.
func (u *quizUsecase) SubmitAnswer(ctx context.Context, sessionID string, req entity.SubmitAnswerRequest) (*entity.AnswerResponse, error) {
	unlock, err := u.cfg.Locks.TryLock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.current == nil {
		return nil, ErrNoActiveQuestion
	}
	if req.QuestionID != s.current.ID {
		return nil, ErrQuestionMismatch
	}
	if s.state.Completed() {
		return nil, quiz.ErrQuizCompleted
	}

	next := s.state.Clone()
	current := *s.current
	correct, wrong, err := current.Answer(req.Selected)
	if err != nil {
		return nil, err
	}
	if correct {
		err = next.RecordCorrect()
	} else {
		err = next.RecordIncorrect(*wrong)
	}
	if err != nil {
		return nil, err
	}

	msg := &internalEntity.ChatMessage{
		SessionID: sessionID,
		Role:      roleUser,
		Message:   answerText(&current, req.Selected, correct),
		Action:    actionAnswer,
	}
	if err := u.commit(ctx, s, next, &current, false, msg); err != nil {
		return nil, err
	}

	u.cfg.Log.WithFields(logrus.Fields{
		"session_id": sessionID,
		"question":   current.Number,
		"correct":    correct,
	}).Info("answer graded")

	return &entity.AnswerResponse{
		QuestionID:      current.ID,
		IsCorrect:       correct,
		Selected:        current.Selected,
		CorrectAnswer:   correctAnswer(&current),
		IncorrectAnswer: wrong,
		Score:           toScoreResponse(next.Score()),
	}, nil
}

// StreamExplanation explains the current question, handing text deltas to onDelta.
func (u *quizUsecase) StreamExplanation(ctx context.Context, sessionID string, onDelta func(string) error) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.turnTimeout)
	defer cancel()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if s.current == nil {
		return "", ErrNoActiveQuestion
	}

	text, err := u.cfg.Orchestrator.Explain(ctx, dialogue.ExplainRequest{
		Prompt:   s.current.Text,
		Answer:   s.current.CorrectAnswerText(),
		Language: s.state.Language,
	}, onDelta)
	if err != nil {
		return "", u.modelError(ctx, err)
	}
	return text, nil
}

func assistantText(kind dialogue.Kind, res *entity.TurnResponse, current *quiz.Presented) string {
	switch {
	case kind == dialogue.KindResetQuiz:
		return "The quiz was reset."
	case res.Question != nil:
		return fmt.Sprintf("Question %d: %s\nOptions: %s", current.Number, current.Text, strings.Join(current.Options, " | "))
	case res.Score != nil:
		return fmt.Sprintf("Score: %d correct, %d incorrect, %.0f%% accuracy",
			res.Score.CorrectAnswers, res.Score.IncorrectAnswers, res.Score.Accuracy)
	case res.Explanation != nil:
		return fmt.Sprintf("Explanation of %q: %s", res.Explanation.Prompt, res.Explanation.Answer)
	}
	return res.Message
}

func answerText(q *quiz.Presented, selected []int, correct bool) string {
	picked := make([]string, 0, len(selected))
	for _, slot := range selected {
		picked = append(picked, q.Options[slot])
	}
	result := "incorrect"
	if correct {
		result = "correct"
	}
	return fmt.Sprintf("Answered question %d with %s (%s)", q.Number, strings.Join(picked, ", "), result)
}
