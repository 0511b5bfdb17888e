package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/evandrarf/certquiz-be/internal/delivery/http/repository"
	"github.com/evandrarf/certquiz-be/internal/dialogue"
	internalEntity "github.com/evandrarf/certquiz-be/internal/entity"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"gorm.io/gorm"
)

type fakeRepository struct {
	mu       sync.Mutex
	sessions map[string]internalEntity.QuizSession
	messages map[string][]internalEntity.ChatMessage
	saves    int
	saveErr  error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		sessions: make(map[string]internalEntity.QuizSession),
		messages: make(map[string][]internalEntity.ChatMessage),
	}
}

func (r *fakeRepository) CreateSession(_ *gorm.DB, session *internalEntity.QuizSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session.ID = uint(len(r.sessions) + 1)
	r.sessions[session.SessionID] = *session
	return nil
}

func (r *fakeRepository) FindSessionBySessionID(_ *gorm.DB, sessionID string) (*internalEntity.QuizSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &s, nil
}

func (r *fakeRepository) SaveTurn(_ *gorm.DB, turn repository.TurnWrite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saves++
	id := turn.Session.SessionID
	if turn.ClearHistory {
		delete(r.messages, id)
	}
	r.sessions[id] = *turn.Session
	for _, msg := range turn.Messages {
		m := *msg
		m.ID = uint(len(r.messages[id]) + 1)
		m.CreatedAt = time.Now()
		r.messages[id] = append(r.messages[id], m)
	}
	return nil
}

func (r *fakeRepository) DeleteStaleSessions(_ *gorm.DB, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.LastActivityAt.Before(before) {
			delete(r.sessions, id)
			delete(r.messages, id)
			n++
		}
	}
	return n, nil
}

func (r *fakeRepository) FindChatMessagesBySessionID(_ *gorm.DB, sessionID string, limit int) ([]internalEntity.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.messages[sessionID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return append([]internalEntity.ChatMessage(nil), all...), nil
}

func (r *fakeRepository) saveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

// fakeOrchestrator returns queued actions in order and records every turn.
type fakeOrchestrator struct {
	mu      sync.Mutex
	actions []dialogue.Action
	errs    []error
	turns   []dialogue.Turn
	block   bool
	chunks  []string
	explain []dialogue.ExplainRequest
}

func (o *fakeOrchestrator) push(a dialogue.Action) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.actions = append(o.actions, a)
	o.errs = append(o.errs, nil)
}

func (o *fakeOrchestrator) fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.actions = append(o.actions, nil)
	o.errs = append(o.errs, err)
}

func (o *fakeOrchestrator) Decide(ctx context.Context, turn dialogue.Turn) (dialogue.Action, error) {
	o.mu.Lock()
	o.turns = append(o.turns, turn)
	block := o.block
	var action dialogue.Action
	var err error
	if len(o.actions) > 0 {
		action, err = o.actions[0], o.errs[0]
		o.actions, o.errs = o.actions[1:], o.errs[1:]
	}
	o.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if action == nil && err == nil {
		return dialogue.Reply{Text: "Shall we start?"}, nil
	}
	return action, err
}

func (o *fakeOrchestrator) Explain(_ context.Context, req dialogue.ExplainRequest, onDelta func(string) error) (string, error) {
	o.mu.Lock()
	o.explain = append(o.explain, req)
	chunks := o.chunks
	o.mu.Unlock()

	text := ""
	for _, c := range chunks {
		if err := onDelta(c); err != nil {
			return "", err
		}
		text += c
	}
	return text, nil
}

func (o *fakeOrchestrator) lastTurn() dialogue.Turn {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.turns[len(o.turns)-1]
}

type fixedSelector struct {
	mu     sync.Mutex
	levels []quiz.Level
}

func (s *fixedSelector) Select(level quiz.Level) (*quiz.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.levels = append(s.levels, level)
	return &quiz.Selection{
		MainTopic: "Describe Artificial Intelligence workloads and considerations",
		Subtopic:  "Identify features of common machine learning types",
		Type:      quiz.QuestionTypeNormal,
		Single: &quiz.SingleQuestion{
			Question: "Which type of machine learning predicts a numeric value?",
			Answer:   "Regression",
			URL:      "https://learn.microsoft.com/training/modules/fundamentals-machine-learning/",
		},
	}, nil
}

func (s *fixedSelector) calls() []quiz.Level {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]quiz.Level(nil), s.levels...)
}

// zeroReader makes every shuffle deterministic: 4 options get the permutation
// [1 2 3 0] and 5 options get [1 2 3 4 0].
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}
