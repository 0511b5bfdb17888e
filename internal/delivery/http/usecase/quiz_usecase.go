package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/evandrarf/certquiz-be/internal/delivery/http/entity"
	"github.com/evandrarf/certquiz-be/internal/delivery/http/repository"
	"github.com/evandrarf/certquiz-be/internal/dialogue"
	internalEntity "github.com/evandrarf/certquiz-be/internal/entity"
	"github.com/evandrarf/certquiz-be/internal/pkg/mapper"
	"github.com/evandrarf/certquiz-be/internal/pkg/turnlock"
	"github.com/evandrarf/certquiz-be/internal/quiz"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionNotConfigured = errors.New("language and difficulty must be set first")
	ErrQuizInProgress       = errors.New("settings cannot change once the quiz has started")
	ErrNoActiveQuestion     = errors.New("no current question")
	ErrHintAlreadyUsed      = errors.New("hint already used for this question")
	ErrQuestionMismatch     = errors.New("answer does not belong to the current question")
	ErrTurnTimeout          = errors.New("turn timed out")
	ErrModelFailed          = errors.New("language model request failed")
)

const (
	defaultTurnTimeout  = 45 * time.Second
	defaultHistoryLimit = 10
	defaultSessionTTL   = 72 * time.Hour
	chatHistoryLimit    = 100
)

type QuizUsecase interface {
	CreateSession(ctx context.Context, req entity.CreateSessionRequest) (*entity.SessionResponse, error)
	GetSession(ctx context.Context, sessionID string) (*entity.SessionResponse, error)
	UpdateSettings(ctx context.Context, sessionID string, req entity.UpdateSettingsRequest) (*entity.SessionResponse, error)
	SendMessage(ctx context.Context, sessionID string, req entity.SendMessageRequest) (*entity.TurnResponse, error)
	SubmitAnswer(ctx context.Context, sessionID string, req entity.SubmitAnswerRequest) (*entity.AnswerResponse, error)
	GetScore(ctx context.Context, sessionID string) (*entity.ScoreResponse, error)
	Reset(ctx context.Context, sessionID string, req entity.ResetRequest) (*entity.SessionResponse, error)
	StreamExplanation(ctx context.Context, sessionID string, onDelta func(string) error) (string, error)
	GetChatHistory(ctx context.Context, sessionID string) ([]entity.ChatHistoryItem, error)
	PurgeStaleSessions(ctx context.Context) (int64, error)
}

// QuestionSelector picks the candidate question for a turn.
type QuestionSelector interface {
	Select(level quiz.Level) (*quiz.Selection, error)
}

type QuizConfig struct {
	DB           *gorm.DB
	Orchestrator dialogue.Orchestrator
	Selector     QuestionSelector
	Repository   repository.QuizSessionRepository
	Locks        *turnlock.Locker
	// Random drives option shuffling, crypto/rand when nil.
	Random io.Reader
	Config *viper.Viper
	Log    *logrus.Logger
	Now    func() time.Time
}

type quizUsecase struct {
	cfg          QuizConfig
	turnTimeout  time.Duration
	historyLimit int
	sessionTTL   time.Duration
}

func NewQuizUsecase(cfg QuizConfig) QuizUsecase {
	if cfg.Locks == nil {
		cfg.Locks = turnlock.New()
	}
	if cfg.Random == nil {
		cfg.Random = quiz.DefaultRandom
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Log == nil {
		cfg.Log = logrus.New()
		cfg.Log.Out = io.Discard
	}

	u := &quizUsecase{
		cfg:          cfg,
		turnTimeout:  defaultTurnTimeout,
		historyLimit: defaultHistoryLimit,
		sessionTTL:   defaultSessionTTL,
	}
	if cfg.Config != nil {
		if d := cfg.Config.GetDuration("quiz.turn_timeout"); d > 0 {
			u.turnTimeout = d
		}
		if n := cfg.Config.GetInt("quiz.history_limit"); n > 0 {
			u.historyLimit = n
		}
		if d := cfg.Config.GetDuration("quiz.session_ttl"); d > 0 {
			u.sessionTTL = d
		}
	}
	return u
}

// db scopes the connection to ctx. A nil DB lets the repository use its own.
func (u *quizUsecase) db(ctx context.Context) *gorm.DB {
	if u.cfg.DB == nil {
		return nil
	}
	return u.cfg.DB.WithContext(ctx)
}

// session is a loaded row together with its decoded state.
type session struct {
	row     *internalEntity.QuizSession
	state   *quiz.State
	current *quiz.Presented
}

func (u *quizUsecase) load(ctx context.Context, sessionID string) (*session, error) {
	row, err := u.cfg.Repository.FindSessionBySessionID(u.db(ctx), sessionID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	state, current, err := mapper.ConvertToQuizState(row)
	if err != nil {
		u.cfg.Log.WithField("session_id", sessionID).WithError(err).Error("stored session is invalid")
		return nil, fmt.Errorf("failed to decode session %s: %w", sessionID, err)
	}
	return &session{row: row, state: state, current: current}, nil
}

// commit writes the next state and the turn's chat messages as one unit.
func (u *quizUsecase) commit(ctx context.Context, s *session, state *quiz.State, current *quiz.Presented, clearHistory bool, messages ...*internalEntity.ChatMessage) error {
	if err := mapper.ApplyQuizState(s.row, state, current, u.cfg.Now()); err != nil {
		return err
	}
	err := u.cfg.Repository.SaveTurn(u.db(ctx), repository.TurnWrite{
		Session:      s.row,
		Messages:     messages,
		ClearHistory: clearHistory,
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (u *quizUsecase) CreateSession(ctx context.Context, req entity.CreateSessionRequest) (*entity.SessionResponse, error) {
	state := quiz.NewState()
	if req.Language != "" {
		if err := state.SetLanguage(req.Language); err != nil {
			return nil, err
		}
	}
	if req.Difficulty != "" {
		d, err := quiz.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, err
		}
		if err := state.SetDifficulty(d); err != nil {
			return nil, err
		}
	}

	row, err := mapper.NewQuizSession(uuid.NewString(), state, u.cfg.Now())
	if err != nil {
		return nil, err
	}
	if err := u.cfg.Repository.CreateSession(u.db(ctx), row); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	u.cfg.Log.WithField("session_id", row.SessionID).Info("session created")
	res := toSessionResponse(row, state, nil)
	return &res, nil
}

func (u *quizUsecase) GetSession(ctx context.Context, sessionID string) (*entity.SessionResponse, error) {
	s, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	res := toSessionResponse(s.row, s.state, s.current)
	return &res, nil
}

func (u *quizUsecase) UpdateSettings(ctx context.Context, sessionID string, req entity.UpdateSettingsRequest) (*entity.SessionResponse, error) {
	unlock, err := u.cfg.Locks.TryLock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.state.TotalQuestions > 0 {
		return nil, ErrQuizInProgress
	}

	d, err := quiz.ParseDifficulty(req.Difficulty)
	if err != nil {
		return nil, err
	}
	next := s.state.Clone()
	if err := next.SetLanguage(req.Language); err != nil {
		return nil, err
	}
	if err := next.SetDifficulty(d); err != nil {
		return nil, err
	}

	if err := u.commit(ctx, s, next, s.current, false); err != nil {
		return nil, err
	}
	res := toSessionResponse(s.row, next, s.current)
	return &res, nil
}

func (u *quizUsecase) GetScore(ctx context.Context, sessionID string) (*entity.ScoreResponse, error) {
	s, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	score := toScoreResponse(s.state.Score())
	return &score, nil
}

func (u *quizUsecase) Reset(ctx context.Context, sessionID string, req entity.ResetRequest) (*entity.SessionResponse, error) {
	unlock, err := u.cfg.Locks.TryLock(sessionID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	s, err := u.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	scope := quiz.ResetProgress
	if req.Scope == string(quiz.ResetAll) {
		scope = quiz.ResetAll
	}
	next := s.state.Clone()
	next.Reset(scope)

	if err := u.commit(ctx, s, next, nil, scope == quiz.ResetAll); err != nil {
		return nil, err
	}

	u.cfg.Log.WithFields(logrus.Fields{"session_id": sessionID, "scope": scope}).Info("quiz reset")
	res := toSessionResponse(s.row, next, nil)
	return &res, nil
}

// GetChatHistory retrieves chat history for a session
func (u *quizUsecase) GetChatHistory(ctx context.Context, sessionID string) ([]entity.ChatHistoryItem, error) {
	if _, err := u.load(ctx, sessionID); err != nil {
		return nil, err
	}

	messages, err := u.cfg.Repository.FindChatMessagesBySessionID(u.db(ctx), sessionID, chatHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}

	history := make([]entity.ChatHistoryItem, 0, len(messages))
	for _, msg := range messages {
		history = append(history, entity.ChatHistoryItem{
			Role:      msg.Role,
			Message:   msg.Message,
			Action:    msg.Action,
			CreatedAt: msg.CreatedAt.Format(time.RFC3339),
		})
	}

	return history, nil
}

// PurgeStaleSessions deletes sessions idle for longer than quiz.session_ttl.
func (u *quizUsecase) PurgeStaleSessions(ctx context.Context) (int64, error) {
	before := u.cfg.Now().Add(-u.sessionTTL)
	deleted, err := u.cfg.Repository.DeleteStaleSessions(u.db(ctx), before)
	if err != nil {
		return 0, fmt.Errorf("failed to purge stale sessions: %w", err)
	}
	if deleted > 0 {
		u.cfg.Log.WithFields(logrus.Fields{"deleted": deleted, "before": before.Format(time.RFC3339)}).Info("purged stale sessions")
	}
	return deleted, nil
}
