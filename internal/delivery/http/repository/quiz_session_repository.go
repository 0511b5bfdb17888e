package repository

import (
	"time"

	"github.com/evandrarf/certquiz-be/internal/entity"
	"gorm.io/gorm"
)

type (
	QuizSessionRepository interface {
		// Session operations
		CreateSession(db *gorm.DB, session *entity.QuizSession) error
		FindSessionBySessionID(db *gorm.DB, sessionID string) (*entity.QuizSession, error)
		SaveTurn(db *gorm.DB, turn TurnWrite) error
		DeleteStaleSessions(db *gorm.DB, before time.Time) (int64, error)

		// Chat message operations
		FindChatMessagesBySessionID(db *gorm.DB, sessionID string, limit int) ([]entity.ChatMessage, error)
	}

	// TurnWrite is everything one turn persists. It is written in a single transaction.
	TurnWrite struct {
		Session      *entity.QuizSession
		Messages     []*entity.ChatMessage
		ClearHistory bool
	}

	quizSessionRepository struct {
		db *gorm.DB
	}
)

func NewQuizSessionRepository(db *gorm.DB) QuizSessionRepository {
	return &quizSessionRepository{db: db}
}

// Session operations
func (r *quizSessionRepository) CreateSession(db *gorm.DB, session *entity.QuizSession) error {
	if db == nil {
		db = r.db
	}
	return db.Create(session).Error
}

func (r *quizSessionRepository) FindSessionBySessionID(db *gorm.DB, sessionID string) (*entity.QuizSession, error) {
	if db == nil {
		db = r.db
	}
	var session entity.QuizSession
	err := db.Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *quizSessionRepository) SaveTurn(db *gorm.DB, turn TurnWrite) error {
	if db == nil {
		db = r.db
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if turn.ClearHistory {
			if err := tx.Where("session_id = ?", turn.Session.SessionID).Delete(&entity.ChatMessage{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Save(turn.Session).Error; err != nil {
			return err
		}
		for _, msg := range turn.Messages {
			if err := tx.Create(msg).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteStaleSessions permanently removes sessions idle since before, along with their chat history.
func (r *quizSessionRepository) DeleteStaleSessions(db *gorm.DB, before time.Time) (int64, error) {
	if db == nil {
		db = r.db
	}
	var deleted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		stale := tx.Unscoped().Model(&entity.QuizSession{}).Select("session_id").Where("last_activity_at < ?", before)
		if err := tx.Unscoped().Where("session_id IN (?)", stale).Delete(&entity.ChatMessage{}).Error; err != nil {
			return err
		}
		res := tx.Unscoped().Where("last_activity_at < ?", before).Delete(&entity.QuizSession{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

// Chat message operations

// FindChatMessagesBySessionID returns the latest limit messages, oldest first.
func (r *quizSessionRepository) FindChatMessagesBySessionID(db *gorm.DB, sessionID string, limit int) ([]entity.ChatMessage, error) {
	if db == nil {
		db = r.db
	}
	var messages []entity.ChatMessage
	query := db.Where("session_id = ?", sessionID).Order("created_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
