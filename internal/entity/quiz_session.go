package entity

import (
	"time"

	"gorm.io/gorm"
)

// QuizSession - Quiz progress per session, one row per browser session
type QuizSession struct {
	ID                        uint           `gorm:"primarykey" json:"id"`
	SessionID                 string         `gorm:"size:100;not null;uniqueIndex" json:"session_id"`
	SchemaVersion             int            `gorm:"not null;default:0" json:"schema_version"`
	Language                  string         `gorm:"size:50" json:"language"`
	Difficulty                string         `gorm:"size:20" json:"difficulty"`
	CorrectAnswers            int            `gorm:"not null;default:0" json:"correct_answers"`
	IncorrectAnswers          int            `gorm:"not null;default:0" json:"incorrect_answers"`
	TotalQuestions            int            `gorm:"not null;default:0" json:"total_questions"`
	Hint                      int            `gorm:"not null;default:0" json:"hint"`                // -1 means unlimited
	IncorrectAnswerPickedList string         `gorm:"type:text" json:"incorrect_answer_picked_list"` // JSON array
	CurrentQuestion           string         `gorm:"type:text" json:"current_question"`             // JSON, empty before the first question
	LastActivityAt            time.Time      `gorm:"index" json:"last_activity_at"`
	CreatedAt                 time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt                 time.Time      `json:"updated_at"`
	DeletedAt                 gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (QuizSession) TableName() string {
	return "quiz_sessions"
}

// ChatMessage - History chat per session
type ChatMessage struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	SessionID string         `gorm:"size:100;not null;index" json:"session_id"`
	Role      string         `gorm:"size:20;not null" json:"role"` // user, assistant
	Message   string         `gorm:"type:text;not null" json:"message"`
	Action    string         `gorm:"size:40" json:"action"` // dialogue action chosen for the turn
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
