package database

import (
	"github.com/evandrarf/certquiz-be/internal/entity"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entity.QuizSession{},
		&entity.ChatMessage{},
	)
	return err
}
