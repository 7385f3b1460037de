package model

import (
	"time"

	"gorm.io/gorm"
)

type UserAnswer struct {
	ID         string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:char(36);not null;index" json:"user_id"`
	QuestionID string    `gorm:"type:char(36);not null;index" json:"question_id"`
	Answer     string    `gorm:"type:text;not null" json:"answer"`
	IsCorrect  bool      `gorm:"not null" json:"is_correct"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *UserAnswer) BeforeCreate(tx *gorm.DB) error {
	newID(&a.ID)
	return nil
}
