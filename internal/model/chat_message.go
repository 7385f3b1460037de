package model

import (
	"time"

	"gorm.io/gorm"
)

type ChatMessage struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsBot     bool      `gorm:"not null;default:false" json:"is_bot"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (m *ChatMessage) BeforeCreate(tx *gorm.DB) error {
	newID(&m.ID)
	return nil
}

func (m ChatMessage) Role() string {
	if m.IsBot {
		return "assistant"
	}
	return "user"
}
