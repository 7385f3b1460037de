package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	ReelTypeQuiz         = "quiz"
	ReelTypeDocument     = "document"
	ReelTypeFlashcardSet = "flashcard_set"
)

type Reel struct {
	ID             string     `gorm:"type:char(36);primaryKey" json:"id"`
	UserID         string     `gorm:"type:char(36);not null;index" json:"user_id"`
	Title          string     `gorm:"size:255;not null" json:"title"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	Type           string     `gorm:"size:32;not null;default:quiz" json:"type"`
	SourceUploadID *string    `gorm:"type:char(36);index" json:"source_upload_id,omitempty"`
	Questions      []Question `gorm:"foreignKey:ReelID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
}

func (r *Reel) BeforeCreate(tx *gorm.DB) error {
	newID(&r.ID)
	return nil
}
