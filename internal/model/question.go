package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Question struct {
	ID            string                      `gorm:"type:char(36);primaryKey" json:"id"`
	ReelID        string                      `gorm:"type:char(36);not null;index" json:"reel_id"`
	Question      string                      `gorm:"type:text;not null" json:"question"`
	Options       datatypes.JSONSlice[string] `gorm:"not null" json:"options"`
	CorrectAnswer string                      `gorm:"type:text;not null" json:"correct_answer"`
	Type          string                      `gorm:"size:32;not null" json:"type"`
	CreatedAt     time.Time                   `json:"created_at"`
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	newID(&q.ID)
	return nil
}

// HasOption reports whether answer is one of the stored options.
func (q *Question) HasOption(answer string) bool {
	for _, opt := range q.Options {
		if opt == answer {
			return true
		}
	}
	return false
}
