package model

import (
	"time"

	"gorm.io/gorm"
)

// Upload is a stored source document. FilePath is the blob storage key.
type Upload struct {
	ID        string    `gorm:"type:char(36);primaryKey" json:"id"`
	UserID    string    `gorm:"type:char(36);not null;index" json:"user_id"`
	FileName  string    `gorm:"size:255;not null" json:"file_name"`
	FilePath  string    `gorm:"size:512;not null;uniqueIndex" json:"file_path"`
	FileType  string    `gorm:"size:128;not null" json:"file_type"`
	SizeBytes int64     `gorm:"not null" json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *Upload) BeforeCreate(tx *gorm.DB) error {
	newID(&u.ID)
	return nil
}
