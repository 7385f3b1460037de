package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studyreels/internal/model"
)

type ChatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) *ChatMessageRepository {
	return &ChatMessageRepository{db: db}
}

// CreateBatch stores one chat exchange in a single transaction. Messages
// whose id already exists are skipped so redelivered queue messages do not
// duplicate history.
func (r *ChatMessageRepository) CreateBatch(ctx context.Context, messages []model.ChatMessage) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range messages {
			if messages[i].ID != "" {
				var count int64
				if err := tx.Model(&model.ChatMessage{}).Where("id = ?", messages[i].ID).Count(&count).Error; err != nil {
					return err
				}
				if count > 0 {
					continue
				}
			}
			if err := tx.Create(&messages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("create chat messages failed: %w", err)
	}
	return nil
}

// ListRecentByUserID returns the newest limit messages in chronological order.
func (r *ChatMessageRepository) ListRecentByUserID(ctx context.Context, userID string, limit int) ([]model.ChatMessage, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var messages []model.ChatMessage
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list chat messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
