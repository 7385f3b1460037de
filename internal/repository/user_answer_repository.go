package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"studyreels/internal/model"
)

type UserAnswerRepository struct {
	db *gorm.DB
}

type AnswerStats struct {
	Answered int64 `json:"answered"`
	Correct  int64 `json:"correct"`
}

func NewUserAnswerRepository(db *gorm.DB) *UserAnswerRepository {
	return &UserAnswerRepository{db: db}
}

func (r *UserAnswerRepository) Create(ctx context.Context, answer *model.UserAnswer) error {
	if err := r.db.WithContext(ctx).Create(answer).Error; err != nil {
		return fmt.Errorf("create answer failed: %w", err)
	}
	return nil
}

func (r *UserAnswerRepository) StatsByUserID(ctx context.Context, userID string) (AnswerStats, error) {
	var stats AnswerStats
	db := r.db.WithContext(ctx).Model(&model.UserAnswer{}).Where("user_id = ?", userID)
	if err := db.Session(&gorm.Session{}).Count(&stats.Answered).Error; err != nil {
		return AnswerStats{}, fmt.Errorf("count answers failed: %w", err)
	}
	if err := db.Session(&gorm.Session{}).Where("is_correct = ?", true).Count(&stats.Correct).Error; err != nil {
		return AnswerStats{}, fmt.Errorf("count correct answers failed: %w", err)
	}
	return stats, nil
}
