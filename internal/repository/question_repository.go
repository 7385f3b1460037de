package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyreels/internal/model"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// GetForUser returns a question only if it belongs to one of the user's reels.
func (r *QuestionRepository) GetForUser(ctx context.Context, questionID, userID string) (*model.Question, error) {
	var question model.Question
	err := r.db.WithContext(ctx).
		Joins("JOIN reels ON reels.id = questions.reel_id").
		Where("questions.id = ? AND reels.user_id = ?", questionID, userID).
		First(&question).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query question failed: %w", err)
	}
	return &question, nil
}
