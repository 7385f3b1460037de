package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"studyreels/internal/model"
)

type ReelRepository struct {
	db *gorm.DB
}

func NewReelRepository(db *gorm.DB) *ReelRepository {
	return &ReelRepository{db: db}
}

// CreateWithQuestions writes the reel and all of its questions in one
// transaction. Either every row is committed or none is.
func (r *ReelRepository) CreateWithQuestions(ctx context.Context, reel *model.Reel, questions []model.Question) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Questions").Create(reel).Error; err != nil {
			return fmt.Errorf("create reel failed: %w", err)
		}
		if len(questions) == 0 {
			return nil
		}
		for i := range questions {
			questions[i].ReelID = reel.ID
		}
		if err := tx.Create(&questions).Error; err != nil {
			return fmt.Errorf("create questions failed: %w", err)
		}
		reel.Questions = questions
		return nil
	})
}

func (r *ReelRepository) ListByUserID(ctx context.Context, userID string, limit int) ([]model.Reel, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	var reels []model.Reel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reels).Error; err != nil {
		return nil, fmt.Errorf("list reels failed: %w", err)
	}
	return reels, nil
}

func (r *ReelRepository) GetByIDAndUserID(ctx context.Context, reelID, userID string) (*model.Reel, error) {
	var reel model.Reel
	err := r.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ? AND user_id = ?", reelID, userID).
		First(&reel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query reel failed: %w", err)
	}
	return &reel, nil
}

func (r *ReelRepository) CountQuestions(ctx context.Context, reelID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Question{}).Where("reel_id = ?", reelID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count questions failed: %w", err)
	}
	return count, nil
}

// DeleteByIDAndUserID removes a reel with its questions and their answers.
// Deleting a reel that does not exist is not an error.
func (r *ReelRepository) DeleteByIDAndUserID(ctx context.Context, reelID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		if err := tx.Model(&model.Reel{}).Where("id = ? AND user_id = ?", reelID, userID).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("query reel failed: %w", err)
		}
		return deleteReels(tx, ids)
	})
}

// DeleteOrphans removes reels older than cutoff that have no questions.
func (r *ReelRepository) DeleteOrphans(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		hasQuestions := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.Question{}).
			Select("1").
			Where("questions.reel_id = reels.id")

		var ids []string
		if err := tx.Model(&model.Reel{}).
			Where("created_at < ?", cutoff).
			Where("NOT EXISTS (?)", hasQuestions).
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("query orphan reels failed: %w", err)
		}
		deleted = int64(len(ids))
		return deleteReels(tx, ids)
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func deleteReels(tx *gorm.DB, reelIDs []string) error {
	if len(reelIDs) == 0 {
		return nil
	}
	questionIDs := tx.Session(&gorm.Session{NewDB: true}).
		Model(&model.Question{}).
		Select("id").
		Where("reel_id IN ?", reelIDs)

	if err := tx.Where("question_id IN (?)", questionIDs).Delete(&model.UserAnswer{}).Error; err != nil {
		return fmt.Errorf("delete answers failed: %w", err)
	}
	if err := tx.Where("reel_id IN ?", reelIDs).Delete(&model.Question{}).Error; err != nil {
		return fmt.Errorf("delete questions failed: %w", err)
	}
	if err := tx.Where("id IN ?", reelIDs).Delete(&model.Reel{}).Error; err != nil {
		return fmt.Errorf("delete reels failed: %w", err)
	}
	return nil
}
