package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"studyreels/internal/model"
)

type UploadRepository struct {
	db *gorm.DB
}

func NewUploadRepository(db *gorm.DB) *UploadRepository {
	return &UploadRepository{db: db}
}

func (r *UploadRepository) Create(ctx context.Context, upload *model.Upload) error {
	if err := r.db.WithContext(ctx).Create(upload).Error; err != nil {
		return fmt.Errorf("create upload failed: %w", err)
	}
	return nil
}

func (r *UploadRepository) GetByIDAndUserID(ctx context.Context, uploadID, userID string) (*model.Upload, error) {
	var upload model.Upload
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", uploadID, userID).First(&upload).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query upload failed: %w", err)
	}
	return &upload, nil
}

func (r *UploadRepository) ListByUserID(ctx context.Context, userID string) ([]model.Upload, error) {
	var uploads []model.Upload
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at DESC").Find(&uploads).Error; err != nil {
		return nil, fmt.Errorf("list uploads failed: %w", err)
	}
	return uploads, nil
}

// DeleteWithReels removes the upload row together with every reel generated
// from it, their questions and the answers to those questions.
func (r *UploadRepository) DeleteWithReels(ctx context.Context, uploadID, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var reelIDs []string
		if err := tx.Model(&model.Reel{}).
			Where("source_upload_id = ? AND user_id = ?", uploadID, userID).
			Pluck("id", &reelIDs).Error; err != nil {
			return fmt.Errorf("query upload reels failed: %w", err)
		}
		if err := deleteReels(tx, reelIDs); err != nil {
			return err
		}
		if err := tx.Where("id = ? AND user_id = ?", uploadID, userID).Delete(&model.Upload{}).Error; err != nil {
			return fmt.Errorf("delete upload failed: %w", err)
		}
		return nil
	})
}
