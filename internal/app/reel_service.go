package app

import (
	"context"
	"strings"

	"studyreels/internal/model"
	"studyreels/internal/repository"
)

type ReelStore interface {
	ListByUserID(ctx context.Context, userID string, limit int) ([]model.Reel, error)
	GetByIDAndUserID(ctx context.Context, reelID, userID string) (*model.Reel, error)
	DeleteByIDAndUserID(ctx context.Context, reelID, userID string) error
}

type QuestionFinder interface {
	GetForUser(ctx context.Context, questionID, userID string) (*model.Question, error)
}

type AnswerStore interface {
	Create(ctx context.Context, answer *model.UserAnswer) error
	StatsByUserID(ctx context.Context, userID string) (repository.AnswerStats, error)
}

type ReelService struct {
	reels     ReelStore
	questions QuestionFinder
	answers   AnswerStore
}

type AnswerResult struct {
	AnswerID      string `json:"answer_id"`
	IsCorrect     bool   `json:"is_correct"`
	CorrectAnswer string `json:"correct_answer"`
}

func NewReelService(reels ReelStore, questions QuestionFinder, answers AnswerStore) *ReelService {
	return &ReelService{reels: reels, questions: questions, answers: answers}
}

func (s *ReelService) List(ctx context.Context, userID string, limit int) ([]model.Reel, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	return s.reels.ListByUserID(ctx, userID, limit)
}

func (s *ReelService) Get(ctx context.Context, userID, reelID string) (*model.Reel, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	reel, err := s.reels.GetByIDAndUserID(ctx, reelID, userID)
	if err != nil {
		return nil, err
	}
	if reel == nil {
		return nil, ErrReelNotFound
	}
	return reel, nil
}

func (s *ReelService) Delete(ctx context.Context, userID, reelID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	return s.reels.DeleteByIDAndUserID(ctx, reelID, userID)
}

// SubmitAnswer records an attempt. Every attempt is kept, so answering the
// same question twice yields two rows.
func (s *ReelService) SubmitAnswer(ctx context.Context, userID, questionID, answer string) (*AnswerResult, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(answer) == "" {
		return nil, ErrInvalidInput
	}
	question, err := s.questions.GetForUser(ctx, questionID, userID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return nil, ErrQuestionNotFound
	}

	record := &model.UserAnswer{
		UserID:     userID,
		QuestionID: question.ID,
		Answer:     answer,
		IsCorrect:  answer == question.CorrectAnswer,
	}
	if err := s.answers.Create(ctx, record); err != nil {
		return nil, err
	}
	return &AnswerResult{
		AnswerID:      record.ID,
		IsCorrect:     record.IsCorrect,
		CorrectAnswer: question.CorrectAnswer,
	}, nil
}

func (s *ReelService) AnswerStats(ctx context.Context, userID string) (repository.AnswerStats, error) {
	if userID == "" {
		return repository.AnswerStats{}, ErrNotAuthenticated
	}
	return s.answers.StatsByUserID(ctx, userID)
}
