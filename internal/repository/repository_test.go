package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"studyreels/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db))
	return db
}

func sampleQuestions(n int) []model.Question {
	questions := make([]model.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, model.Question{
			Question:      "What is the function of mitochondria?",
			Options:       []string{"A) Energy production", "B) Protein synthesis"},
			CorrectAnswer: "A) Energy production",
			Type:          "multiple_choice",
		})
	}
	return questions
}

func TestReelCreateWithQuestions(t *testing.T) {
	ctx := context.Background()
	repo := NewReelRepository(newTestDB(t))

	reel := &model.Reel{UserID: "user-1", Title: "Cells", Content: "Mito...", Type: model.ReelTypeQuiz}
	require.NoError(t, repo.CreateWithQuestions(ctx, reel, sampleQuestions(5)))
	require.NotEmpty(t, reel.ID)

	got, err := repo.GetByIDAndUserID(ctx, reel.ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Questions, 5)
	for _, q := range got.Questions {
		assert.Equal(t, reel.ID, q.ReelID)
		assert.True(t, q.HasOption(q.CorrectAnswer))
	}

	other, err := repo.GetByIDAndUserID(ctx, reel.ID, "user-2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestReelCreateRollsBackOnQuestionFailure(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewReelRepository(db)

	questions := sampleQuestions(2)
	questions[1].ID = "dup"
	questions[0].ID = "dup"

	reel := &model.Reel{UserID: "user-1", Title: "Cells", Content: "x", Type: model.ReelTypeQuiz}
	require.Error(t, repo.CreateWithQuestions(ctx, reel, questions))

	var reels, rows int64
	require.NoError(t, db.Model(&model.Reel{}).Count(&reels).Error)
	require.NoError(t, db.Model(&model.Question{}).Count(&rows).Error)
	assert.Zero(t, reels)
	assert.Zero(t, rows)
}

func TestReelDeleteCascades(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewReelRepository(db)
	answers := NewUserAnswerRepository(db)

	reel := &model.Reel{UserID: "user-1", Title: "Cells", Content: "x", Type: model.ReelTypeQuiz}
	require.NoError(t, repo.CreateWithQuestions(ctx, reel, sampleQuestions(2)))
	require.NoError(t, answers.Create(ctx, &model.UserAnswer{UserID: "user-1", QuestionID: reel.Questions[0].ID, Answer: "A) Energy production", IsCorrect: true}))

	require.NoError(t, repo.DeleteByIDAndUserID(ctx, reel.ID, "user-2"))
	count, err := repo.CountQuestions(ctx, reel.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)

	require.NoError(t, repo.DeleteByIDAndUserID(ctx, reel.ID, "user-1"))
	require.NoError(t, repo.DeleteByIDAndUserID(ctx, reel.ID, "user-1"))

	count, err = repo.CountQuestions(ctx, reel.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	stats, err := answers.StatsByUserID(ctx, "user-1")
	require.NoError(t, err)
	assert.Zero(t, stats.Answered)
}

func TestReelDeleteOrphans(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewReelRepository(db)

	old := time.Now().Add(-time.Hour)
	orphan := &model.Reel{UserID: "user-1", Title: "orphan", Content: "x", Type: model.ReelTypeQuiz, CreatedAt: old}
	require.NoError(t, repo.CreateWithQuestions(ctx, orphan, nil))
	fresh := &model.Reel{UserID: "user-1", Title: "fresh orphan", Content: "x", Type: model.ReelTypeQuiz}
	require.NoError(t, repo.CreateWithQuestions(ctx, fresh, nil))
	full := &model.Reel{UserID: "user-1", Title: "full", Content: "x", Type: model.ReelTypeQuiz, CreatedAt: old}
	require.NoError(t, repo.CreateWithQuestions(ctx, full, sampleQuestions(1)))

	deleted, err := repo.DeleteOrphans(ctx, time.Now().Add(-10*time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	reels, err := repo.ListByUserID(ctx, "user-1", 0)
	require.NoError(t, err)
	titles := make([]string, 0, len(reels))
	for _, r := range reels {
		titles = append(titles, r.Title)
	}
	assert.ElementsMatch(t, []string{"fresh orphan", "full"}, titles)
}

func TestUploadDeleteWithReels(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	uploads := NewUploadRepository(db)
	reels := NewReelRepository(db)

	upload := &model.Upload{UserID: "user-1", FileName: "cells.pdf", FilePath: "uploads/user-1/a.pdf", FileType: "application/pdf", SizeBytes: 10}
	require.NoError(t, uploads.Create(ctx, upload))

	reel := &model.Reel{UserID: "user-1", Title: "Cells", Content: "x", Type: model.ReelTypeQuiz, SourceUploadID: &upload.ID}
	require.NoError(t, reels.CreateWithQuestions(ctx, reel, sampleQuestions(3)))
	unrelated := &model.Reel{UserID: "user-1", Title: "Other", Content: "x", Type: model.ReelTypeQuiz}
	require.NoError(t, reels.CreateWithQuestions(ctx, unrelated, sampleQuestions(1)))

	require.NoError(t, uploads.DeleteWithReels(ctx, upload.ID, "user-1"))
	require.NoError(t, uploads.DeleteWithReels(ctx, upload.ID, "user-1"))

	got, err := uploads.GetByIDAndUserID(ctx, upload.ID, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	remaining, err := reels.ListByUserID(ctx, "user-1", 0)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "Other", remaining[0].Title)

	count, err := reels.CountQuestions(ctx, reel.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestQuestionGetForUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	reels := NewReelRepository(db)
	questions := NewQuestionRepository(db)

	reel := &model.Reel{UserID: "user-1", Title: "Cells", Content: "x", Type: model.ReelTypeQuiz}
	require.NoError(t, reels.CreateWithQuestions(ctx, reel, sampleQuestions(1)))

	q, err := questions.GetForUser(ctx, reel.Questions[0].ID, "user-1")
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, []string{"A) Energy production", "B) Protein synthesis"}, []string(q.Options))

	q, err = questions.GetForUser(ctx, reel.Questions[0].ID, "user-2")
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestChatMessagesRecentOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewChatMessageRepository(newTestDB(t))

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 12; i += 2 {
		exchange := []model.ChatMessage{
			{UserID: "user-1", Content: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)},
			{UserID: "user-1", Content: string(rune('a' + i + 1)), IsBot: true, CreatedAt: base.Add(time.Duration(i+1) * time.Minute)},
		}
		require.NoError(t, repo.CreateBatch(ctx, exchange))
		require.NoError(t, repo.CreateBatch(ctx, exchange))
	}

	recent, err := repo.ListRecentByUserID(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 10)
	assert.Equal(t, "c", recent[0].Content)
	assert.Equal(t, "l", recent[9].Content)
	assert.Equal(t, "assistant", recent[9].Role())
}

func TestChatMessagesBatchSkipsKnownIDs(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewChatMessageRepository(db)

	err := repo.CreateBatch(ctx, []model.ChatMessage{
		{ID: "m1", UserID: "user-1", Content: "question"},
		{ID: "m1x", UserID: "user-1", Content: "answer", IsBot: true, CreatedAt: time.Now()},
		{ID: "m1x", UserID: "user-1", Content: "duplicate key within the batch", IsBot: true},
	})
	require.NoError(t, err)

	var n int64
	require.NoError(t, db.Model(&model.ChatMessage{}).Count(&n).Error)
	assert.EqualValues(t, 2, n)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	user := &model.User{Username: "alice", Email: "alice@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))

	byName, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	missing, err := repo.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
