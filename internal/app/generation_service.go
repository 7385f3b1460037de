package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"studyreels/internal/ai"
	"studyreels/internal/metrics"
	"studyreels/internal/model"
	"studyreels/internal/pkg/textextract"
	"studyreels/internal/quiz"
)

const defaultReelTitle = "Untitled"

type ReelWriter interface {
	CreateWithQuestions(ctx context.Context, reel *model.Reel, questions []model.Question) error
}

type UploadFinder interface {
	GetByIDAndUserID(ctx context.Context, uploadID, userID string) (*model.Upload, error)
}

type GenerationOptions struct {
	MaxContentChars int
	QuestionCount   int
	ExcerptChars    int
}

// GenerationService runs one pipeline pass: truncate, prompt, complete,
// repair, validate and persist. Any stage failure ends the run and nothing
// is written.
type GenerationService struct {
	provider ai.Provider
	reels    ReelWriter
	uploads  UploadFinder
	opts     GenerationOptions
	log      logrus.FieldLogger
}

type GenerateInput struct {
	UserID   string
	Title    string
	Content  string
	UploadID string
}

type GenerateResult struct {
	ReelID        string `json:"reelId"`
	QuestionCount int    `json:"questionCount"`
}

func NewGenerationService(provider ai.Provider, reels ReelWriter, uploads UploadFinder, opts GenerationOptions, log logrus.FieldLogger) *GenerationService {
	if opts.MaxContentChars <= 0 {
		opts.MaxContentChars = quiz.DefaultMaxContentChars
	}
	if opts.QuestionCount <= 0 {
		opts.QuestionCount = quiz.DefaultQuestionCount
	}
	if opts.ExcerptChars <= 0 {
		opts.ExcerptChars = 500
	}
	return &GenerationService{
		provider: provider,
		reels:    reels,
		uploads:  uploads,
		opts:     opts,
		log:      log,
	}
}

func (s *GenerationService) Generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	result, err := s.generate(ctx, input)
	outcome := Outcome(err)
	if result != nil {
		metrics.RecordPipeline(outcome, result.QuestionCount)
	} else {
		metrics.RecordPipeline(outcome, 0)
	}
	return result, err
}

func (s *GenerationService) generate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrNotAuthenticated
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, ErrEmptyContent
	}

	log := s.log.WithField("user_id", input.UserID)
	var sourceUploadID *string
	if uploadID := strings.TrimSpace(input.UploadID); uploadID != "" {
		upload, err := s.uploads.GetByIDAndUserID(ctx, uploadID, input.UserID)
		if err != nil {
			return nil, err
		}
		if upload == nil {
			return nil, ErrUploadNotFound
		}
		sourceUploadID = &upload.ID
		log = log.WithField("upload_id", uploadID)
	}

	content := quiz.Truncate(input.Content, s.opts.MaxContentChars)
	messages := []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: quiz.BuildPrompt(s.opts.QuestionCount)},
		{Role: ai.RoleUser, Content: quiz.BuildUserMessage(content)},
	}

	start := time.Now()
	raw, err := s.provider.Complete(ctx, messages)
	metrics.ObserveLLM(s.provider.Name(), time.Since(start), err)
	if err != nil {
		log.WithError(err).WithField("stage", "llm").Warn("generation failed")
		return nil, err
	}
	log.WithField("completion", raw).Debug("llm completion received")

	drafts, err := quiz.ParseQuestions(raw)
	if err != nil {
		log.WithError(err).WithField("stage", "repair").Warn("generation failed")
		return nil, err
	}
	validated, err := quiz.Validate(drafts)
	if err != nil {
		log.WithError(err).WithField("stage", "validate").Warn("generation failed")
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = defaultReelTitle
	}
	reel := &model.Reel{
		UserID:         input.UserID,
		Title:          title,
		Content:        quiz.Excerpt(content, s.opts.ExcerptChars),
		Type:           model.ReelTypeQuiz,
		SourceUploadID: sourceUploadID,
	}
	questions := make([]model.Question, 0, len(validated))
	for _, q := range validated {
		questions = append(questions, model.Question{
			Question:      q.Question,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Type:          q.Type,
		})
	}

	if err := s.reels.CreateWithQuestions(ctx, reel, questions); err != nil {
		log.WithError(err).WithField("stage", "persist").Error("generation failed")
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}

	log.WithFields(logrus.Fields{"reel_id": reel.ID, "question_count": len(questions)}).Info("reel generated")
	return &GenerateResult{ReelID: reel.ID, QuestionCount: len(questions)}, nil
}

// Outcome names the pipeline result for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, textextract.ErrExtractionFailed):
		return "extraction_failed"
	case errors.Is(err, quiz.ErrNoJSONFound):
		return "no_json_found"
	case errors.Is(err, quiz.ErrJSONParseFailed):
		return "json_parse_failed"
	case errors.Is(err, quiz.ErrValidationFailed):
		return "validation_failed"
	case errors.Is(err, ai.ErrQuotaExceeded):
		return "llm_quota_exceeded"
	case errors.Is(err, ai.ErrRequestFailed):
		return "llm_request_failed"
	case errors.Is(err, ErrStorageWriteFailed):
		return "storage_write_failed"
	default:
		return "error"
	}
}
