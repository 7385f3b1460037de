package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"studyreels/internal/metrics"
	"studyreels/internal/model"
	"studyreels/internal/pkg/textextract"
)

// DocumentPipeline takes an uploaded document all the way to a persisted
// reel: ingest, extract text, then generate.
type DocumentPipeline struct {
	ingest    *IngestService
	generator *GenerationService
	log       logrus.FieldLogger
}

type ProcessInput struct {
	UserID       string
	FileName     string
	DeclaredType string
	Data         []byte
	Title        string
}

type ProcessResult struct {
	Upload     UploadView      `json:"upload"`
	Generation *GenerateResult `json:"generation"`
}

func NewDocumentPipeline(ingest *IngestService, generator *GenerationService, log logrus.FieldLogger) *DocumentPipeline {
	return &DocumentPipeline{ingest: ingest, generator: generator, log: log}
}

// Process keeps the stored upload when a later stage fails; the caller gets
// the upload back together with the error so it can be retried or deleted.
func (p *DocumentPipeline) Process(ctx context.Context, input ProcessInput) (*ProcessResult, error) {
	upload, err := p.ingest.Ingest(ctx, IngestInput{
		UserID:       input.UserID,
		FileName:     input.FileName,
		DeclaredType: input.DeclaredType,
		Data:         input.Data,
	})
	if err != nil {
		return nil, err
	}
	result := &ProcessResult{Upload: p.ingest.View(*upload)}

	text, err := textextract.Extract(input.Data, upload.FileType)
	if err != nil {
		metrics.RecordPipeline(Outcome(err), 0)
		p.log.WithError(err).WithFields(logrus.Fields{
			"user_id":   input.UserID,
			"upload_id": upload.ID,
			"stage":     "extract",
		}).Warn("generation failed")
		return result, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = titleFromFileName(upload)
	}
	generated, err := p.generator.Generate(ctx, GenerateInput{
		UserID:   input.UserID,
		Title:    title,
		Content:  text,
		UploadID: upload.ID,
	})
	if err != nil {
		return result, err
	}
	result.Generation = generated
	return result, nil
}

func titleFromFileName(upload *model.Upload) string {
	return strings.TrimSuffix(upload.FileName, filepath.Ext(upload.FileName))
}
