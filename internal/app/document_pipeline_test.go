package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"studyreels/internal/model"
	"studyreels/internal/pkg/logger"
	"studyreels/internal/pkg/textextract"
	"studyreels/internal/repository"
)

func newPipelineFixture(t *testing.T, provider *fakeProvider) (*DocumentPipeline, *gorm.DB, *memBlobStore) {
	t.Helper()
	db := newTestDB(t)
	blobs := newMemBlobStore()
	uploads := repository.NewUploadRepository(db)
	ingest := NewIngestService(uploads, blobs, 0, logger.Discard())
	gen := NewGenerationService(provider, repository.NewReelRepository(db), uploads, GenerationOptions{}, logger.Discard())
	return NewDocumentPipeline(ingest, gen, logger.Discard()), db, blobs
}

func TestPipelineProcessesTextUpload(t *testing.T) {
	provider := &fakeProvider{reply: mitochondriaReply}
	pipeline, db, blobs := newPipelineFixture(t, provider)

	result, err := pipeline.Process(context.Background(), ProcessInput{
		UserID:   "user-1",
		FileName: "cell biology.txt",
		Data:     []byte("Mitochondria are the powerhouse of the cell."),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Generation)
	assert.Equal(t, 1, result.Generation.QuestionCount)
	assert.Equal(t, textextract.MIMEPlain, result.Upload.FileType)
	assert.Equal(t, 1, blobs.len())

	var reel model.Reel
	require.NoError(t, db.First(&reel, "id = ?", result.Generation.ReelID).Error)
	assert.Equal(t, "cell biology", reel.Title)
	require.NotNil(t, reel.SourceUploadID)
	assert.Equal(t, result.Upload.ID, *reel.SourceUploadID)
	assert.Contains(t, provider.last[1].Content, "Mitochondria are the powerhouse of the cell.")
}

func TestPipelineExtractionFailureKeepsUpload(t *testing.T) {
	provider := &fakeProvider{reply: mitochondriaReply}
	pipeline, db, _ := newPipelineFixture(t, provider)

	result, err := pipeline.Process(context.Background(), ProcessInput{
		UserID:       "user-1",
		FileName:     "broken.pdf",
		DeclaredType: textextract.MIMEPDF,
		Data:         []byte("%PDF-1.4\nthis is not really a pdf\n"),
		Title:        "Broken",
	})
	require.ErrorIs(t, err, textextract.ErrExtractionFailed)
	require.NotNil(t, result)
	assert.Nil(t, result.Generation)
	assert.NotEmpty(t, result.Upload.ID)

	assert.Zero(t, provider.calls)
	assert.EqualValues(t, 1, countRows(t, db, &model.Upload{}))
	assert.Zero(t, countRows(t, db, &model.Reel{}))
}

func TestPipelineIngestFailureStopsEarly(t *testing.T) {
	provider := &fakeProvider{reply: mitochondriaReply}
	pipeline, _, blobs := newPipelineFixture(t, provider)

	result, err := pipeline.Process(context.Background(), ProcessInput{UserID: "user-1", FileName: "empty.txt"})
	require.ErrorIs(t, err, ErrEmptyContent)
	assert.Nil(t, result)
	assert.Zero(t, provider.calls)
	assert.Zero(t, blobs.len())
}

func TestPipelineProcessesLatin1Notes(t *testing.T) {
	provider := &fakeProvider{reply: mitochondriaReply}
	pipeline, _, _ := newPipelineFixture(t, provider)

	result, err := pipeline.Process(context.Background(), ProcessInput{
		UserID:       "user-1",
		FileName:     "notes.txt",
		DeclaredType: textextract.MIMEPlain,
		Data:         []byte("La mitochondrie produit l'\xe9nergie de la cellule."),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Generation)
	assert.Contains(t, provider.last[1].Content, "l'énergie de la cellule")
}
