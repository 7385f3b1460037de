package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"studyreels/internal/model"
	"studyreels/internal/pkg/textextract"
	"studyreels/internal/storage"
)

type UploadStore interface {
	Create(ctx context.Context, upload *model.Upload) error
	GetByIDAndUserID(ctx context.Context, uploadID, userID string) (*model.Upload, error)
	ListByUserID(ctx context.Context, userID string) ([]model.Upload, error)
	DeleteWithReels(ctx context.Context, uploadID, userID string) error
}

type IngestService struct {
	uploads  UploadStore
	blobs    storage.BlobStore
	maxBytes int64
	log      logrus.FieldLogger
}

type IngestInput struct {
	UserID       string
	FileName     string
	DeclaredType string
	Data         []byte
}

type UploadView struct {
	ID        string    `json:"id"`
	FileName  string    `json:"file_name"`
	FileType  string    `json:"file_type"`
	SizeBytes int64     `json:"size_bytes"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewIngestService(uploads UploadStore, blobs storage.BlobStore, maxBytes int64, log logrus.FieldLogger) *IngestService {
	return &IngestService{
		uploads:  uploads,
		blobs:    blobs,
		maxBytes: maxBytes,
		log:      log,
	}
}

// Ingest stores the raw bytes under a fresh key and records the upload. The
// blob is removed again when the row cannot be written.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*model.Upload, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, ErrNotAuthenticated
	}
	if len(input.Data) == 0 {
		return nil, ErrEmptyContent
	}
	if s.maxBytes > 0 && int64(len(input.Data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	mimeType, err := ResolveType(input.DeclaredType, input.Data)
	if err != nil {
		return nil, err
	}

	fileName := filepath.Base(strings.TrimSpace(input.FileName))
	if fileName == "." || fileName == "/" {
		fileName = "upload"
	}
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		if m := mimetype.Lookup(mimeType); m != nil {
			ext = m.Extension()
		}
	}
	uploadID := uuid.NewString()
	key := fmt.Sprintf("uploads/%s/%s%s", input.UserID, uploadID, ext)

	if err := s.blobs.Put(ctx, key, input.Data, mimeType); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}

	upload := &model.Upload{
		ID:        uploadID,
		UserID:    input.UserID,
		FileName:  fileName,
		FilePath:  key,
		FileType:  mimeType,
		SizeBytes: int64(len(input.Data)),
	}
	if err := s.uploads.Create(ctx, upload); err != nil {
		if delErr := s.blobs.Delete(ctx, key); delErr != nil {
			s.log.WithError(delErr).WithField("key", key).Warn("remove blob after failed insert")
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageWriteFailed, err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id":   input.UserID,
		"upload_id": upload.ID,
		"file_type": mimeType,
		"size":      upload.SizeBytes,
	}).Info("upload stored")
	return upload, nil
}

func (s *IngestService) List(ctx context.Context, userID string) ([]UploadView, error) {
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	uploads, err := s.uploads.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]UploadView, 0, len(uploads))
	for _, u := range uploads {
		views = append(views, s.View(u))
	}
	return views, nil
}

func (s *IngestService) View(u model.Upload) UploadView {
	return UploadView{
		ID:        u.ID,
		FileName:  u.FileName,
		FileType:  u.FileType,
		SizeBytes: u.SizeBytes,
		URL:       s.blobs.PublicURL(u.FilePath),
		CreatedAt: u.CreatedAt,
	}
}

// Delete removes an upload, its blob and every reel generated from it.
// Deleting an upload that does not exist is not an error.
func (s *IngestService) Delete(ctx context.Context, userID, uploadID string) error {
	if userID == "" {
		return ErrNotAuthenticated
	}
	upload, err := s.uploads.GetByIDAndUserID(ctx, uploadID, userID)
	if err != nil {
		return err
	}
	if upload == nil {
		return nil
	}
	return s.remove(ctx, *upload)
}

func (s *IngestService) DeleteAll(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, ErrNotAuthenticated
	}
	uploads, err := s.uploads.ListByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i, u := range uploads {
		if err := s.remove(ctx, u); err != nil {
			return i, err
		}
	}
	return len(uploads), nil
}

func (s *IngestService) remove(ctx context.Context, upload model.Upload) error {
	if err := s.blobs.Delete(ctx, upload.FilePath); err != nil {
		return err
	}
	if err := s.uploads.DeleteWithReels(ctx, upload.ID, upload.UserID); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"user_id": upload.UserID, "upload_id": upload.ID}).Info("upload deleted")
	return nil
}

// ResolveType settles the MIME type of an upload from the declared type and
// the sniffed content. A missing or generic declaration adopts the sniffed
// type. Otherwise the declared type must appear in the sniffed type's
// hierarchy; markdown is accepted wherever plain text is.
func ResolveType(declared string, data []byte) (string, error) {
	declared = textextract.BaseType(declared)
	chain := sniffChain(data)

	if declared == "" || declared == "application/octet-stream" {
		for _, t := range chain {
			if textextract.Supported(t) {
				return t, nil
			}
		}
		return "", ErrUnsupportedType
	}
	if !textextract.Supported(declared) {
		return "", ErrUnsupportedType
	}
	for _, t := range chain {
		if t == declared || (declared == textextract.MIMEMarkdown && t == textextract.MIMEPlain) {
			return declared, nil
		}
	}
	return "", ErrUnsupportedType
}

func sniffChain(data []byte) []string {
	var chain []string
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		chain = append(chain, textextract.BaseType(m.String()))
	}
	return chain
}
