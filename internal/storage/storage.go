package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"studyreels/internal/config"
)

var (
	ErrWriteFailed  = errors.New("storage write failed")
	ErrDeleteFailed = errors.New("storage delete failed")
)

// BlobStore is the minimal contract the upload pipeline depends on. Delete
// must succeed for keys that are already gone.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

func New(ctx context.Context, cfg config.StorageConfig) (BlobStore, error) {
	switch cfg.Driver {
	case "minio":
		return NewMinIOStore(ctx, cfg)
	case "s3", "":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// publicURL joins a base URL and an object key, escaping each key segment.
func publicURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}
