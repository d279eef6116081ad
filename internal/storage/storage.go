package storage

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ObjectStore holds instrument exports and exported result curves.
type ObjectStore interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GenerateDownloadURL(ctx context.Context, key string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Delete(ctx context.Context, key string) error
}

// Content types accepted by the store.
const (
	ContentTypeCSV  = "text/csv"
	ContentTypeJSON = "application/json"
	ContentTypeHTML = "text/html"
)

// ErrInvalidContentType is returned for uploads of unsupported files.
var ErrInvalidContentType = errors.New("invalid content type")

const (
	uploadExpiry   = 15 * time.Minute
	downloadExpiry = 24 * time.Hour
)

// Backend names.
const (
	BackendS3    = "s3"
	BackendMinio = "minio"
)

// Config holds configuration for the object store.
type Config struct {
	Backend   string
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// New returns the backend named in cfg. An empty backend selects S3.
func New(ctx context.Context, cfg Config) (ObjectStore, error) {
	switch cfg.Backend {
	case "", BackendS3:
		return NewS3Store(ctx, cfg)
	case BackendMinio:
		return NewMinioStore(ctx, cfg)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// UploadURLExpiry is the lifetime of presigned upload URLs.
func UploadURLExpiry() time.Duration { return uploadExpiry }

// validateContentType validates that the content type is supported
func validateContentType(contentType string) error {
	validTypes := map[string]bool{
		ContentTypeCSV:  true,
		ContentTypeJSON: true,
		ContentTypeHTML: true,
	}
	if !validTypes[contentType] {
		return fmt.Errorf("%w: %s. Supported types: text/csv, application/json, text/html", ErrInvalidContentType, contentType)
	}
	return nil
}
