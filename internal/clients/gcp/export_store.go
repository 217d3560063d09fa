package gcp

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dohigg1/advisory-hub/internal/pkg/logger"
)

type Config struct {
	ExportBucket string `env:"EXPORT_GCS_BUCKET"`
	Credentials  string `env:"GOOGLE_APPLICATION_CREDENTIALS_JSON"`
}

// ExportStore persists generated exports outside the database.
type ExportStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Close() error
}

type exportStore struct {
	log    *logger.Logger
	client *storage.Client
	bucket string
}

func NewExportStore(ctx context.Context, log *logger.Logger, cfg Config) (ExportStore, error) {
	bucket := strings.TrimSpace(cfg.ExportBucket)
	if bucket == "" {
		return nil, fmt.Errorf("missing EXPORT_GCS_BUCKET")
	}
	opts := append(ClientOptions(cfg.Credentials), option.WithScopes(storage.ScopeReadWrite))
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &exportStore{
		log:    log.With("client", "GCSExportStore"),
		client: client,
		bucket: bucket,
	}, nil
}

// Upload writes r to key and returns the gs:// URI of the object.
func (s *exportStore) Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}
	s.log.Info("export uploaded", "bucket", s.bucket, "key", key)
	return fmt.Sprintf("gs://%s/%s", s.bucket, key), nil
}

func (s *exportStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
