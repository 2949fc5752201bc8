// Package filestore keeps the raw bytes of uploaded statements so they
// can be reprocessed later.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"statement-ingest/pkg/config"

	"go.uber.org/zap"
)

var ErrNotFound = errors.New("stored file not found")

type Store interface {
	// Save writes r under key and returns the number of bytes written.
	Save(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return NewLocal(cfg.UploadDir, logger)
	case "gcs":
		return NewGCS(ctx, cfg.GCSBucket, logger)
	case "azblob":
		return NewAzureBlob(ctx, cfg.AzureBlobURL, cfg.AzureBlobName, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
