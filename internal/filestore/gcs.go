package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GCS stores files as objects in a Cloud Storage bucket. Credentials come
// from Application Default Credentials.
type GCS struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
	logger *zap.Logger
}

func NewGCS(ctx context.Context, bucket string, logger *zap.Logger, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	logger.Info("Using GCS statement storage", zap.String("bucket", bucket))
	return &GCS{
		client: client,
		bucket: client.Bucket(bucket),
		name:   bucket,
		logger: logger,
	}, nil
}

func (s *GCS) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	w := s.bucket.Object(key).NewWriter(ctx)

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("copy to GCS object %s/%s: %w", s.name, key, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("finalize upload %s/%s: %w", s.name, key, err)
	}
	return n, nil
}

func (s *GCS) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := s.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read GCS object %s/%s: %w", s.name, key, err)
	}
	return rc, nil
}

func (s *GCS) Delete(ctx context.Context, key string) error {
	err := s.bucket.Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete GCS object %s/%s: %w", s.name, key, err)
	}
	return nil
}

func (s *GCS) Close() error {
	return s.client.Close()
}
