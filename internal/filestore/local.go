package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Local stores files in a directory on disk.
type Local struct {
	dir    string
	create func(path string) (io.WriteCloser, error)
	logger *zap.Logger
}

func createFile(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func NewLocal(dir string, logger *zap.Logger) (*Local, error) {
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Local{dir: dir, create: createFile, logger: logger}, nil
}

// path keeps keys inside the upload directory.
func (s *Local) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *Local) Save(_ context.Context, key string, r io.Reader) (int64, error) {
	path := s.path(key)
	dst, err := s.create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}

	n, err := io.Copy(dst, r)
	if err != nil {
		dst.Close()
		os.Remove(path)
		return 0, fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to flush file: %w", err)
	}

	s.logger.Debug("Stored statement file", zap.String("path", path), zap.Int64("size", n))
	return n, nil
}

func (s *Local) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *Local) Close() error {
	return nil
}
