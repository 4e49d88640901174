package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore keeps media files on disk under a base directory. Meant for
// development; production deployments use the S3 store.
type LocalStore struct {
	baseDir string
	baseURL string
}

// NewLocalStore ensures the base directory exists and returns a handle.
func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if baseDir == "" {
		baseDir = "./media"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put copies the reader into a file under the base directory.
func (s *LocalStore) Put(ctx context.Context, key, contentType string, r io.Reader, size int64) (string, error) {
	path := s.resolve(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("prepare media directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer file.Close() //nolint:errcheck
	if _, err := io.Copy(file, r); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return s.URL(key), nil
}

// Delete removes a stored file if present.
func (s *LocalStore) Delete(ctx context.Context, key string) error {
	if err := os.Remove(s.resolve(key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete media file: %w", err)
	}
	return nil
}

// URL returns the public URL for a stored key.
func (s *LocalStore) URL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(key, "/")
}

// Path exposes the underlying absolute path (useful for serving and debugging).
func (s *LocalStore) Path(key string) string {
	return s.resolve(key)
}

// Dir returns the base directory files are stored under.
func (s *LocalStore) Dir() string {
	return s.baseDir
}

func (s *LocalStore) resolve(key string) string {
	if filepath.IsAbs(key) {
		return key
	}
	return filepath.Join(s.baseDir, key)
}
