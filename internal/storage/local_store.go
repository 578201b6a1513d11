package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalStore keeps objects on the local filesystem for development and tests.
// Its "signed" URLs are plain file URLs with no expiry enforcement.
type LocalStore struct {
	baseDir string
	baseURL string
}

func NewLocalStore(baseDir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStore) SignUpload(ctx context.Context, path string, expires time.Duration) (*SignedUpload, error) {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &SignedUpload{URL: s.urlFor(path), Path: path}, nil
}

func (s *LocalStore) SignDownload(ctx context.Context, path string, expires time.Duration) (string, error) {
	return s.urlFor(path), nil
}

func (s *LocalStore) Delete(ctx context.Context, path string) error {
	full := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

func (s *LocalStore) urlFor(path string) string {
	return s.baseURL + "/" + url.PathEscape(path)
}
