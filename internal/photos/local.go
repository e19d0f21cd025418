package photos

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalStore keeps photos under a directory on disk
type LocalStore struct {
	baseDir string
}

// NewLocalStore creates a store rooted at baseDir
func NewLocalStore(baseDir string) *LocalStore {
	return &LocalStore{baseDir: baseDir}
}

// Save writes the photo and returns its key. A partially written file is
// removed when the upload fails.
func (s *LocalStore) Save(ctx context.Context, sessionID string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	up, err := prepare(sessionID, r)
	if err != nil {
		return "", "", err
	}

	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(up.key))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", "", fmt.Errorf("mkdir: %w", err)
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return "", "", fmt.Errorf("open file: %w", err)
	}

	if _, err := io.Copy(f, up.body); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", "", fmt.Errorf("write photo: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", "", fmt.Errorf("close photo: %w", err)
	}
	return up.key, up.mimeType, nil
}

// Open opens a stored photo
func (s *LocalStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, err := CleanKey(key)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.baseDir, filepath.FromSlash(clean)))
}

var _ Store = (*LocalStore)(nil)
