// Package store keeps uploaded templates and attachments on the local file system.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pentesthub/pentest-hub/internal/log"
)

// ErrBlobNotFound is returned when a key has no stored content.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid blob key")

// FileStore stores blobs as files below a root directory.
type FileStore struct {
	root string
}

// NewFileStore creates the root directory if needed and returns a store rooted there.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root cannot be empty")
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{root: root}, nil
}

// Put stores content under a new key of the form <uuid>_<basename>.
func (s *FileStore) Put(ctx context.Context, name string, content []byte) (string, error) {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = "upload"
	}
	key := uuid.NewString() + "_" + base
	if err := os.WriteFile(filepath.Join(s.root, key), content, 0o600); err != nil {
		return "", fmt.Errorf("failed to write blob: %w", err)
	}
	log.NewLogger(ctx).Debug("PutBlob", zap.String("key", key), zap.Int("size", len(content)))
	return key, nil
}

// Get returns the content stored under key.
func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read blob: %w", err)
	}
	return content, nil
}

// Delete removes the content stored under key. Missing keys are ignored.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	log.NewLogger(ctx).Debug("DeleteBlob", zap.String("key", key))
	return nil
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || key != filepath.Base(key) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, key), nil
}
