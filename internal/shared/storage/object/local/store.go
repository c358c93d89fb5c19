package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"triage-backend/internal/shared/storage/object"
)

// Store reads reference files from a directory.
type Store struct {
	baseDir string
}

// New returns a Store rooted at baseDir.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// Open opens storageKey below the base directory. Keys that escape it are rejected.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(storageKey) {
		return nil, fmt.Errorf("invalid storage key %q", storageKey)
	}

	f, err := os.Open(s.Location(storageKey))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("open %s: %w", s.Location(storageKey), object.ErrNotFound)
	case err != nil:
		return nil, err
	}
	return f, nil
}

// Location joins storageKey onto the base directory.
func (s *Store) Location(storageKey string) string {
	return filepath.Join(s.baseDir, filepath.Clean(storageKey))
}

var _ object.ObjectStore = (*Store)(nil)
