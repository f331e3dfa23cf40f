// Package filestore keeps uploaded images on the local filesystem.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pscheid92/photocontest/internal/domain"
)

// Store implements domain.UploadStore. Files are named <uuid>.<ext> inside dir.
type Store struct {
	dir string
}

// New creates dir if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory uploads are written to.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) Save(ctx context.Context, ext string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := uuid.NewString() + "." + ext
	f, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("%w: failed to create upload: %w", domain.ErrStorage, err)
	}
	tmp := f.Name()

	_, err = io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, filepath.Join(s.dir, name))
	}
	if err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("%w: failed to write upload: %w", domain.ErrStorage, err)
	}
	return name, nil
}

// Remove deletes a stored upload. Removing a missing file is not an error.
func (s *Store) Remove(_ context.Context, name string) error {
	if name == "" || filepath.Base(name) != name {
		return fmt.Errorf("%w: invalid upload name %q", domain.ErrMalformedInput, name)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: failed to remove upload: %w", domain.ErrStorage, err)
	}
	return nil
}
