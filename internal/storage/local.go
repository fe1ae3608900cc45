package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileStore persists uploaded material attachments.
type FileStore interface {
	// Save writes the content under name and returns the public URL path.
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	// Remove deletes a previously saved file. Removing a missing file is
	// not an error.
	Remove(ctx context.Context, name string) error
}

// LocalStore stores files on the local filesystem under a base directory.
type LocalStore struct {
	baseDir string
}

func NewLocalStore(baseDir string) (*LocalStore, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("storage base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStore{baseDir: baseDir}, nil
}

func (s *LocalStore) Save(ctx context.Context, name string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Reject path traversal in caller-supplied names.
	if filepath.Base(name) != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}

	dst := filepath.Join(s.baseDir, name)

	// Write to a temp file first so a failed copy never leaves a partial
	// file under the final name.
	tmp, err := os.CreateTemp(s.baseDir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("failed to move file into place: %w", err)
	}

	return "/uploads/" + name, nil
}

func (s *LocalStore) Remove(_ context.Context, name string) error {
	if filepath.Base(name) != name {
		return fmt.Errorf("invalid file name %q", name)
	}

	err := os.Remove(filepath.Join(s.baseDir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}
