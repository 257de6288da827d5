package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists attachment payloads. The API only ever records the
// stored name; resolving it back to bytes goes through this interface so
// tests and alternative backends can swap the implementation.
type FileStore interface {
	// Save writes the payload and returns the stored name.
	Save(src io.Reader, originalName string) (string, error)

	// Path resolves a stored name to a local filesystem path.
	Path(storedName string) string

	// Remove deletes a stored payload.
	Remove(storedName string) error
}

// LocalStore is a FileStore backed by a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save writes the payload under a random name, keeping the original
// extension so served files get a sensible content type.
func (s *LocalStore) Save(src io.Reader, originalName string) (string, error) {
	name := uuid.New().String() + filepath.Ext(originalName)

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return name, nil
}

// Path resolves a stored name to its path on disk.
func (s *LocalStore) Path(storedName string) string {
	return filepath.Join(s.dir, storedName)
}

// Remove deletes a stored payload.
func (s *LocalStore) Remove(storedName string) error {
	return os.Remove(filepath.Join(s.dir, storedName))
}
