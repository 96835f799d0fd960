// Package storage persists uploaded images and hands back the opaque
// reference strings recorded on users and pets. Callers never see paths,
// only references; serving the binaries back is a different component's
// job (the router exposes the upload dir statically for convenience).
package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore accepts an uploaded file and returns a stable reference.
type FileStore interface {
	Save(fh *multipart.FileHeader) (string, error)
}

// LocalFileStore writes uploads to a directory on disk. References are
// random uuid names with the original extension, so nothing about the
// uploader leaks into the reference.
type LocalFileStore struct {
	Dir string
}

func NewLocalFileStore(dir string) (*LocalFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalFileStore{Dir: dir}, nil
}

// Save streams the upload into the store directory and returns its
// reference. Partial files from failed writes are removed.
func (s *LocalFileStore) Save(fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	ref := uuid.NewString() + filepath.Ext(fh.Filename)
	path := filepath.Join(s.Dir, ref)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close file: %w", err)
	}
	return ref, nil
}
