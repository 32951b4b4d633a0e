package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ImageStore persists uploaded report photos and returns the public URI the
// stored image is served from.
type ImageStore interface {
	Save(data []byte, ext string) (string, error)
}

// LocalImageStore writes images to a directory on disk, served by the router
// under /uploads. Filenames are random UUIDs so uploads can never collide or
// traverse paths.
type LocalImageStore struct {
	dir string
}

func NewLocalImageStore(dir string) (*LocalImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory %s: %w", dir, err)
	}
	return &LocalImageStore{dir: dir}, nil
}

func (s *LocalImageStore) Save(data []byte, ext string) (string, error) {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if ext == "" {
		ext = "jpg"
	}

	filename := fmt.Sprintf("%s.%s", uuid.New().String(), ext)
	path := filepath.Join(s.dir, filename)

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image %s: %w", path, err)
	}

	return "/uploads/" + filename, nil
}
