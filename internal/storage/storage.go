package storage

import (
	"fmt"
	"io/fs"
	"os"
)

// Storage confines every directory the rename engine may touch to a
// single configured root. Client-supplied paths are resolved against the
// root and rejected if they escape it.
type Storage struct {
	validator *PathValidator
}

func New(root string) (*Storage, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Storage{validator: validator}, nil
}

func (s *Storage) RootAbs() string {
	return s.validator.RootAbs()
}

func (s *Storage) Resolve(clientPath string) (string, error) {
	return s.validator.ResolvePath(clientPath)
}

func (s *Storage) Stat(clientPath string) (fs.FileInfo, error) {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return nil, err
	}

	return os.Stat(resolved)
}

func (s *Storage) ReadDir(clientPath string) ([]fs.DirEntry, error) {
	resolved, err := s.Resolve(clientPath)
	if err != nil {
		return nil, err
	}

	return os.ReadDir(resolved)
}
