package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"csv-renamer/internal/model"
	"csv-renamer/internal/storage"
	"csv-renamer/pkg/apierror"
)

// DirectoryService lists directories inside the storage root so a front
// end can offer a folder picker for the rename target.
type DirectoryService struct {
	store *storage.Storage
}

func NewDirectoryService(store *storage.Storage) *DirectoryService {
	return &DirectoryService{store: store}
}

func (s *DirectoryService) List(_ context.Context, requestedPath string) (model.DirectoryListData, error) {
	resolved, err := s.store.Resolve(requestedPath)
	if err != nil {
		return model.DirectoryListData{}, err
	}

	entries, err := os.ReadDir(resolved)
	if err != nil {
		if os.IsNotExist(err) {
			return model.DirectoryListData{}, apierror.NotFound("directory not found", requestedPath)
		}
		return model.DirectoryListData{}, err
	}

	data := model.DirectoryListData{
		Path:    normalizeAPIPath(requestedPath),
		Entries: make([]model.DirEntry, 0, len(entries)),
	}

	for _, entry := range entries {
		kind := "file"
		if entry.IsDir() {
			kind = "directory"
		}

		data.Entries = append(data.Entries, model.DirEntry{
			Name: entry.Name(),
			Path: normalizeAPIPath(filepath.Join(data.Path, entry.Name())),
			Type: kind,
		})
	}

	return data, nil
}

func normalizeAPIPath(p string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(p), `\`, "/")
	if normalized == "" {
		return "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}

	cleaned := filepath.ToSlash(filepath.Clean(normalized))
	if cleaned == "." {
		return "/"
	}

	return cleaned
}
