package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"LiquiMind/internal/model"
)

// FileStore keeps the cache record in a JSON file.
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load returns nil without error if the file doesn't exist.
func (f *FileStore) Load(_ context.Context) (*model.CachedCourseList, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var list model.CachedCourseList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// Save replaces the file atomically.
func (f *FileStore) Save(_ context.Context, list *model.CachedCourseList) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o755); err != nil {
		return err
	}
	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}
