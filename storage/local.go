package storage

import (
	"os"
	"path"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore writes blobs to a directory on disk and serves them under a
// static route.
type LocalStore struct {
	BaseDir string
	BaseURL string
}

func NewLocalStore(baseDir, baseURL string) *LocalStore {
	return &LocalStore{BaseDir: baseDir, BaseURL: baseURL}
}

func (s *LocalStore) Upload(data []byte, opts UploadOptions) (*UploadResult, error) {
	id := opts.SuggestedID
	if id == "" {
		id = uuid.NewString()
	}
	name := id + filepath.Ext(opts.Filename)
	storageID := path.Join(opts.Folder, name)

	destDir := filepath.Join(s.BaseDir, opts.Folder)
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return nil, err
	}

	if err := os.WriteFile(filepath.Join(destDir, name), data, 0644); err != nil {
		return nil, err
	}

	return &UploadResult{
		URL:       s.BaseURL + "/" + storageID,
		StorageID: storageID,
	}, nil
}

func (s *LocalStore) Delete(storageID string, kind string) error {
	return os.Remove(filepath.Join(s.BaseDir, filepath.FromSlash(storageID)))
}
