package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStoreUpload(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads")

	result, err := store.Upload([]byte("file contents"), UploadOptions{
		Folder:   "submissions",
		Filename: "essay.txt",
		Kind:     KindAttachment,
	})
	require.NoError(t, err)

	assert.Equal(t, "/uploads/"+result.StorageID, result.URL)
	assert.Equal(t, ".txt", filepath.Ext(result.StorageID))

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(result.StorageID)))
	require.NoError(t, err)
	assert.Equal(t, "file contents", string(data))
}

func TestLocalStoreSuggestedID(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "/uploads")

	result, err := store.Upload([]byte("x"), UploadOptions{
		Folder:      "lectures",
		SuggestedID: "lecture-42",
		Filename:    "video.mp4",
		Kind:        KindVideo,
	})
	require.NoError(t, err)
	assert.Equal(t, "lectures/lecture-42.mp4", result.StorageID)
}

func TestLocalStoreDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/uploads")

	result, err := store.Upload([]byte("x"), UploadOptions{Folder: "lectures", Filename: "v.mp4", Kind: KindVideo})
	require.NoError(t, err)

	require.NoError(t, store.Delete(result.StorageID, KindVideo))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(result.StorageID)))
	assert.True(t, os.IsNotExist(err))

	// Deleting a missing blob reports the error; callers treat it as
	// best-effort.
	assert.Error(t, store.Delete(result.StorageID, KindVideo))
}
