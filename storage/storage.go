package storage

import "errors"

// Resource kinds recognised by the blob store
const (
	KindVideo      = "video"
	KindAttachment = "attachment"
	KindImage      = "image"
)

// ErrUploadFailed is returned when the backing store rejects an upload.
var ErrUploadFailed = errors.New("file upload failed")

// UploadOptions describe where and under what identity a blob is stored.
type UploadOptions struct {
	Folder      string
	SuggestedID string // optional; a fresh id is generated when empty
	Filename    string // original filename, used for the extension
	Kind        string
}

// UploadResult is the durable descriptor returned for a stored blob.
type UploadResult struct {
	URL             string `json:"url"`
	StorageID       string `json:"storage_id"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// BlobStore accepts file bytes and returns a durable URL plus a storage
// id usable for later deletion. Delete is best-effort.
type BlobStore interface {
	Upload(data []byte, opts UploadOptions) (*UploadResult, error)
	Delete(storageID string, kind string) error
}

// Store is the configured blob store instance, set at startup.
var Store BlobStore
