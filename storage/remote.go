package storage

import (
	"bytes"
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// RemoteStore uploads blobs to an external HTTP storage service.
type RemoteStore struct {
	client *resty.Client
}

func NewRemoteStore(apiURL, apiKey string) *RemoteStore {
	client := resty.New().
		SetBaseURL(apiURL).
		SetHeader("Authorization", "Bearer "+apiKey)
	return &RemoteStore{client: client}
}

func (s *RemoteStore) Upload(data []byte, opts UploadOptions) (*UploadResult, error) {
	id := opts.SuggestedID
	if id == "" {
		id = uuid.NewString()
	}

	var result UploadResult
	resp, err := s.client.R().
		SetFileReader("file", opts.Filename, bytes.NewReader(data)).
		SetFormData(map[string]string{
			"folder": opts.Folder,
			"id":     id,
			"kind":   opts.Kind,
		}).
		SetResult(&result).
		Post("/objects")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: storage service returned %d", ErrUploadFailed, resp.StatusCode())
	}

	return &result, nil
}

func (s *RemoteStore) Delete(storageID string, kind string) error {
	resp, err := s.client.R().
		SetQueryParam("kind", kind).
		Delete("/objects/" + storageID)
	if err != nil {
		return err
	}
	if resp.IsError() {
		return fmt.Errorf("storage service returned %d", resp.StatusCode())
	}
	return nil
}
