package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/DjordjeVuckovic/content-query/internal/schema"
	"github.com/DjordjeVuckovic/content-query/internal/storage"
)

// Storer writes records to the remote collection of a content type.
type Storer struct {
	client *Client
}

func NewStorer(client *Client) *Storer {
	return &Storer{client: client}
}

func resourcePath(ct *schema.ContentType, id string) string {
	return strings.TrimRight(ct.RemoteCollection(), "/") + "/" + url.PathEscape(id)
}

func remotePayload(ct *schema.ContentType, values storage.Row) map[string]any {
	payload := make(map[string]any, len(values))
	for k, v := range values {
		if k == "id" || k == schema.RemoteIDColumn {
			continue
		}
		payload[ct.RemoteName(k)] = v
	}
	return payload
}

func (s *Storer) Insert(ctx context.Context, ct *schema.ContentType, values storage.Row) (string, error) {
	path := ct.RemoteCollection()
	resp, err := s.client.Do(ctx, http.MethodPost, path, nil, remotePayload(ct, values))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusCreated {
		return "", &storage.RemoteStatusError{Method: http.MethodPost, URI: path, Status: resp.StatusCode}
	}

	var created struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(resp.Envelope.Data, &created); err != nil {
		return "", fmt.Errorf("failed to read id of created %s: %w", ct.Slug, err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("remote did not return an id for created %s", ct.Slug)
	}
	return created.ID.String(), nil
}

func (s *Storer) Update(ctx context.Context, ct *schema.ContentType, id string, values storage.Row) error {
	if _, err := s.Find(ctx, ct, id); err != nil {
		return err
	}

	path := resourcePath(ct, id)
	resp, err := s.client.Do(ctx, http.MethodPut, path, nil, remotePayload(ct, values))
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &storage.RemoteStatusError{Method: http.MethodPut, URI: path, Status: resp.StatusCode}
	}
	return nil
}

func (s *Storer) Delete(ctx context.Context, ct *schema.ContentType, id string) error {
	if _, err := s.Find(ctx, ct, id); err != nil {
		return err
	}

	path := resourcePath(ct, id)
	resp, err := s.client.Do(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	default:
		return &storage.RemoteStatusError{Method: http.MethodDelete, URI: path, Status: resp.StatusCode}
	}
}

func (s *Storer) Find(ctx context.Context, ct *schema.ContentType, id string) (storage.Row, error) {
	path := resourcePath(ct, id)
	resp, err := s.client.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	default:
		return nil, &storage.RemoteStatusError{Method: http.MethodGet, URI: path, Status: resp.StatusCode}
	}

	record, err := decodeObject(resp.Envelope.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s %s: %w", ct.Slug, id, err)
	}
	if len(record) == 0 {
		return nil, fmt.Errorf("%s %s: %w", ct.Slug, id, storage.ErrRecordNotFound)
	}
	return localRow(ct, record), nil
}

var _ storage.Storer = (*Storer)(nil)
