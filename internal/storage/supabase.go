package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sanath0106/mockview/internal/interview"
)

// SupabaseStore persists interview results as JSON objects in a Supabase
// storage bucket, keyed by session id.
type SupabaseStore struct {
	BaseURL    string
	ServiceKey string
	Bucket     string
	Client     *http.Client
}

// NewSupabaseStore constructs a new Supabase-backed feedback store.
func NewSupabaseStore(baseURL, serviceKey, bucket string) *SupabaseStore {
	if bucket == "" {
		bucket = "interview-results"
	}
	return &SupabaseStore{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		ServiceKey: serviceKey,
		Bucket:     bucket,
		Client:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Put upserts the result object; completing the same session twice must not
// fail on a pre-existing object.
func (s *SupabaseStore) Put(ctx context.Context, key string, result *interview.Result) error {
	if s.BaseURL == "" || s.ServiceKey == "" {
		return fmt.Errorf("missing Supabase configuration: SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY required")
	}

	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/storage/v1/object/%s/%s.json", s.BaseURL, s.Bucket, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.ServiceKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-upsert", "true")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload to Supabase: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("upload failed with status %d", resp.StatusCode)
	}
	return nil
}
