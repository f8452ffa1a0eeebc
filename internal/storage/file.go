package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sanath0106/mockview/internal/interview"
)

// FileStore writes one JSON file per interview under a results directory.
// Used when Supabase is not configured, so local development still gets a
// durable feedback handoff.
type FileStore struct {
	Dir string
}

func NewFileStore(dir string) *FileStore {
	if dir == "" {
		dir = "results"
	}
	return &FileStore{Dir: dir}
}

func (s *FileStore) Put(_ context.Context, key string, result *interview.Result) error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", s.Dir, err)
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	path := filepath.Join(s.Dir, fmt.Sprintf("interview_%s.json", key))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// Get loads a previously stored result; the feedback view reads it back.
func (s *FileStore) Get(key string) (*interview.Result, error) {
	path := filepath.Join(s.Dir, fmt.Sprintf("interview_%s.json", key))
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var result interview.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &result, nil
}
