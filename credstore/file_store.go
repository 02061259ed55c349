package credstore

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"golang.org/x/oauth2"
)

var _ Store = (*FileStore)(nil)

// FileStore keeps the credential pair as a JSON object in a single file readable only by its owner.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &StoreError{Operation: "load", Location: s.path, Err: errors.ErrNotFound}
	}
	if err != nil {
		return nil, &StoreError{Operation: "load", Location: s.path, Err: err}
	}

	var record map[string]string
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, &StoreError{Operation: "load", Location: s.path, Err: fmt.Errorf("failed to parse credentials file: %w", err)}
	}
	if record[AccessTokenKey] == "" {
		return nil, &StoreError{Operation: "load", Location: s.path, Err: errors.ErrNotFound}
	}
	return fromRecord(record), nil
}

func (s *FileStore) Save(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return &StoreError{Operation: "save", Location: s.path, Err: errors.ErrInvalidToken}
	}

	data, err := json.MarshalIndent(toRecord(tok), "", "  ")
	if err != nil {
		return &StoreError{Operation: "save", Location: s.path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return &StoreError{Operation: "save", Location: s.path, Err: err}
	}

	// Write to a temp file and rename over the old one so readers never see half a pair
	tempFile := s.path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0o600); err != nil {
		return &StoreError{Operation: "save", Location: s.path, Err: errors.Wrapf(err, "failed to write temp file")}
	}
	if err := os.Rename(tempFile, s.path); err != nil {
		_ = os.Remove(tempFile)
		return &StoreError{Operation: "save", Location: s.path, Err: errors.Wrapf(err, "failed to rename temp file")}
	}
	return nil
}

func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &StoreError{Operation: "delete", Location: s.path, Err: err}
	}
	return nil
}
