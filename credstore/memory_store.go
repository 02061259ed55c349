package credstore

import (
	"sync"

	"github.com/jrsteele09/go-admin-client/internal/errors"
	"golang.org/x/oauth2"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore is an in-memory Store for tests and sessions that must not touch disk.
type MemoryStore struct {
	mu     sync.RWMutex
	record map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (*oauth2.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.record[AccessTokenKey] == "" {
		return nil, &StoreError{Operation: "load", Location: "memory", Err: errors.ErrNotFound}
	}
	return fromRecord(s.record), nil
}

func (s *MemoryStore) Save(tok *oauth2.Token) error {
	if tok == nil || tok.AccessToken == "" {
		return &StoreError{Operation: "save", Location: "memory", Err: errors.ErrInvalidToken}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = toRecord(tok)
	return nil
}

func (s *MemoryStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = nil
	return nil
}

// Get returns a single stored key, mirroring how a browser reads one storage item.
func (s *MemoryStore) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.record[key]
	return v, ok
}
