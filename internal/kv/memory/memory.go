package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gofinances/internal/kv"
)

var _ kv.Store = (*Store)(nil)

type Store struct {
	mu   sync.Mutex
	data map[string]string
}

func New() *Store {
	return &Store{data: make(map[string]string)}
}

// NewFromFile seeds the store from a JSON object of key/value strings. A
// missing file yields an empty store.
func NewFromFile(path string) (*Store, error) {
	s := New()
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", filepath.Base(path), err)
	}
	if s.data == nil {
		s.data = make(map[string]string)
	}
	return s, nil
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}
