package memory

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store keeps blobs in a map. It is the default backend and the fake used by tests.
type Store struct {
	mu    sync.Mutex
	items map[string]string

	// FailWrites makes Set return an error, for exercising persistence failures.
	FailWrites error
}

func New() *Store {
	return &Store{items: make(map[string]string)}
}

// NewFromDir seeds the store from <key>.json files in base. Missing or
// unreadable directories yield an empty store.
func NewFromDir(base string) *Store {
	s := New()
	entries, err := os.ReadDir(base)
	if err != nil {
		return s
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(base, e.Name()))
		if err != nil {
			continue
		}
		s.items[strings.TrimSuffix(e.Name(), ".json")] = string(data)
	}
	return s
}

// Get returns the stored blob for key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

// Set replaces the blob for key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.items[key] = value
	return nil
}

// Keys returns the stored keys, for diagnostics and tests.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.items))
	for k := range s.items {
		keys = append(keys, k)
	}
	return keys
}
