package docstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store used for local runs and tests. Apply
// holds the write lock for the duration of the mutate call, so mutations on
// one id are serialised exactly like the remote adapters' transactions.
type MemoryStore struct {
	mu        sync.RWMutex
	documents map[string][]byte
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: make(map[string][]byte)}
}

// Get returns a copy of the document body stored under id.
func (s *MemoryStore) Get(_ context.Context, id string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	body, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), body...), nil
}

// Create stores a new document, refusing to overwrite an existing one.
func (s *MemoryStore) Create(_ context.Context, id string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.documents[id]; ok {
		return ErrExists
	}
	s.documents[id] = append([]byte(nil), body...)
	return nil
}

// Apply runs mutate against the committed body and replaces it atomically.
func (s *MemoryStore) Apply(_ context.Context, id string, mutate Mutate) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.documents[id]
	if !ok {
		return nil, ErrNotFound
	}

	next, err := mutate(append([]byte(nil), current...))
	if err != nil {
		return nil, err
	}
	s.documents[id] = append([]byte(nil), next...)
	return append([]byte(nil), next...), nil
}

// Close releases resources held by the store. No-op for the in-memory
// implementation.
func (s *MemoryStore) Close() error {
	return nil
}
