package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface, useful
// for testing. Safe for concurrent use.
type MemoryStore struct {
	name    string
	objects map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates a new in-memory store with the given name.
func NewMemoryStore(name string) *MemoryStore {
	return &MemoryStore{
		name:    name,
		objects: make(map[string][]byte),
	}
}

func (s *MemoryStore) Put(_ context.Context, name string, data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[name] = append([]byte{}, data...)
	return fmt.Sprintf("memory://%s/%s", s.name, name), nil
}

func (s *MemoryStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return append([]byte{}, data...), nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Description() string {
	return fmt.Sprintf("memory:%s", s.name)
}

// Compile-time check that MemoryStore implements the Store interface
var _ Store = (*MemoryStore)(nil)
