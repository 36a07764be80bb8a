package testutil

import (
	"context"
	"fmt"

	"tabcli/internal/store"
)

// NewTestStore creates a new in-memory store for testing.
func NewTestStore() store.Store {
	return store.NewMemoryStore("test-store")
}

// FailingStore fails every operation. Use to verify per-target isolation.
type FailingStore struct {
	Name string
}

func (s *FailingStore) Put(context.Context, string, []byte) (string, error) {
	return "", fmt.Errorf("store %s is unavailable", s.Name)
}

func (s *FailingStore) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("store %s is unavailable", s.Name)
}

func (s *FailingStore) List(context.Context) ([]string, error) {
	return nil, fmt.Errorf("store %s is unavailable", s.Name)
}

func (s *FailingStore) Description() string {
	return "failing://" + s.Name
}

// Compile-time check
var _ store.Store = (*FailingStore)(nil)
