package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMemoryStore_PutAndGet(t *testing.T) {
	s := NewMemoryStore("test")
	ctx := context.Background()

	location, err := s.Put(ctx, "snap.json", []byte("data"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if location != "memory://test/snap.json" {
		t.Errorf("Put() location = %q, want %q", location, "memory://test/snap.json")
	}

	got, err := s.Get(ctx, "snap.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "data" {
		t.Errorf("Get() = %q, want %q", got, "data")
	}
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore("test")

	_, err := s.Get(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore("test")
	ctx := context.Background()

	if _, err := s.Put(ctx, "snap.json", []byte("data")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	first, err := s.Get(ctx, "snap.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	first[0] = 'X'

	second, err := s.Get(ctx, "snap.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(second) != "data" {
		t.Errorf("Get() after mutation = %q, want %q", second, "data")
	}
}

func TestMemoryStore_ListSorted(t *testing.T) {
	s := NewMemoryStore("test")
	ctx := context.Background()

	for _, name := range []string{"b.json", "a.json"} {
		if _, err := s.Put(ctx, name, []byte("x")); err != nil {
			t.Fatalf("Put(%q) error = %v", name, err)
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a.json", "b.json"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}
