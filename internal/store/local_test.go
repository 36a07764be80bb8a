package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLocalStore_PutAndGet(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	ctx := context.Background()
	data := []byte(`{"id":"snap-1"}`)

	location, err := s.Put(ctx, "default_20240310_142500.json", data)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if filepath.Base(location) != "default_20240310_142500.json" {
		t.Errorf("Put() location = %q, want basename %q", location, "default_20240310_142500.json")
	}

	got, err := s.Get(ctx, "default_20240310_142500.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if diff := cmp.Diff(data, got); diff != "" {
		t.Errorf("Get() mismatch (-want +got):\n%s", diff)
	}
}

func TestLocalStore_PutOverwrites(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	ctx := context.Background()
	if _, err := s.Put(ctx, "snap.json", []byte("old")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := s.Put(ctx, "snap.json", []byte("new")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := s.Get(ctx, "snap.json")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if string(got) != "new" {
		t.Errorf("Get() = %q, want %q", got, "new")
	}
}

func TestLocalStore_PutLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewLocalStore(dir)
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	if _, err := s.Put(context.Background(), "snap.json", []byte("data")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestLocalStore_GetNotFound(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	_, err = s.Get(context.Background(), "missing.json")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestLocalStore_ListSorted(t *testing.T) {
	s, err := NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore() error = %v", err)
	}

	ctx := context.Background()
	for _, name := range []string{"b.json", "a.json", "c.json"} {
		if _, err := s.Put(ctx, name, []byte("x")); err != nil {
			t.Fatalf("Put(%q) error = %v", name, err)
		}
	}

	names, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if diff := cmp.Diff([]string{"a.json", "b.json", "c.json"}, names); diff != "" {
		t.Errorf("List() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewLocalStore_RequiresDir(t *testing.T) {
	if _, err := NewLocalStore(""); err == nil {
		t.Error("NewLocalStore(\"\") expected error, got nil")
	}
}
