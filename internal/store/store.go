// Package store provides snapshot blob storage backends. A Store holds whole
// snapshot documents addressed by filename; there is no partial or streaming
// access.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no object exists under the given name.
var ErrNotFound = errors.New("object not found")

// Store is a snapshot storage backend.
type Store interface {
	// Put stores data under the given name and returns the written location
	// (a filesystem path or object URL). Overwrites an existing object.
	Put(ctx context.Context, name string, data []byte) (string, error)

	// Get retrieves the object stored under name.
	// Returns ErrNotFound when no such object exists.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns the names of all stored objects, sorted.
	List(ctx context.Context) ([]string, error)

	// Description identifies the target for log and error messages.
	Description() string
}
