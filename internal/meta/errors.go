package meta

import (
	"errors"
	"fmt"
)

// ErrSnapshotNotFound is returned when a named snapshot does not exist at the
// requested storage target.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// ErrSnapshotCorrupt is returned when stored bytes cannot be parsed under the
// encoding implied by the snapshot filename.
var ErrSnapshotCorrupt = errors.New("snapshot corrupt")

// ErrLineageNotFound is returned by a source when no lineage is available for
// an artifact id.
var ErrLineageNotFound = errors.New("lineage not found")

// AuthError indicates that authentication against the server failed.
// It is fatal: the enclosing command aborts before any work begins.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

func (e *AuthError) Unwrap() error { return e.Err }

// NormalizeError indicates that a single raw artifact is missing a required
// identifying field. It is isolated at record granularity: the collector logs
// it and continues with sibling artifacts.
type NormalizeError struct {
	Kind   Kind
	Reason string
}

func (e *NormalizeError) Error() string {
	return fmt.Sprintf("cannot normalize %s artifact: %s", e.Kind, e.Reason)
}
