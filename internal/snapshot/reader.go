package snapshot

import (
	"context"
	"errors"
	"fmt"

	"tabcli/internal/codec"
	"tabcli/internal/meta"
	"tabcli/internal/store"
)

// Reader loads previously written snapshots and re-renders them.
type Reader struct {
	logger meta.Logger
}

// NewReader creates a Reader.
func NewReader(logger meta.Logger) *Reader {
	return &Reader{logger: logger}
}

// Load fetches a named snapshot from the store and decodes it under the
// encoding implied by its filename extension. A missing object fails with
// meta.ErrSnapshotNotFound, undecodable bytes with meta.ErrSnapshotCorrupt.
func (r *Reader) Load(ctx context.Context, st store.Store, filename string) (*meta.Snapshot, error) {
	enc, err := codec.EncodingForFilename(filename)
	if err != nil {
		return nil, err
	}

	data, err := st.Get(ctx, filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s at %s", meta.ErrSnapshotNotFound, filename, st.Description())
		}
		return nil, fmt.Errorf("loading %s: %w", filename, err)
	}

	s, err := codec.Decode(data, enc)
	if err != nil {
		return nil, err
	}

	r.logger.Info("snapshot loaded", "file", filename, "records", len(s.Records))
	return s, nil
}

// Export renders a snapshot to the requested encoding, optionally applying a
// filter set first. Rendering goes through the same codec path as Write, so
// output is byte-identical to what a direct write would produce.
func (r *Reader) Export(s *meta.Snapshot, enc codec.Encoding, filters meta.Filters) ([]byte, error) {
	if !filters.IsZero() {
		filtered := *s
		filtered.Filters = filters
		filtered.Records = nil
		for _, rec := range s.Records {
			if filters.Match(rec) {
				filtered.Records = append(filtered.Records, rec)
			}
		}
		s = &filtered
	}
	return codec.Encode(s, enc)
}
