// Package snapshot persists and re-renders collected metadata snapshots.
package snapshot

import (
	"context"

	"tabcli/internal/codec"
	"tabcli/internal/meta"
	"tabcli/internal/store"
)

// WriteResult reports the outcome of writing a snapshot to one target.
type WriteResult struct {
	Target   string
	Location string
	Err      error
}

// Failed reports whether the write to this target failed.
func (r WriteResult) Failed() bool { return r.Err != nil }

// Writer persists snapshots to one or more storage targets.
type Writer struct {
	logger meta.Logger
}

// NewWriter creates a Writer.
func NewWriter(logger meta.Logger) *Writer {
	return &Writer{logger: logger}
}

// Write serializes the snapshot once and writes it to every target
// independently. A failure on one target never blocks or rolls back the
// others; the per-target outcome is reported in the result slice. The
// returned filename follows the <site>_<YYYYMMDD>_<HHMMSS>.<ext> convention.
func (w *Writer) Write(ctx context.Context, s *meta.Snapshot, targets []store.Store, enc codec.Encoding) (string, []WriteResult) {
	filename := codec.Filename(s.Server.Site, s.CollectedAt, enc)

	data, err := codec.Encode(s, enc)
	if err != nil {
		// Encoding failure hits every target equally.
		results := make([]WriteResult, len(targets))
		for i, t := range targets {
			results[i] = WriteResult{Target: t.Description(), Err: err}
		}
		return filename, results
	}

	results := make([]WriteResult, 0, len(targets))
	for _, t := range targets {
		location, err := t.Put(ctx, filename, data)
		if err != nil {
			w.logger.Error("snapshot write failed", "target", t.Description(), "error", err)
			results = append(results, WriteResult{Target: t.Description(), Err: err})
			continue
		}
		w.logger.Info("snapshot written", "target", t.Description(), "location", location)
		results = append(results, WriteResult{Target: t.Description(), Location: location})
	}
	return filename, results
}

// AllFailed reports whether every target write failed. A run where at least
// one target succeeded counts as a (partial) success.
func AllFailed(results []WriteResult) bool {
	for _, r := range results {
		if !r.Failed() {
			return false
		}
	}
	return len(results) > 0
}
