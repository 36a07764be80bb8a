package snapshot_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tabcli/internal/codec"
	"tabcli/internal/meta"
	"tabcli/internal/snapshot"
	"tabcli/internal/store"
)

func TestReader_Load_RoundTrip(t *testing.T) {
	ctx := context.Background()
	original := testSnapshot()
	w := snapshot.NewWriter(meta.NewNopLogger())
	r := snapshot.NewReader(meta.NewNopLogger())

	for _, enc := range []codec.Encoding{codec.JSON, codec.JSONGz} {
		t.Run(string(enc), func(t *testing.T) {
			st := store.NewMemoryStore("test")
			filename, results := w.Write(ctx, original, []store.Store{st}, enc)
			if snapshot.AllFailed(results) {
				t.Fatalf("write failed: %v", results[0].Err)
			}

			got, err := r.Load(ctx, st, filename)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if diff := cmp.Diff(original, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReader_Load_NotFound(t *testing.T) {
	r := snapshot.NewReader(meta.NewNopLogger())
	st := store.NewMemoryStore("test")

	_, err := r.Load(context.Background(), st, "missing_20240101_000000.json")
	if !errors.Is(err, meta.ErrSnapshotNotFound) {
		t.Errorf("Load() error = %v, want ErrSnapshotNotFound", err)
	}
}

func TestReader_Load_Corrupt(t *testing.T) {
	ctx := context.Background()
	r := snapshot.NewReader(meta.NewNopLogger())
	st := store.NewMemoryStore("test")

	if _, err := st.Put(ctx, "bad_20240101_000000.json", []byte("{not json")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	_, err := r.Load(ctx, st, "bad_20240101_000000.json")
	if !errors.Is(err, meta.ErrSnapshotCorrupt) {
		t.Errorf("Load() error = %v, want ErrSnapshotCorrupt", err)
	}
}

func TestReader_Load_UnknownExtension(t *testing.T) {
	r := snapshot.NewReader(meta.NewNopLogger())
	st := store.NewMemoryStore("test")

	if _, err := r.Load(context.Background(), st, "snapshot.txt"); err == nil {
		t.Error("Load() expected error for unknown extension, got nil")
	}
}

func TestReader_Export_MatchesWrite(t *testing.T) {
	// Re-rendering a loaded snapshot must produce the bytes a direct write
	// would have produced.
	ctx := context.Background()
	original := testSnapshot()
	w := snapshot.NewWriter(meta.NewNopLogger())
	r := snapshot.NewReader(meta.NewNopLogger())
	st := store.NewMemoryStore("test")

	filename, results := w.Write(ctx, original, []store.Store{st}, codec.JSON)
	if snapshot.AllFailed(results) {
		t.Fatalf("write failed: %v", results[0].Err)
	}

	loaded, err := r.Load(ctx, st, filename)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	exported, err := r.Export(loaded, codec.JSON, meta.Filters{})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	written, err := st.Get(ctx, filename)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !bytes.Equal(exported, written) {
		t.Error("Export() bytes differ from the stored snapshot")
	}
}

func TestReader_Export_Filtered(t *testing.T) {
	s := testSnapshot()
	s.Records = append(s.Records, meta.ArtifactRecord{
		ID: "wb-2", Kind: meta.KindWorkbook, Name: "Campaign Tracker",
		ProjectName: "Marketing", Tags: []string{}, Extra: map[string]any{},
	})
	s.Records[0].ProjectName = "Sales"

	r := snapshot.NewReader(meta.NewNopLogger())
	data, err := r.Export(s, codec.JSON, meta.Filters{Projects: []string{"Marketing"}})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	got, err := codec.Decode(data, codec.JSON)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(got.Records) != 1 {
		t.Fatalf("len(Records) = %d, want 1", len(got.Records))
	}
	if got.Records[0].ID != "wb-2" {
		t.Errorf("Records[0].ID = %q, want %q", got.Records[0].ID, "wb-2")
	}
	if diff := cmp.Diff([]string{"Marketing"}, got.Filters.Projects); diff != "" {
		t.Errorf("Filters mismatch (-want +got):\n%s", diff)
	}

	// The source snapshot is untouched.
	if len(s.Records) != 2 {
		t.Errorf("source snapshot mutated: len(Records) = %d", len(s.Records))
	}
}
