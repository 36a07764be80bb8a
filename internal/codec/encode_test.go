package codec

import (
	"bytes"
	"encoding/csv"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"tabcli/internal/meta"
)

func testSnapshot() *meta.Snapshot {
	return &meta.Snapshot{
		ID: "snap-1",
		Server: meta.ServerInfo{
			ServerURL:      "https://tableau.example.com",
			Site:           "sales",
			ProductVersion: "2024.1",
			APIVersion:     "3.19",
		},
		CollectedAt: time.Date(2024, 3, 10, 14, 25, 0, 0, time.UTC),
		Filters:     meta.Filters{Projects: []string{"Sales"}},
		Records: []meta.ArtifactRecord{
			{
				ID:          "wb-1",
				Kind:        meta.KindWorkbook,
				Name:        "Sales Overview",
				ProjectName: "Sales",
				OwnerName:   "amy",
				Tags:        []string{"finance", "quarterly"},
				CreatedAt:   "2024-01-02T03:04:05Z",
				UpdatedAt:   "2024-02-03T04:05:06Z",
				Extra: map[string]any{
					"description": "Q1 numbers",
					"webpage_url": nil,
					"content_url": "SalesOverview",
					"size":        float64(3),
					"show_tabs":   true,
					"views":       []any{map[string]any{"id": "v-1", "name": "Summary"}},
					"connections": []any{},
					"lineage":     nil,
				},
			},
			{
				ID:          "p-1",
				Kind:        meta.KindProject,
				Name:        "Sales",
				ProjectName: "",
				OwnerName:   "carol",
				Tags:        []string{},
				Extra: map[string]any{
					"description":         nil,
					"parent_id":           nil,
					"content_permissions": "ManagedByOwner",
				},
			},
		},
	}
}

func TestEncode_JSONRoundTrip(t *testing.T) {
	original := testSnapshot()

	for _, enc := range []Encoding{JSON, JSONGz} {
		t.Run(string(enc), func(t *testing.T) {
			data, err := Encode(original, enc)
			if err != nil {
				t.Fatalf("Encode() error = %v", err)
			}

			got, err := Decode(data, enc)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(original, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncode_JSONDeterministic(t *testing.T) {
	s := testSnapshot()

	first, err := Encode(s, JSON)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	second, err := Encode(s, JSON)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("Encode() produced different bytes for the same snapshot")
	}
}

func TestEncode_CSV(t *testing.T) {
	data, err := Encode(testSnapshot(), CSV)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("parsing csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3 (header + 2 records)", len(rows))
	}

	wantHeader := []string{
		"id", "kind", "name", "project_name", "owner_name", "tags", "created_at", "updated_at",
		"connections", "content_permissions", "content_url", "description",
		"lineage", "parent_id", "show_tabs", "size", "views", "webpage_url",
	}
	if diff := cmp.Diff(wantHeader, rows[0]); diff != "" {
		t.Fatalf("header mismatch (-want +got):\n%s", diff)
	}

	col := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		col[name] = i
	}

	wb := rows[1]
	if wb[col["id"]] != "wb-1" {
		t.Errorf("workbook id = %q, want %q", wb[col["id"]], "wb-1")
	}
	if wb[col["tags"]] != "finance,quarterly" {
		t.Errorf("workbook tags = %q, want %q", wb[col["tags"]], "finance,quarterly")
	}
	if wb[col["description"]] != "Q1 numbers" {
		t.Errorf("workbook description = %q", wb[col["description"]])
	}
	if wb[col["size"]] != "3" {
		t.Errorf("workbook size = %q, want %q", wb[col["size"]], "3")
	}
	if wb[col["show_tabs"]] != "true" {
		t.Errorf("workbook show_tabs = %q, want %q", wb[col["show_tabs"]], "true")
	}
	if wb[col["views"]] != `[{"id":"v-1","name":"Summary"}]` {
		t.Errorf("workbook views = %q", wb[col["views"]])
	}
	if wb[col["connections"]] != "[]" {
		t.Errorf("workbook connections = %q, want %q", wb[col["connections"]], "[]")
	}
	if wb[col["webpage_url"]] != "" {
		t.Errorf("workbook webpage_url = %q, want empty", wb[col["webpage_url"]])
	}

	// The project record has no workbook-only keys: those cells are empty,
	// never missing.
	p := rows[2]
	if len(p) != len(rows[0]) {
		t.Fatalf("project row width = %d, want %d", len(p), len(rows[0]))
	}
	if p[col["views"]] != "" {
		t.Errorf("project views = %q, want empty", p[col["views"]])
	}
	if p[col["content_permissions"]] != "ManagedByOwner" {
		t.Errorf("project content_permissions = %q", p[col["content_permissions"]])
	}
}

func TestEncode_XLSX(t *testing.T) {
	data, err := Encode(testSnapshot(), XLSX)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("reading sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3", len(rows))
	}
	if rows[0][0] != "id" {
		t.Errorf("header[0] = %q, want %q", rows[0][0], "id")
	}
	if rows[1][0] != "wb-1" {
		t.Errorf("row 1 id = %q, want %q", rows[1][0], "wb-1")
	}
	if rows[2][0] != "p-1" {
		t.Errorf("row 2 id = %q, want %q", rows[2][0], "p-1")
	}
}

func TestDecode_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		enc  Encoding
	}{
		{name: "truncated json", data: []byte(`{"id": "x"`), enc: JSON},
		{name: "not gzip", data: []byte("plain text"), enc: JSONGz},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.enc)
			if !errors.Is(err, meta.ErrSnapshotCorrupt) {
				t.Errorf("Decode() error = %v, want ErrSnapshotCorrupt", err)
			}
		})
	}
}

func TestDecode_ExportOnlyFormats(t *testing.T) {
	for _, enc := range []Encoding{CSV, XLSX} {
		if _, err := Decode([]byte("anything"), enc); err == nil {
			t.Errorf("Decode(%s) expected error, got nil", enc)
		}
	}
}
