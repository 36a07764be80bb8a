package meta

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{input: "workbook", want: KindWorkbook},
		{input: "workbooks", want: KindWorkbook},
		{input: "datasources", want: KindDatasource},
		{input: "project", want: KindProject},
		{input: "flows", want: KindFlow},
		{input: "view", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseKind(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseKind(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFilters_Match(t *testing.T) {
	record := ArtifactRecord{
		ID:          "wb-1",
		Kind:        KindWorkbook,
		Name:        "Sales Overview",
		ProjectName: "Sales",
		OwnerName:   "amy",
		Tags:        []string{"finance", "quarterly"},
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{name: "empty filters match everything", filters: Filters{}, want: true},
		{name: "project match", filters: Filters{Projects: []string{"Sales"}}, want: true},
		{name: "project mismatch", filters: Filters{Projects: []string{"Marketing"}}, want: false},
		{
			name:    "values within a category are a disjunction",
			filters: Filters{Projects: []string{"Marketing", "Sales"}},
			want:    true,
		},
		{
			name:    "categories combine as a conjunction",
			filters: Filters{Projects: []string{"Sales"}, Owners: []string{"bob"}},
			want:    false,
		},
		{
			name:    "all categories matching",
			filters: Filters{Projects: []string{"Sales"}, Owners: []string{"amy"}, Tags: []string{"finance"}},
			want:    true,
		},
		{name: "tag overlap suffices", filters: Filters{Tags: []string{"finance", "hr"}}, want: true},
		{name: "no tag overlap", filters: Filters{Tags: []string{"hr"}}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filters.Match(record); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshot_Counts(t *testing.T) {
	s := &Snapshot{Records: []ArtifactRecord{
		{ID: "1", Kind: KindWorkbook},
		{ID: "2", Kind: KindWorkbook},
		{ID: "3", Kind: KindProject},
	}}

	counts := s.Counts()
	if counts[KindWorkbook] != 2 {
		t.Errorf("Counts()[workbook] = %d, want 2", counts[KindWorkbook])
	}
	if counts[KindProject] != 1 {
		t.Errorf("Counts()[project] = %d, want 1", counts[KindProject])
	}
	if counts[KindFlow] != 0 {
		t.Errorf("Counts()[flow] = %d, want 0", counts[KindFlow])
	}
}
