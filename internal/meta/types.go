package meta

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// Kind identifies the type of a Tableau content artifact.
type Kind string

const (
	KindWorkbook   Kind = "workbook"
	KindDatasource Kind = "datasource"
	KindProject    Kind = "project"
	KindFlow       Kind = "flow"
)

// AllKinds returns every artifact kind in canonical collection order.
func AllKinds() []Kind {
	return []Kind{KindWorkbook, KindDatasource, KindProject, KindFlow}
}

// ParseKind converts a user-supplied string to a Kind.
// Accepts the plural forms used on the CLI ("workbooks", "datasources", ...).
func ParseKind(s string) (Kind, error) {
	switch s {
	case "workbook", "workbooks":
		return KindWorkbook, nil
	case "datasource", "datasources":
		return KindDatasource, nil
	case "project", "projects":
		return KindProject, nil
	case "flow", "flows":
		return KindFlow, nil
	}
	return "", fmt.Errorf("unknown artifact kind: %q", s)
}

// RawArtifact is a loosely typed artifact as returned by the artifact source.
// Values carry the types produced by JSON decoding (string, float64, bool,
// []any, map[string]any, nil).
type RawArtifact map[string]any

// ArtifactRecord is the uniform, normalized shape of one artifact.
// Records are immutable after normalization.
type ArtifactRecord struct {
	ID          string         `json:"id"`
	Kind        Kind           `json:"kind"`
	Name        string         `json:"name"`
	ProjectName string         `json:"project_name"`
	OwnerName   string         `json:"owner_name"`
	Tags        []string       `json:"tags"`
	CreatedAt   string         `json:"created_at"`
	UpdatedAt   string         `json:"updated_at"`
	Extra       map[string]any `json:"extra"`
}

// Filters restricts a collection or export to matching artifacts.
// Categories combine as a conjunction; values within a category as a
// disjunction. An empty category matches everything.
type Filters struct {
	Projects []string `json:"projects,omitempty"`
	Owners   []string `json:"owners,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// IsZero reports whether no filter category is set.
func (f Filters) IsZero() bool {
	return len(f.Projects) == 0 && len(f.Owners) == 0 && len(f.Tags) == 0
}

// Match reports whether the record passes every non-empty filter category.
func (f Filters) Match(r ArtifactRecord) bool {
	if len(f.Projects) > 0 && !lo.Contains(f.Projects, r.ProjectName) {
		return false
	}
	if len(f.Owners) > 0 && !lo.Contains(f.Owners, r.OwnerName) {
		return false
	}
	if len(f.Tags) > 0 && !lo.Some(r.Tags, f.Tags) {
		return false
	}
	return true
}

// ServerInfo describes the server a snapshot was collected from.
type ServerInfo struct {
	ServerURL      string `json:"server_url"`
	Site           string `json:"site"`
	ProductVersion string `json:"product_version,omitempty"`
	APIVersion     string `json:"api_version,omitempty"`
}

// Snapshot is one complete, point-in-time collection of normalized artifact
// records. It is assembled once per collect invocation and never mutated.
type Snapshot struct {
	ID          string           `json:"id"`
	Server      ServerInfo       `json:"server"`
	CollectedAt time.Time        `json:"collected_at"`
	Filters     Filters          `json:"filters_applied"`
	Records     []ArtifactRecord `json:"records"`
}

// Counts returns the number of records per kind.
func (s *Snapshot) Counts() map[Kind]int {
	counts := make(map[Kind]int)
	for _, r := range s.Records {
		counts[r.Kind]++
	}
	return counts
}
