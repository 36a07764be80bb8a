package codec

import (
	"encoding/json"
	"sort"
	"strings"

	"tabcli/internal/meta"
)

// baseColumns are the fixed leading columns of a flattened snapshot.
var baseColumns = []string{
	"id", "kind", "name", "project_name", "owner_name",
	"tags", "created_at", "updated_at",
}

// Columns returns the tabular header for a set of records: the fixed base
// columns followed by the sorted union of extra keys across all records.
// A record lacking a key yields an empty cell, never a missing column.
func Columns(records []meta.ArtifactRecord) []string {
	seen := make(map[string]bool)
	for _, r := range records {
		for k := range r.Extra {
			seen[k] = true
		}
	}

	extras := make([]string, 0, len(seen))
	for k := range seen {
		extras = append(extras, k)
	}
	sort.Strings(extras)

	return append(append([]string{}, baseColumns...), extras...)
}

// Row renders one record against the given header.
func Row(r meta.ArtifactRecord, columns []string) []string {
	row := make([]string, len(columns))
	for i, col := range columns {
		switch col {
		case "id":
			row[i] = r.ID
		case "kind":
			row[i] = string(r.Kind)
		case "name":
			row[i] = r.Name
		case "project_name":
			row[i] = r.ProjectName
		case "owner_name":
			row[i] = r.OwnerName
		case "tags":
			row[i] = strings.Join(r.Tags, ",")
		case "created_at":
			row[i] = r.CreatedAt
		case "updated_at":
			row[i] = r.UpdatedAt
		default:
			row[i] = cell(r.Extra[col])
		}
	}
	return row
}

// cell renders one extra value. Scalars render bare; composite values render
// as compact JSON; nil renders as an empty cell.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
