package meta

import (
	"sort"

	"github.com/samber/lo"
)

// extraKeys lists the kind-specific fields carried in ArtifactRecord.Extra.
// Every key is always present in a normalized record: absent scalars are nil,
// absent collections are empty slices. This keeps the serialized schema
// stable across artifacts regardless of which optional fields the source
// returned.
var extraKeys = map[Kind][]string{
	KindWorkbook:   {"description", "webpage_url", "content_url", "size", "show_tabs", "views", "connections", "lineage"},
	KindDatasource: {"description", "webpage_url", "content_url", "size", "connections", "lineage"},
	KindProject:    {"description", "parent_id", "content_permissions"},
	KindFlow:       {"description", "webpage_url"},
}

// collectionKeys are extra fields that default to an empty slice rather than nil.
var collectionKeys = map[string]bool{
	"views":       true,
	"connections": true,
}

// ExtraKeys returns the schema-stable extra key set for a kind.
func ExtraKeys(kind Kind) []string {
	return extraKeys[kind]
}

// Normalize converts a raw artifact of the given kind into an ArtifactRecord.
// It fails with a NormalizeError when the raw input has no id; all other
// fields degrade to their empty values.
func Normalize(kind Kind, raw RawArtifact) (ArtifactRecord, error) {
	keys, ok := extraKeys[kind]
	if !ok {
		return ArtifactRecord{}, &NormalizeError{Kind: kind, Reason: "unknown kind"}
	}

	id := stringField(raw, "id")
	if id == "" {
		return ArtifactRecord{}, &NormalizeError{Kind: kind, Reason: "missing id"}
	}

	extra := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, present := raw[k]; present && v != nil {
			extra[k] = v
		} else if collectionKeys[k] {
			extra[k] = []any{}
		} else {
			extra[k] = nil
		}
	}

	return ArtifactRecord{
		ID:          id,
		Kind:        kind,
		Name:        stringField(raw, "name"),
		ProjectName: stringField(raw, "project_name"),
		OwnerName:   stringField(raw, "owner_name"),
		Tags:        normalizeTags(raw["tags"]),
		CreatedAt:   stringField(raw, "created_at"),
		UpdatedAt:   stringField(raw, "updated_at"),
		Extra:       extra,
	}, nil
}

// normalizeTags de-duplicates and sorts tag values so that tag sets compare
// and serialize independently of source order.
func normalizeTags(v any) []string {
	var tags []string
	switch t := v.(type) {
	case []string:
		tags = t
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				tags = append(tags, s)
			}
		}
	}
	tags = lo.Uniq(tags)
	sort.Strings(tags)
	return tags
}

func stringField(raw RawArtifact, key string) string {
	s, _ := raw[key].(string)
	return s
}
