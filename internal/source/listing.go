package source

import (
	"context"
	"fmt"

	"tabcli/internal/meta"
)

const pageSize = 100

// endpoints maps artifact kinds to their REST collection endpoint and the
// envelope keys of the response ({"workbooks": {"workbook": [...]}}).
var endpoints = map[meta.Kind]struct {
	path    string
	listKey string
	itemKey string
}{
	meta.KindWorkbook:   {"workbooks", "workbooks", "workbook"},
	meta.KindDatasource: {"datasources", "datasources", "datasource"},
	meta.KindProject:    {"projects", "projects", "project"},
	meta.KindFlow:       {"flows", "flows", "flow"},
}

// List returns all artifacts of the given kind in server listing order,
// walking pagination until the full listing is retrieved.
func (c *Client) List(ctx context.Context, kind meta.Kind) ([]meta.RawArtifact, error) {
	ep, ok := endpoints[kind]
	if !ok {
		return nil, fmt.Errorf("unsupported artifact kind: %q", kind)
	}
	if c.token == "" {
		return nil, fmt.Errorf("not signed in")
	}

	var raws []meta.RawArtifact
	for page := 1; ; page++ {
		var resp map[string]any
		url := fmt.Sprintf("%s?pageSize=%d&pageNumber=%d", c.siteURL(ep.path), pageSize, page)
		if err := c.do(ctx, "GET", url, nil, &resp); err != nil {
			return nil, fmt.Errorf("listing %s: %w", ep.path, err)
		}

		items := envelopeItems(resp, ep.listKey, ep.itemKey)
		for _, item := range items {
			raws = append(raws, rawFromItem(item))
		}

		total := paginationTotal(resp)
		if len(items) == 0 || len(raws) >= total {
			break
		}
	}
	return raws, nil
}

// envelopeItems unwraps {"<listKey>": {"<itemKey>": [...]}} into item maps.
func envelopeItems(resp map[string]any, listKey, itemKey string) []map[string]any {
	outer, _ := resp[listKey].(map[string]any)
	list, _ := outer[itemKey].([]any)

	items := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}

func paginationTotal(resp map[string]any) int {
	p, _ := resp["pagination"].(map[string]any)
	return intFromAny(p["totalAvailable"])
}

// rawFromItem flattens a REST item into the raw shape the normalizer expects:
// snake_case keys, nested project/owner/tags hoisted to top level.
func rawFromItem(item map[string]any) meta.RawArtifact {
	raw := meta.RawArtifact{
		"id":          item["id"],
		"name":        item["name"],
		"description": item["description"],
		"content_url": item["contentUrl"],
		"webpage_url": item["webpageUrl"],
		"created_at":  item["createdAt"],
		"updated_at":  item["updatedAt"],
		"size":        item["size"],
		"show_tabs":   item["showTabs"],
		"tags":        tagLabels(item["tags"]),
	}
	if p, ok := item["project"].(map[string]any); ok {
		raw["project_id"] = p["id"]
		raw["project_name"] = p["name"]
	}
	if o, ok := item["owner"].(map[string]any); ok {
		raw["owner_id"] = o["id"]
		raw["owner_name"] = o["name"]
	}
	if v, ok := item["parentProjectId"]; ok {
		raw["parent_id"] = v
	}
	if v, ok := item["contentPermissions"]; ok {
		raw["content_permissions"] = v
	}
	return raw
}

// tagLabels unwraps {"tag": [{"label": "x"}, ...]} into a plain string slice.
func tagLabels(v any) []any {
	outer, _ := v.(map[string]any)
	list, _ := outer["tag"].([]any)

	labels := make([]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			if label, ok := m["label"].(string); ok {
				labels = append(labels, label)
			}
		}
	}
	return labels
}
