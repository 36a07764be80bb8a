package source

import (
	"context"
	"fmt"

	"tabcli/internal/meta"
)

// Detail fetches child details for one artifact. Views are only defined for
// workbooks; connections for workbooks and data sources. The result carries
// "views" and/or "connections" keys ready to merge into a record's extra map.
func (c *Client) Detail(ctx context.Context, kind meta.Kind, id string, views, connections bool) (meta.RawArtifact, error) {
	if c.token == "" {
		return nil, fmt.Errorf("not signed in")
	}

	var base string
	switch kind {
	case meta.KindWorkbook:
		base = "workbooks/" + id
	case meta.KindDatasource:
		base = "datasources/" + id
		views = false
	default:
		return nil, fmt.Errorf("no details for artifact kind %q", kind)
	}

	detail := meta.RawArtifact{}

	if views {
		var resp map[string]any
		if err := c.do(ctx, "GET", c.siteURL(base+"/views"), nil, &resp); err != nil {
			return nil, fmt.Errorf("fetching views for %s: %w", id, err)
		}
		detail["views"] = viewList(envelopeItems(resp, "views", "view"))
	}

	if connections {
		var resp map[string]any
		if err := c.do(ctx, "GET", c.siteURL(base+"/connections"), nil, &resp); err != nil {
			return nil, fmt.Errorf("fetching connections for %s: %w", id, err)
		}
		detail["connections"] = connectionList(envelopeItems(resp, "connections", "connection"))
	}

	return detail, nil
}

func viewList(items []map[string]any) []any {
	views := make([]any, 0, len(items))
	for _, item := range items {
		views = append(views, map[string]any{
			"id":          item["id"],
			"name":        item["name"],
			"content_url": item["contentUrl"],
			"created_at":  item["createdAt"],
			"updated_at":  item["updatedAt"],
		})
	}
	return views
}

func connectionList(items []map[string]any) []any {
	conns := make([]any, 0, len(items))
	for _, item := range items {
		conn := map[string]any{
			"id":              item["id"],
			"connection_type": item["type"],
			"server_address":  item["serverAddress"],
			"server_port":     item["serverPort"],
			"username":        item["userName"],
		}
		if ds, ok := item["datasource"].(map[string]any); ok {
			conn["datasource_id"] = ds["id"]
			conn["datasource_name"] = ds["name"]
		}
		conns = append(conns, conn)
	}
	return conns
}
