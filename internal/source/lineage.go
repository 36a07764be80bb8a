package source

import (
	"context"
	"fmt"
	"net/http"

	"tabcli/internal/meta"
)

// GraphQL queries against the Metadata API. Lineage is best-effort: servers
// without the Metadata API enabled, and artifacts it has not indexed, return
// meta.ErrLineageNotFound.
const workbookLineageQuery = `
query workbookLineage($luid: String!) {
  workbooks(filter: {luid: $luid}) {
    luid
    name
    upstreamDatasources {
      luid
      name
      upstreamTables {
        luid
        name
        schema
        database { name }
      }
    }
    sheets {
      luid
      name
    }
  }
}`

const datasourceLineageQuery = `
query datasourceLineage($luid: String!) {
  publishedDatasources(filter: {luid: $luid}) {
    luid
    name
    upstreamTables {
      luid
      name
      schema
      database { name connectionType }
    }
    downstreamWorkbooks {
      luid
      name
    }
  }
}`

// Lineage fetches upstream/downstream dependency edges for one artifact via
// the Metadata API.
func (c *Client) Lineage(ctx context.Context, kind meta.Kind, id string) (map[string]any, error) {
	if c.token == "" {
		return nil, fmt.Errorf("not signed in")
	}

	var query, resultKey string
	switch kind {
	case meta.KindWorkbook:
		query, resultKey = workbookLineageQuery, "workbooks"
	case meta.KindDatasource:
		query, resultKey = datasourceLineageQuery, "publishedDatasources"
	default:
		return nil, fmt.Errorf("%w: no lineage for artifact kind %q", meta.ErrLineageNotFound, kind)
	}

	payload := map[string]any{
		"query":     query,
		"variables": map[string]any{"luid": id},
	}

	var resp struct {
		Data   map[string]any   `json:"data"`
		Errors []map[string]any `json:"errors"`
	}
	url := c.baseURL + "/api/metadata/graphql"
	if err := c.do(ctx, http.MethodPost, url, payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", meta.ErrLineageNotFound, err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: metadata api reported %d error(s)", meta.ErrLineageNotFound, len(resp.Errors))
	}

	results, _ := resp.Data[resultKey].([]any)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s %s not indexed", meta.ErrLineageNotFound, kind, id)
	}
	lineage, ok := results[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected metadata api response shape", meta.ErrLineageNotFound)
	}
	return lineage, nil
}
