package meta

import (
	"context"
	"fmt"
	"time"
)

// Source is the artifact-listing service the collector pulls from.
// Implementations talk to the Tableau REST and Metadata APIs; tests use a
// scripted fake.
type Source interface {
	// Info describes the connected server and site.
	Info(ctx context.Context) (ServerInfo, error)

	// List returns all raw artifacts of the given kind in server order.
	List(ctx context.Context, kind Kind) ([]RawArtifact, error)

	// Detail fetches child details (views and/or connections) for one artifact.
	Detail(ctx context.Context, kind Kind, id string, views, connections bool) (RawArtifact, error)

	// Lineage fetches upstream/downstream dependency edges for one artifact.
	// Returns ErrLineageNotFound when the server has no lineage for the id.
	Lineage(ctx context.Context, kind Kind, id string) (map[string]any, error)
}

// CollectOptions controls one collection run.
type CollectOptions struct {
	Kinds              []Kind
	Filters            Filters
	IncludeViews       bool
	IncludeConnections bool
	IncludeLineage     bool
}

// Collector walks the requested artifact kinds, normalizes and filters each
// listing, optionally enriches surviving records with child details, and
// assembles a single Snapshot.
type Collector struct {
	source Source
	logger Logger
	clock  Clock
	idgen  IDGenerator
}

// NewCollector creates a Collector with the provided dependencies.
func NewCollector(source Source, logger Logger, clock Clock, idgen IDGenerator) *Collector {
	return &Collector{
		source: source,
		logger: logger,
		clock:  clock,
		idgen:  idgen,
	}
}

// Collect assembles a snapshot of the requested kinds. A failed listing is
// fatal for the whole run; a malformed artifact, failed detail fetch, or
// failed lineage fetch affects only that one record.
func (c *Collector) Collect(ctx context.Context, opts CollectOptions) (*Snapshot, error) {
	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = AllKinds()
	}

	info, err := c.source.Info(ctx)
	if err != nil {
		// Server info is descriptive only; collection proceeds without it.
		c.logger.Warn("server info unavailable", "error", err)
	}

	var records []ArtifactRecord
	for _, kind := range kinds {
		raws, err := c.source.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("listing %ss: %w", kind, err)
		}
		c.logger.Info("listed artifacts", "kind", kind, "count", len(raws))

		for _, raw := range raws {
			record, err := Normalize(kind, raw)
			if err != nil {
				c.logger.Warn("skipping malformed artifact", "kind", kind, "error", err)
				continue
			}
			if !opts.Filters.Match(record) {
				continue
			}
			c.enrich(ctx, &record, opts)
			records = append(records, record)
		}
	}

	return &Snapshot{
		ID:          c.idgen.New(),
		Server:      info,
		CollectedAt: c.clock.Now().UTC().Truncate(time.Second),
		Filters:     opts.Filters,
		Records:     records,
	}, nil
}

// enrich merges child details and lineage into a record's extra fields.
// Fetch failures leave the field empty and are logged as warnings.
func (c *Collector) enrich(ctx context.Context, record *ArtifactRecord, opts CollectOptions) {
	wantViews := opts.IncludeViews && record.Kind == KindWorkbook
	wantConnections := opts.IncludeConnections &&
		(record.Kind == KindWorkbook || record.Kind == KindDatasource)

	if wantViews || wantConnections {
		detail, err := c.source.Detail(ctx, record.Kind, record.ID, wantViews, wantConnections)
		if err != nil {
			c.logger.Warn("detail fetch failed", "kind", record.Kind, "id", record.ID, "error", err)
		} else {
			if v, ok := detail["views"]; ok && wantViews {
				record.Extra["views"] = v
			}
			if v, ok := detail["connections"]; ok && wantConnections {
				record.Extra["connections"] = v
			}
		}
	}

	if opts.IncludeLineage && (record.Kind == KindWorkbook || record.Kind == KindDatasource) {
		lineage, err := c.source.Lineage(ctx, record.Kind, record.ID)
		if err != nil {
			c.logger.Warn("lineage fetch failed", "kind", record.Kind, "id", record.ID, "error", err)
		} else {
			record.Extra["lineage"] = lineage
		}
	}
}
