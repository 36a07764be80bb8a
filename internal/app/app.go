// Package app wires configuration, authentication, the artifact source, and
// storage targets into the operations the CLI exposes.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"tabcli/internal/auth"
	"tabcli/internal/codec"
	"tabcli/internal/config"
	"tabcli/internal/meta"
	"tabcli/internal/snapshot"
	"tabcli/internal/source"
	"tabcli/internal/store"
)

// App holds the wired-up application state for one command invocation.
type App struct {
	Config   *config.Config
	Defaults map[string]string

	logger  meta.Logger
	logFile *os.File
	verbose bool

	client    *source.Client
	collector *meta.Collector
	writer    *snapshot.Writer
	reader    *snapshot.Reader
}

// NewApp loads configuration and sets up logging for the named operation.
// A missing config file is not an error: defaults are used, so the tool works
// out of the box without `config init`.
func NewApp(operation string, verbose bool) (*App, error) {
	defaults, err := GetDefaults()
	if err != nil {
		return nil, err
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.NewConfig(defaults["base_dir"])
	}

	opID := fmt.Sprintf("%s-%s", operation, uuid.New().String()[:8])
	slogger, logFile, err := newLogger(cfg.LogDir, opID, verbose)
	if err != nil {
		return nil, err
	}
	logger := &slogAdapter{l: slogger}

	return &App{
		Config:   cfg,
		Defaults: defaults,
		logger:   logger,
		logFile:  logFile,
		verbose:  verbose,
		writer:   snapshot.NewWriter(logger),
		reader:   snapshot.NewReader(logger),
	}, nil
}

// Close signs out of any open server session and releases the log file.
func (a *App) Close(ctx context.Context) {
	if a.client != nil {
		if err := a.client.SignOut(ctx); err != nil {
			a.logger.Warn("sign out failed", "error", err)
		}
		a.client = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// Connect resolves credentials, signs in, and prepares the collector. With
// interactive set, missing environment credentials fall back to prompting.
func (a *App) Connect(ctx context.Context, interactive bool) error {
	cfg, cred, err := auth.FromEnv()
	if err != nil {
		if !interactive {
			return err
		}
		cfg, cred, err = auth.Interactive()
		if err != nil {
			return err
		}
	}

	opts := []source.Option{
		source.WithAPIVersion(a.Config.APIVersion),
		source.WithLogger(a.logger),
	}
	if a.verbose {
		opts = append(opts, source.WithVerboseHTTP())
	}
	client := source.NewClient(cfg, cred, opts...)

	if err := client.SignIn(ctx); err != nil {
		return err
	}

	a.client = client
	a.collector = meta.NewCollector(client, a.logger, meta.RealClock{}, meta.UUIDGenerator{})
	a.logger.Info("connected", "server", cfg.ServerURL, "credential", cred.Describe())
	return nil
}

// ServerInfo returns the connected server's identity.
func (a *App) ServerInfo(ctx context.Context) (meta.ServerInfo, error) {
	if a.client == nil {
		return meta.ServerInfo{}, fmt.Errorf("not connected")
	}
	return a.client.Info(ctx)
}

// Collect runs one collection and writes the snapshot to the requested
// targets. An empty targetNames writes to every configured target.
func (a *App) Collect(ctx context.Context, opts meta.CollectOptions, targetNames []string, enc codec.Encoding) (*meta.Snapshot, string, []snapshot.WriteResult, error) {
	if a.collector == nil {
		return nil, "", nil, fmt.Errorf("not connected")
	}

	s, err := a.collector.Collect(ctx, opts)
	if err != nil {
		return nil, "", nil, err
	}

	stores, err := a.resolveStores(ctx, targetNames)
	if err != nil {
		return nil, "", nil, err
	}

	filename, results := a.writer.Write(ctx, s, stores, enc)
	if snapshot.AllFailed(results) {
		return s, filename, results, fmt.Errorf("snapshot write failed on every target")
	}
	return s, filename, results, nil
}

// ListSnapshots lists the snapshot files available on one target.
func (a *App) ListSnapshots(ctx context.Context, targetName string) ([]string, string, error) {
	st, err := a.resolveStore(ctx, targetName)
	if err != nil {
		return nil, "", err
	}
	names, err := st.List(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("listing snapshots: %w", err)
	}
	return names, st.Description(), nil
}

// LoadSnapshot loads one named snapshot from a target.
func (a *App) LoadSnapshot(ctx context.Context, targetName, filename string) (*meta.Snapshot, error) {
	st, err := a.resolveStore(ctx, targetName)
	if err != nil {
		return nil, err
	}
	return a.reader.Load(ctx, st, filename)
}

// ExportSnapshot loads a stored snapshot, re-renders it under the requested
// encoding and optional filters, and writes the result to outPath. An empty
// outPath derives the name from the snapshot's own timestamp.
func (a *App) ExportSnapshot(ctx context.Context, targetName, filename string, enc codec.Encoding, filters meta.Filters, outPath string) (string, error) {
	s, err := a.LoadSnapshot(ctx, targetName, filename)
	if err != nil {
		return "", err
	}

	data, err := a.reader.Export(s, enc, filters)
	if err != nil {
		return "", err
	}

	if outPath == "" {
		outPath = codec.Filename(s.Server.Site, s.CollectedAt, enc)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("writing export: %w", err)
	}
	a.logger.Info("snapshot exported", "file", outPath, "encoding", string(enc), "records", len(s.Records))
	return outPath, nil
}

// Report collects a fresh inventory of every artifact kind and writes it
// straight to an xlsx workbook, without persisting a snapshot.
func (a *App) Report(ctx context.Context, filters meta.Filters, outPath string) (string, *meta.Snapshot, error) {
	if a.collector == nil {
		return "", nil, fmt.Errorf("not connected")
	}

	s, err := a.collector.Collect(ctx, meta.CollectOptions{Filters: filters})
	if err != nil {
		return "", nil, err
	}

	data, err := codec.Encode(s, codec.XLSX)
	if err != nil {
		return "", nil, err
	}

	if outPath == "" {
		outPath = codec.Filename(s.Server.Site, s.CollectedAt, codec.XLSX)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", nil, fmt.Errorf("writing report: %w", err)
	}
	a.logger.Info("report written", "file", outPath, "records", len(s.Records))
	return outPath, s, nil
}

// ListKind returns the normalized listing of one artifact kind. Malformed
// artifacts are skipped with a warning.
func (a *App) ListKind(ctx context.Context, kind meta.Kind) ([]meta.ArtifactRecord, error) {
	if a.client == nil {
		return nil, fmt.Errorf("not connected")
	}

	raws, err := a.client.List(ctx, kind)
	if err != nil {
		return nil, err
	}

	records := make([]meta.ArtifactRecord, 0, len(raws))
	for _, raw := range raws {
		record, err := meta.Normalize(kind, raw)
		if err != nil {
			a.logger.Warn("skipping malformed artifact", "kind", kind, "error", err)
			continue
		}
		records = append(records, record)
	}
	return records, nil
}

// WorkbookDetail returns one workbook's record enriched with its views and
// connections.
func (a *App) WorkbookDetail(ctx context.Context, id string) (meta.ArtifactRecord, error) {
	records, err := a.ListKind(ctx, meta.KindWorkbook)
	if err != nil {
		return meta.ArtifactRecord{}, err
	}

	for _, record := range records {
		if record.ID != id {
			continue
		}
		detail, err := a.client.Detail(ctx, meta.KindWorkbook, id, true, true)
		if err != nil {
			a.logger.Warn("detail fetch failed", "id", id, "error", err)
			return record, nil
		}
		if v, ok := detail["views"]; ok {
			record.Extra["views"] = v
		}
		if v, ok := detail["connections"]; ok {
			record.Extra["connections"] = v
		}
		return record, nil
	}
	return meta.ArtifactRecord{}, fmt.Errorf("workbook %s not found", id)
}

// Lineage returns dependency edges for one artifact. The artifact kind is
// probed: workbooks first, then data sources.
func (a *App) Lineage(ctx context.Context, id string) (map[string]any, error) {
	if a.client == nil {
		return nil, fmt.Errorf("not connected")
	}

	lineage, err := a.client.Lineage(ctx, meta.KindWorkbook, id)
	if err == nil {
		return lineage, nil
	}
	return a.client.Lineage(ctx, meta.KindDatasource, id)
}

// Search returns records of every kind whose name contains the term,
// case-insensitively.
func (a *App) Search(ctx context.Context, term string) ([]meta.ArtifactRecord, error) {
	term = strings.ToLower(term)

	var matches []meta.ArtifactRecord
	for _, kind := range meta.AllKinds() {
		records, err := a.ListKind(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, record := range records {
			if strings.Contains(strings.ToLower(record.Name), term) {
				matches = append(matches, record)
			}
		}
	}
	return matches, nil
}

// resolveStore opens the named storage target, or the first configured target
// when name is empty.
func (a *App) resolveStore(ctx context.Context, name string) (store.Store, error) {
	target, err := a.resolveTarget(name)
	if err != nil {
		return nil, err
	}
	return store.NewStoreFromConfig(ctx, target)
}

// resolveStores opens the named targets, or every configured target when
// names is empty.
func (a *App) resolveStores(ctx context.Context, names []string) ([]store.Store, error) {
	targets := a.Config.Targets
	if len(names) > 0 {
		targets = nil
		for _, name := range names {
			target, err := a.resolveTarget(name)
			if err != nil {
				return nil, err
			}
			targets = append(targets, target)
		}
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no storage targets configured")
	}

	stores := make([]store.Store, 0, len(targets))
	for _, target := range targets {
		st, err := store.NewStoreFromConfig(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("opening target %q: %w", target.Name, err)
		}
		stores = append(stores, st)
	}
	return stores, nil
}

func (a *App) resolveTarget(name string) (config.TargetConfig, error) {
	if len(a.Config.Targets) == 0 {
		return config.TargetConfig{}, fmt.Errorf("no storage targets configured")
	}
	if name == "" {
		return a.Config.Targets[0], nil
	}
	for _, t := range a.Config.Targets {
		if t.Name == name {
			return t, nil
		}
	}
	return config.TargetConfig{}, fmt.Errorf("no storage target named %q", name)
}
