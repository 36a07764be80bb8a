package testutil

import (
	"context"
	"fmt"

	"tabcli/internal/meta"
)

// FakeSource is a scripted meta.Source for testing. Populate Artifacts,
// Details and Lineages before use; set the error fields to inject failures.
type FakeSource struct {
	Server    meta.ServerInfo
	Artifacts map[meta.Kind][]meta.RawArtifact
	Details   map[string]meta.RawArtifact
	Lineages  map[string]map[string]any

	InfoErr    error
	ListErr    map[meta.Kind]error
	DetailErr  map[string]error
	LineageErr map[string]error
}

// NewFakeSource creates an empty FakeSource.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		Server:    meta.ServerInfo{ServerURL: "https://tableau.example.com", Site: "test"},
		Artifacts: make(map[meta.Kind][]meta.RawArtifact),
		Details:   make(map[string]meta.RawArtifact),
		Lineages:  make(map[string]map[string]any),
	}
}

// Add appends a raw artifact to the listing for kind.
func (f *FakeSource) Add(kind meta.Kind, raw meta.RawArtifact) {
	f.Artifacts[kind] = append(f.Artifacts[kind], raw)
}

func (f *FakeSource) Info(_ context.Context) (meta.ServerInfo, error) {
	if f.InfoErr != nil {
		return meta.ServerInfo{}, f.InfoErr
	}
	return f.Server, nil
}

func (f *FakeSource) List(_ context.Context, kind meta.Kind) ([]meta.RawArtifact, error) {
	if err := f.ListErr[kind]; err != nil {
		return nil, err
	}
	return f.Artifacts[kind], nil
}

func (f *FakeSource) Detail(_ context.Context, _ meta.Kind, id string, views, connections bool) (meta.RawArtifact, error) {
	if err := f.DetailErr[id]; err != nil {
		return nil, err
	}
	full, ok := f.Details[id]
	if !ok {
		return meta.RawArtifact{}, nil
	}

	detail := meta.RawArtifact{}
	if views {
		if v, ok := full["views"]; ok {
			detail["views"] = v
		}
	}
	if connections {
		if v, ok := full["connections"]; ok {
			detail["connections"] = v
		}
	}
	return detail, nil
}

func (f *FakeSource) Lineage(_ context.Context, kind meta.Kind, id string) (map[string]any, error) {
	if err := f.LineageErr[id]; err != nil {
		return nil, err
	}
	lineage, ok := f.Lineages[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", meta.ErrLineageNotFound, kind, id)
	}
	return lineage, nil
}

// Compile-time check
var _ meta.Source = (*FakeSource)(nil)
