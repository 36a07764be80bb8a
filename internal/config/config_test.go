package config

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestManager_ReadWrite_RoundTrip(t *testing.T) {
	original := &Config{
		LogDir:     "/home/user/.local/share/tabcli/log",
		APIVersion: "3.21",
		Targets: []TargetConfig{
			{Type: "local", Name: "disk", Dir: "/home/user/.local/share/tabcli/snapshots"},
			{
				Type:           "s3",
				Name:           "archive",
				S3Bucket:       "metadata-snapshots",
				S3Prefix:       "prod/",
				S3Region:       "eu-west-1",
				S3Endpoint:     "https://minio.internal:9000",
				S3UsePathStyle: true,
			},
		},
	}

	var buf bytes.Buffer
	m := &Manager{}

	if err := m.Write(&buf, original); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := m.Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if got.LogDir != original.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, original.LogDir)
	}
	if got.APIVersion != "3.21" {
		t.Errorf("APIVersion = %q, want %q", got.APIVersion, "3.21")
	}
	if len(got.Targets) != 2 {
		t.Fatalf("len(Targets) = %d, want 2", len(got.Targets))
	}
	if got.Targets[0].Type != "local" {
		t.Errorf("Targets[0].Type = %q, want %q", got.Targets[0].Type, "local")
	}
	if got.Targets[0].Dir != original.Targets[0].Dir {
		t.Errorf("Targets[0].Dir = %q, want %q", got.Targets[0].Dir, original.Targets[0].Dir)
	}
	if got.Targets[1].S3Bucket != "metadata-snapshots" {
		t.Errorf("Targets[1].S3Bucket = %q, want %q", got.Targets[1].S3Bucket, "metadata-snapshots")
	}
	if got.Targets[1].S3Endpoint != original.Targets[1].S3Endpoint {
		t.Errorf("Targets[1].S3Endpoint = %q, want %q", got.Targets[1].S3Endpoint, original.Targets[1].S3Endpoint)
	}
	if !got.Targets[1].S3UsePathStyle {
		t.Error("Targets[1].S3UsePathStyle = false, want true")
	}
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/data/tabcli")

	if cfg.LogDir != filepath.Join("/data/tabcli", "log") {
		t.Errorf("LogDir = %q", cfg.LogDir)
	}
	if len(cfg.Targets) != 1 {
		t.Fatalf("len(Targets) = %d, want 1", len(cfg.Targets))
	}
	if cfg.Targets[0].Type != "local" {
		t.Errorf("Targets[0].Type = %q, want %q", cfg.Targets[0].Type, "local")
	}
	if cfg.Targets[0].Dir != filepath.Join("/data/tabcli", "snapshots") {
		t.Errorf("Targets[0].Dir = %q", cfg.Targets[0].Dir)
	}
}

func TestConfig_FindTarget(t *testing.T) {
	cfg := &Config{Targets: []TargetConfig{
		{Type: "local", Name: "disk"},
		{Type: "s3", Name: "archive"},
	}}

	target, ok := cfg.FindTarget("s3")
	if !ok {
		t.Fatal("FindTarget(\"s3\") = false, want true")
	}
	if target.Name != "archive" {
		t.Errorf("target.Name = %q, want %q", target.Name, "archive")
	}

	if _, ok := cfg.FindTarget("memory"); ok {
		t.Error("FindTarget(\"memory\") = true, want false")
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "tabcli.toml")
	cfg := NewConfig("/data/tabcli")

	if err := Init(path, cfg); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	got, err := ReadFromFile(path)
	if err != nil {
		t.Fatalf("ReadFromFile() error = %v", err)
	}
	if got.LogDir != cfg.LogDir {
		t.Errorf("LogDir = %q, want %q", got.LogDir, cfg.LogDir)
	}

	// A second init must not clobber the existing file.
	if err := Init(path, cfg); err == nil {
		t.Error("Init() on existing file expected error, got nil")
	}
}

func TestReadFromFile_Missing(t *testing.T) {
	_, err := ReadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("ReadFromFile() expected error, got nil")
	}
	// The app layer relies on missing files being distinguishable.
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ReadFromFile() error = %v, want wrapped not-exist", err)
	}
}
