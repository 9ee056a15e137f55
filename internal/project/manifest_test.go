package project_test

import (
	"os"
	"path/filepath"
	"testing"

	"oir/internal/project"
)

// TestWriteLoadRoundTrip checks that a written manifest loads back with
// the same configuration.
func TestWriteLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oir.toml")
	if err := project.WriteManifest(path, "demo"); err != nil {
		t.Fatalf("WriteManifest: %v", err)
	}
	m, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Config.Package.Name != "demo" {
		t.Errorf("package name = %q, want demo", m.Config.Package.Name)
	}
	if !m.Config.Canon.SplitCriticalEdges {
		t.Error("default split_critical_edges lost in round trip")
	}
	if m.Root != dir {
		t.Errorf("root = %q, want %q", m.Root, dir)
	}
}

// TestFindWalksUp checks manifest discovery from a nested directory.
func TestFindWalksUp(t *testing.T) {
	dir := t.TempDir()
	nested := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(dir, "oir.toml")
	if err := project.WriteManifest(want, "demo"); err != nil {
		t.Fatal(err)
	}
	got, ok, err := project.Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if !ok || got != want {
		t.Errorf("Find = %q, %v; want %q, true", got, ok, want)
	}
}

// TestLoadOrDefaultWithoutManifest falls back to the default config.
func TestLoadOrDefaultWithoutManifest(t *testing.T) {
	m, err := project.LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if m.Path != "" {
		t.Errorf("path = %q, want empty for defaults", m.Path)
	}
	if !m.Config.Canon.SplitCriticalEdges {
		t.Error("default config must split critical edges")
	}
}

// TestLoadOverrides checks that manifest values replace the defaults.
func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oir.toml")
	content := `[package]
name = "custom"

[canon]
prune_debug = true
split_critical_edges = false
jobs = 2

[cache]
enabled = true
dir = "/tmp/oir-cache"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	m, err := project.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg := m.Config
	if !cfg.Canon.PruneDebug || cfg.Canon.SplitCriticalEdges || cfg.Canon.Jobs != 2 {
		t.Errorf("canon config = %+v", cfg.Canon)
	}
	if !cfg.Cache.Enabled || cfg.Cache.Dir != "/tmp/oir-cache" {
		t.Errorf("cache config = %+v", cfg.Cache)
	}
}
