// Package project locates and loads the oir.toml manifest configuring a
// canonicalization run.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Manifest is a located, parsed oir.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the oir.toml schema.
type Config struct {
	Package PackageConfig `toml:"package"`
	Canon   CanonConfig   `toml:"canon"`
	Cache   CacheConfig   `toml:"cache"`
}

// PackageConfig names the project.
type PackageConfig struct {
	Name string `toml:"name"`
}

// CanonConfig holds pass options.
type CanonConfig struct {
	PruneDebug         bool `toml:"prune_debug"`
	SplitCriticalEdges bool `toml:"split_critical_edges"`
	Jobs               int  `toml:"jobs"`
}

// CacheConfig controls the on-disk result cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// DefaultConfig returns the configuration used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Canon: CanonConfig{SplitCriticalEdges: true},
	}
}

// Find walks upward from startDir looking for oir.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "oir.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the manifest at path.
func Load(path string) (*Manifest, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
	}, nil
}

// WriteManifest creates a manifest at path with the default configuration
// and the given package name.
func WriteManifest(path, name string) error {
	cfg := DefaultConfig()
	cfg.Package.Name = name
	f, err := os.Create(path) // #nosec G304 -- path chosen by the user
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	return nil
}

// LoadOrDefault finds and loads the nearest manifest, falling back to the
// default configuration when none exists.
func LoadOrDefault(startDir string) (*Manifest, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return &Manifest{Config: DefaultConfig()}, nil
	}
	return Load(path)
}
