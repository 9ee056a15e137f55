package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"oir/internal/canon"
)

// Current schema version - increment when Payload format changes.
const diskCacheSchemaVersion uint16 = 1

// DiskCache stores canonicalization results keyed by input content hash and
// pass options, so unchanged files are not re-processed.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is the cached result for one (file content, options) pair.
type Payload struct {
	Schema uint16

	Output string

	CopiesGenerated    int
	CopiesEliminated   int
	DestroysGenerated  int
	DestroysEliminated int
}

// Stats reconstructs the pass counters from the payload.
func (p *Payload) Stats() canon.Stats {
	return canon.Stats{
		CopiesGenerated:    p.CopiesGenerated,
		CopiesEliminated:   p.CopiesEliminated,
		DestroysGenerated:  p.DestroysGenerated,
		DestroysEliminated: p.DestroysEliminated,
	}
}

// DefaultCacheDir returns the standard XDG cache location for oir.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".cache")
	}
	return filepath.Join(base, "oir"), nil
}

// OpenDiskCache initializes a disk cache at dir, or at the standard
// XDG cache location when dir is empty.
func OpenDiskCache(dir string) (*DiskCache, error) {
	if dir == "" {
		var err error
		dir, err = DefaultCacheDir()
		if err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the directory backing the cache.
func (dc *DiskCache) Dir() string { return dc.dir }

// key derives the cache entry name from the content hash and the options
// that affect output.
func (dc *DiskCache) key(contentHash [32]byte, opts Options) string {
	h := sha256.New()
	h.Write(contentHash[:])
	flags := []byte{0, 0}
	if opts.PruneDebug {
		flags[0] = 1
	}
	if opts.SplitCriticalEdges {
		flags[1] = 1
	}
	h.Write(flags)
	return hex.EncodeToString(h.Sum(nil)) + ".oirc"
}

// Get returns the cached payload for the given input, if present and
// schema-compatible.
func (dc *DiskCache) Get(contentHash [32]byte, opts Options) (*Payload, bool) {
	dc.mu.RLock()
	defer dc.mu.RUnlock()
	data, err := os.ReadFile(filepath.Join(dc.dir, dc.key(contentHash, opts))) // #nosec G304 -- path derived from hash
	if err != nil {
		return nil, false
	}
	var p Payload
	if err := msgpack.Unmarshal(data, &p); err != nil {
		return nil, false
	}
	if p.Schema != diskCacheSchemaVersion {
		return nil, false
	}
	return &p, true
}

// Put stores the result of a successful run. Failures are not cached.
func (dc *DiskCache) Put(contentHash [32]byte, opts Options, res *Result) {
	if !res.Ok() {
		return
	}
	p := Payload{
		Schema:             diskCacheSchemaVersion,
		Output:             res.Output,
		CopiesGenerated:    res.Stats.CopiesGenerated,
		CopiesEliminated:   res.Stats.CopiesEliminated,
		DestroysGenerated:  res.Stats.DestroysGenerated,
		DestroysEliminated: res.Stats.DestroysEliminated,
	}
	data, err := msgpack.Marshal(&p)
	if err != nil {
		return
	}
	dc.mu.Lock()
	defer dc.mu.Unlock()
	tmp := filepath.Join(dc.dir, dc.key(contentHash, opts)+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil { // #nosec G306 -- cache entries are not secrets
		return
	}
	_ = os.Rename(tmp, filepath.Join(dc.dir, dc.key(contentHash, opts)))
}
