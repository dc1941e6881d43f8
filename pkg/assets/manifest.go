// Package assets reads the client build manifest and derives the asset
// version from it.
//
// The bundler writes a manifest.json mapping source entries to their
// fingerprinted output:
//
//	{
//	  "src/main.tsx": {"file": "assets/main-4f2a1c.js", "isEntry": true, "css": ["assets/main-9b1e.css"]},
//	  "src/pages/Home.tsx": {"file": "assets/Home-77c0.js", "imports": ["src/main.tsx"]}
//	}
//
// The manifest hash is the asset version sent to clients, so a new build
// forces every open tab to reload:
//
//	manifest, _ := assets.Load("build/client/.vite/manifest.json")
//	app := inertia.New(cfg, inertia.WithManifest(manifest))
package assets

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"
)

// Chunk is one manifest entry.
type Chunk struct {
	File    string   `json:"file"`
	Src     string   `json:"src,omitempty"`
	Name    string   `json:"name,omitempty"`
	IsEntry bool     `json:"isEntry,omitempty"`
	CSS     []string `json:"css,omitempty"`
	Imports []string `json:"imports,omitempty"`
	Assets  []string `json:"assets,omitempty"`
}

// ErrInvalidManifest wraps manifest decode errors.
var ErrInvalidManifest = errors.New("assets: invalid manifest")

// Manifest holds the mapping from source entries to built chunks.
// It is safe for concurrent use; Update swaps the contents in place so
// holders of the pointer see new builds.
type Manifest struct {
	mu      sync.RWMutex
	entries map[string]Chunk
	files   map[string]bool
	raw     []byte
	version string
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{
		entries: make(map[string]Chunk),
		files:   make(map[string]bool),
	}
}

// Parse decodes manifest JSON.
func Parse(data []byte) (*Manifest, error) {
	m := NewManifest()
	if _, err := m.Update(data); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Update replaces the manifest contents with data. It reports whether the
// contents changed. On a decode error the manifest is left untouched.
func (m *Manifest) Update(data []byte) (bool, error) {
	var entries map[string]Chunk
	if err := json.Unmarshal(data, &entries); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.raw != nil && bytes.Equal(m.raw, data) {
		return false, nil
	}
	if entries == nil {
		entries = make(map[string]Chunk)
	}
	m.entries = entries
	m.files = make(map[string]bool)
	for _, c := range entries {
		m.files[c.File] = true
		for _, f := range c.CSS {
			m.files[f] = true
		}
		for _, f := range c.Assets {
			m.files[f] = true
		}
	}
	m.raw = bytes.Clone(data)
	m.version = hashVersion(data)
	return true, nil
}

func hashVersion(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}

// Version returns a short hash of the manifest contents, or "" for a
// manifest that was never loaded.
func (m *Manifest) Version() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// Resolve returns the built file for a source entry.
// If not found, returns the original path unchanged.
func (m *Manifest) Resolve(source string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if c, ok := m.entries[source]; ok {
		return c.File
	}
	return source
}

// Chunk returns the entry for source.
func (m *Manifest) Chunk(source string) (Chunk, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.entries[source]
	return c, ok
}

// Has returns true if the manifest contains the given source path.
func (m *Manifest) Has(source string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.entries[source]
	return ok
}

// Built reports whether file is an output of the build. Built files are
// fingerprinted and may be cached forever.
func (m *Manifest) Built(file string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.files[file]
}

// Set adds or updates an entry.
func (m *Manifest) Set(source string, c Chunk) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[source] = c
	m.files[c.File] = true
}

// Len returns the number of entries in the manifest.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.entries)
}

// Entries returns the source names of all entry chunks.
func (m *Manifest) Entries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for name, c := range m.entries {
		if c.IsEntry {
			out = append(out, name)
		}
	}
	return out
}

// All returns a copy of all manifest entries.
func (m *Manifest) All() map[string]Chunk {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return maps.Clone(m.entries)
}
