package dev

import (
	"path/filepath"

	"github.com/vango-dev/inertia/pkg/config"
)

// WatchPaths returns the paths to watch in development: the index
// template in use and, when given, the build manifest.
func WatchPaths(cfg *config.Resolved, manifestPath string) []string {
	paths := []string{cfg.IndexPath()}
	if manifestPath != "" {
		paths = append(paths, resolvePath(filepath.Dir(cfg.IndexEntrypoint), manifestPath))
	}
	return dedupe(paths)
}

func resolvePath(base, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	out := paths[:0]
	for _, p := range paths {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
