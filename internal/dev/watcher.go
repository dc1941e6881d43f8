package dev

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ChangeType represents the type of file change.
type ChangeType int

const (
	ChangeAsset ChangeType = iota
	ChangeCSS
	ChangeTemplate
	ChangeManifest
)

func (t ChangeType) String() string {
	switch t {
	case ChangeCSS:
		return "css"
	case ChangeTemplate:
		return "template"
	case ChangeManifest:
		return "manifest"
	default:
		return "asset"
	}
}

// Change represents a detected file change.
type Change struct {
	Path string
	Type ChangeType
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the files and directories to watch.
	Paths []string

	// Ignore patterns to skip (names, path segments or globs).
	Ignore []string

	// Interval is the polling period. Changes within one period are
	// coalesced per type.
	Interval time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// Watcher polls files for changes.
type Watcher struct {
	config     WatcherConfig
	onChange   func(Change)
	mu         sync.Mutex
	running    bool
	stopCh     chan struct{}
	timestamps map[string]time.Time
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig) *Watcher {
	if config.Interval == 0 {
		config.Interval = 200 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}

	return &Watcher{
		config:     config,
		timestamps: make(map[string]time.Time),
	}
}

// OnChange sets the callback for file changes.
func (w *Watcher) OnChange(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start polls until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	stopCh := make(chan struct{})
	w.stopCh = stopCh
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	w.scanInitial()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.checkForChanges()
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running && w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

// IsRunning returns whether the watcher is running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// walk calls fn for every watched, non-ignored file.
func (w *Watcher) walk(fn func(p string, info os.FileInfo)) {
	for _, root := range w.config.Paths {
		filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if info.IsDir() {
				if p != root && w.shouldIgnore(p) {
					return filepath.SkipDir
				}
				return nil
			}
			if !w.shouldIgnore(p) {
				fn(p, info)
			}
			return nil
		})
	}
}

func (w *Watcher) scanInitial() {
	w.walk(func(p string, info os.FileInfo) {
		w.mu.Lock()
		w.timestamps[p] = info.ModTime()
		w.mu.Unlock()
	})
}

func (w *Watcher) checkForChanges() {
	w.mu.Lock()
	callback := w.onChange
	w.mu.Unlock()

	if callback == nil {
		return
	}

	var changes []Change
	seen := make(map[string]bool)

	w.walk(func(p string, info os.FileInfo) {
		seen[p] = true
		modTime := info.ModTime()

		w.mu.Lock()
		lastMod, exists := w.timestamps[p]
		if !exists || !modTime.Equal(lastMod) {
			w.timestamps[p] = modTime
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
		w.mu.Unlock()
	})

	w.mu.Lock()
	for p := range w.timestamps {
		if !seen[p] {
			delete(w.timestamps, p)
			changes = append(changes, Change{Path: p, Type: classifyChange(p)})
		}
	}
	w.mu.Unlock()

	// Report the first change of each type per poll.
	reported := make(map[ChangeType]bool)
	for _, change := range changes {
		if !reported[change.Type] {
			reported[change.Type] = true
			callback(change)
		}
	}
}

func (w *Watcher) shouldIgnore(fullPath string) bool {
	name := filepath.Base(fullPath)
	normalized := filepath.ToSlash(fullPath)

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		if name == pattern {
			return true
		}

		hasPathSep := strings.Contains(pattern, "/") || strings.Contains(pattern, "\\")
		hasGlob := strings.ContainsAny(pattern, "*?[")

		if hasGlob {
			if hasPathSep {
				if matched, _ := path.Match(filepath.ToSlash(pattern), normalized); matched {
					return true
				}
			} else if matched, _ := filepath.Match(pattern, name); matched {
				return true
			}
			continue
		}

		if pathHasSegment(normalized, pattern) {
			return true
		}
	}

	return false
}

func pathHasSegment(p, segment string) bool {
	for _, part := range strings.Split(p, "/") {
		if part == segment {
			return true
		}
	}
	return false
}

// classifyChange determines the type of change from the file name.
func classifyChange(p string) ChangeType {
	if filepath.Base(p) == "manifest.json" {
		return ChangeManifest
	}
	switch strings.ToLower(filepath.Ext(p)) {
	case ".css", ".scss", ".sass", ".less":
		return ChangeCSS
	case ".html":
		return ChangeTemplate
	default:
		return ChangeAsset
	}
}
