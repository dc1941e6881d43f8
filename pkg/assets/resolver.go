package assets

import "strings"

// Resolver maps a source entry to the URL it is served from.
type Resolver interface {
	// Asset resolves a source entry to its URL path, e.g.
	// "src/main.tsx" -> "/assets/main-4f2a1c.js".
	Asset(source string) string
}

type manifestResolver struct {
	manifest *Manifest
	prefix   string
}

// NewResolver creates a Resolver from a Manifest. The prefix is the URL
// path the build directory is mounted at, usually "/".
func NewResolver(m *Manifest, prefix string) Resolver {
	return &manifestResolver{manifest: m, prefix: normalizePrefix(prefix)}
}

func (r *manifestResolver) Asset(source string) string {
	return r.prefix + strings.TrimPrefix(r.manifest.Resolve(source), "/")
}

// passthrough returns sources unchanged, for the dev server which serves
// them untransformed.
type passthrough struct {
	prefix string
}

// NewPassthroughResolver creates a resolver that only applies prefix.
func NewPassthroughResolver(prefix string) Resolver {
	return &passthrough{prefix: normalizePrefix(prefix)}
}

func (p *passthrough) Asset(source string) string {
	return p.prefix + strings.TrimPrefix(source, "/")
}

func normalizePrefix(prefix string) string {
	if prefix == "" {
		return "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return prefix
}
