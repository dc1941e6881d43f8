package inertia

import (
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/vango-dev/inertia/pkg/assets"
)

// Cache-Control values for built assets.
const (
	CacheImmutable  = "public, max-age=31536000, immutable"
	CacheRevalidate = "public, max-age=3600, must-revalidate"
	CacheNoStore    = "no-store, no-cache, must-revalidate"
)

// Static serves built client assets from a directory.
type Static struct {
	fs       http.FileSystem
	prefix   string
	manifest *assets.Manifest
	dev      bool
	headers  map[string]string
}

// StaticOption configures a Static handler.
type StaticOption func(*Static)

// WithStaticManifest marks files listed in m as immutable.
func WithStaticManifest(m *assets.Manifest) StaticOption {
	return func(s *Static) {
		s.manifest = m
	}
}

// WithStaticDev disables caching.
func WithStaticDev(dev bool) StaticOption {
	return func(s *Static) {
		s.dev = dev
	}
}

// WithStaticHeaders adds headers to every served file.
func WithStaticHeaders(h map[string]string) StaticOption {
	return func(s *Static) {
		s.headers = h
	}
}

// NewStatic serves dir under the URL prefix.
func NewStatic(dir, prefix string, opts ...StaticOption) *Static {
	if prefix == "" {
		prefix = "/"
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	s := &Static{fs: http.Dir(dir), prefix: prefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Static) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	rel, ok := s.relPath(r.URL.Path)
	if !ok {
		http.NotFound(w, r)
		return
	}

	f, err := s.fs.Open(rel)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Cache-Control", s.cacheControl(rel))
	for key, value := range s.headers {
		w.Header().Set(key, value)
	}
	http.ServeContent(w, r, rel, info.ModTime(), f)
}

// relPath returns a sanitized path relative to the asset directory. It
// rejects traversal and absolute-path tricks.
func (s *Static) relPath(urlPath string) (string, bool) {
	if !strings.HasPrefix(urlPath, s.prefix) {
		return "", false
	}
	rel := strings.TrimPrefix(urlPath, s.prefix)
	if rel == "" {
		return "", false
	}

	// %00 decodes to NUL.
	if strings.IndexByte(rel, 0) != -1 || strings.Contains(rel, "\\") {
		return "", false
	}
	// "/assets//etc/passwd" leaves "/etc/passwd".
	if strings.HasPrefix(rel, "/") {
		return "", false
	}
	for _, seg := range strings.Split(rel, "/") {
		if seg == "." || seg == ".." {
			return "", false
		}
	}

	clean := path.Clean(rel)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", false
	}
	osPath := filepath.FromSlash(clean)
	if filepath.IsAbs(osPath) || filepath.VolumeName(osPath) != "" {
		return "", false
	}
	return clean, true
}

func (s *Static) cacheControl(rel string) string {
	switch {
	case s.dev:
		return CacheNoStore
	case s.manifest != nil && s.manifest.Built(s.manifestPath(rel)):
		return CacheImmutable
	case isFingerprinted(rel):
		return CacheImmutable
	default:
		return CacheRevalidate
	}
}

// manifestPath maps a served path to the manifest's file naming, which is
// relative to the build output directory and usually keeps the "assets/"
// directory the prefix strips.
func (s *Static) manifestPath(rel string) string {
	if s.manifest.Built(rel) {
		return rel
	}
	return strings.TrimPrefix(s.prefix, "/") + rel
}

// isFingerprinted reports whether a file name carries a content hash,
// e.g. "app.a1b2c3d4.js" or the Vite style "app-BtH3x9Qa.js".
func isFingerprinted(p string) bool {
	base := path.Base(p)
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" || stem == "" {
		return false
	}

	i := strings.LastIndexAny(stem, ".-")
	if i < 0 {
		return false
	}
	hash := stem[i+1:]
	if stem[i] == '.' {
		return len(hash) >= 8 && isHex(hash)
	}
	return len(hash) == 8 && isBase64URL(hash) && hasDigitOrUpper(hash)
}

func isHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

func isBase64URL(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '-') {
			return false
		}
	}
	return true
}

func hasDigitOrUpper(s string) bool {
	for _, c := range s {
		if (c >= '0' && c <= '9') || (c >= 'A' && c <= 'Z') {
			return true
		}
	}
	return false
}
