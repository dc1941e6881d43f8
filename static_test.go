package inertia

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/vango-dev/inertia/pkg/assets"
)

func writeStaticFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile %s: %v", name, err)
	}
	return path
}

func serveStatic(h http.Handler, method, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, "http://example.com"+path, nil))
	return rr
}

func TestStatic_PrefixHandling(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "app.js", "ok")

	s := NewStatic(dir, "/assets")

	rr := serveStatic(s, http.MethodGet, "/assets/app.js")
	if rr.Code != http.StatusOK {
		t.Fatalf("GET /assets/app.js status = %d, want %d", rr.Code, http.StatusOK)
	}
	if got := rr.Body.String(); got != "ok" {
		t.Fatalf("GET /assets/app.js body = %q, want %q", got, "ok")
	}

	rr = serveStatic(s, http.MethodGet, "/app.js")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET /app.js status = %d, want %d", rr.Code, http.StatusNotFound)
	}

	rr = serveStatic(s, http.MethodGet, "/assets/")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET /assets/ status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestStatic_MethodAndHeadHandling(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "app.js", "ok")
	s := NewStatic(dir, "/")

	rr := serveStatic(s, http.MethodPost, "/app.js")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /app.js status = %d, want %d", rr.Code, http.StatusMethodNotAllowed)
	}
	if got := rr.Header().Get("Allow"); got != "GET, HEAD" {
		t.Errorf("Allow = %q", got)
	}

	rr = serveStatic(s, http.MethodHead, "/app.js")
	if rr.Code != http.StatusOK {
		t.Fatalf("HEAD /app.js status = %d, want %d", rr.Code, http.StatusOK)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("HEAD /app.js body = %q, want empty", rr.Body.String())
	}
}

func TestStatic_CacheControl(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "app.a1b2c3d4.css", "fingerprinted")
	writeStaticFile(t, dir, "main-Bx9aQ2c1.js", "vite")
	writeStaticFile(t, dir, "entry.js", "listed")
	writeStaticFile(t, dir, "app.css", "plain")

	m, err := assets.Parse([]byte(`{"src/main.ts": {"file": "assets/entry.js", "isEntry": true}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	prod := NewStatic(dir, "/assets/", WithStaticManifest(m))

	tests := []struct {
		path string
		want string
	}{
		{"/assets/app.a1b2c3d4.css", CacheImmutable},
		{"/assets/main-Bx9aQ2c1.js", CacheImmutable},
		{"/assets/entry.js", CacheImmutable},
		{"/assets/app.css", CacheRevalidate},
	}
	for _, tt := range tests {
		rr := serveStatic(prod, http.MethodGet, tt.path)
		if rr.Code != http.StatusOK {
			t.Fatalf("GET %s status = %d", tt.path, rr.Code)
		}
		if got := rr.Header().Get("Cache-Control"); got != tt.want {
			t.Errorf("GET %s Cache-Control = %q, want %q", tt.path, got, tt.want)
		}
	}

	dev := NewStatic(dir, "/assets/", WithStaticManifest(m), WithStaticDev(true))
	rr := serveStatic(dev, http.MethodGet, "/assets/entry.js")
	if got := rr.Header().Get("Cache-Control"); got != CacheNoStore {
		t.Errorf("dev Cache-Control = %q, want %q", got, CacheNoStore)
	}
}

func TestStatic_CustomHeaders(t *testing.T) {
	dir := t.TempDir()
	writeStaticFile(t, dir, "app.js", "ok")

	s := NewStatic(dir, "/", WithStaticHeaders(map[string]string{"X-Static": "true"}))
	rr := serveStatic(s, http.MethodGet, "/app.js")
	if got := rr.Header().Get("X-Static"); got != "true" {
		t.Fatalf("X-Static = %q, want %q", got, "true")
	}
}

func TestIsFingerprinted(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{path: "app.a1b2c3d4.css", want: true},
		{path: "app.A1B2C3D4.css", want: true},
		{path: "app.12345678.css", want: true},
		{path: "assets/index-D4x_9kLm.js", want: true},
		{path: "app.1234567.css", want: false},
		{path: "app.zzzzzzzz.css", want: false},
		{path: "date-picker.js", want: false},
		{path: "my-settings.css", want: false},
		{path: "app.css", want: false},
		{path: "Makefile", want: false},
	}

	for _, tc := range cases {
		if got := isFingerprinted(tc.path); got != tc.want {
			t.Errorf("isFingerprinted(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestStatic_BlocksDirectoryTraversal(t *testing.T) {
	tmp := t.TempDir()
	public := filepath.Join(tmp, "public")
	writeStaticFile(t, public, "ok.txt", "ok")
	writeStaticFile(t, tmp, "secret.txt", "secret")

	s := NewStatic(public, "/")
	if rr := serveStatic(s, http.MethodGet, "/ok.txt"); rr.Code != http.StatusOK {
		t.Fatalf("GET /ok.txt status = %d, want %d", rr.Code, http.StatusOK)
	}

	for _, p := range []string{"/../secret.txt", "/%2e%2e/secret.txt", "/..//secret.txt"} {
		rr := serveStatic(s, http.MethodGet, p)
		if strings.Contains(rr.Body.String(), "secret") {
			t.Fatalf("GET %s served secret content", p)
		}
		if rr.Code != http.StatusNotFound {
			t.Fatalf("GET %s status = %d, want %d", p, rr.Code, http.StatusNotFound)
		}
	}
}

func TestStatic_BlocksAbsolutePathEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("absolute-path escape is OS-specific on Windows")
	}
	tmp := t.TempDir()
	public := filepath.Join(tmp, "public")
	if err := os.MkdirAll(public, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	secret := writeStaticFile(t, tmp, "abs-secret.txt", "abs-secret")

	s := NewStatic(public, "/static")
	rr := serveStatic(s, http.MethodGet, "/static/"+filepath.ToSlash(secret))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("GET /static/<abs> status = %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestStaticRelPath_RejectsUnsafePaths(t *testing.T) {
	s := NewStatic(t.TempDir(), "/")

	for _, p := range []string{"/\x00", "/foo\\bar", "/./secret", "/../secret", "/a/../b"} {
		if rel, ok := s.relPath(p); ok {
			t.Errorf("relPath(%q) = %q, want reject", p, rel)
		}
	}
	if rel, ok := s.relPath("/css/app.css"); !ok || rel != "css/app.css" {
		t.Errorf("relPath(/css/app.css) = %q, %v", rel, ok)
	}
}
