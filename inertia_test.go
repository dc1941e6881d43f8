package inertia

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/vango-dev/inertia/pkg/assets"
	"github.com/vango-dev/inertia/pkg/config"
	"github.com/vango-dev/inertia/pkg/protocol"
	"github.com/vango-dev/inertia/pkg/shared"
	"github.com/vango-dev/inertia/pkg/ssr"
)

const indexHTML = `<!doctype html>
<html>
<head>@inertiaHead</head>
<body>@inertia</body>
</html>`

func writeIndex(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.html")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func newApp(t *testing.T, cfg config.Config, opts ...Option) *Inertia {
	t.Helper()
	if cfg.IndexBuildEntrypoint == "" {
		cfg.IndexBuildEntrypoint = writeIndex(t, indexHTML)
	}
	if cfg.AssetVersion == "" {
		cfg.AssetVersion = "v1"
	}
	resolved, err := config.Resolve(cfg)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	return New(resolved, opts...)
}

func inertiaRequest(method, target, version string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	r.Header.Set(protocol.HeaderInertia, "true")
	r.Header.Set(protocol.HeaderVersion, version)
	return r
}

func decodePage(t *testing.T, rr *httptest.ResponseRecorder) protocol.Page {
	t.Helper()
	var p protocol.Page
	if err := json.Unmarshal(rr.Body.Bytes(), &p); err != nil {
		t.Fatalf("decode page: %v (%q)", err, rr.Body.String())
	}
	return p
}

// dataPage extracts the Page Object embedded in a document.
func dataPage(t *testing.T, body string) protocol.Page {
	t.Helper()
	const marker = `data-page="`
	start := strings.Index(body, marker)
	if start < 0 {
		t.Fatalf("no data-page attribute in %q", body)
	}
	rest := body[start+len(marker):]
	end := strings.IndexByte(rest, '"')
	var p protocol.Page
	if err := json.Unmarshal([]byte(html.UnescapeString(rest[:end])), &p); err != nil {
		t.Fatalf("decode data-page: %v", err)
	}
	return p
}

func TestRender_Document(t *testing.T) {
	app := newApp(t, config.Config{})

	rr := httptest.NewRecorder()
	app.Render(rr, httptest.NewRequest(http.MethodGet, "/users?page=2", nil), "Users/Index", map[string]any{"name": `<Ann & "Bo">`})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %q", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rr.Header().Get("Vary") != protocol.Vary {
		t.Errorf("Vary = %q", rr.Header().Get("Vary"))
	}
	body := rr.Body.String()
	if strings.Contains(body, "@inertia") {
		t.Errorf("placeholders left in %q", body)
	}
	if !strings.Contains(body, `<div id="app" data-page="`) {
		t.Errorf("mount point missing in %q", body)
	}
	if strings.Contains(body, `<Ann`) {
		t.Error("prop value not escaped")
	}

	p := dataPage(t, body)
	if p.Component != "Users/Index" || p.URL != "/users?page=2" || p.Version != "v1" {
		t.Errorf("page = %+v", p)
	}
	if p.Props["name"] != `<Ann & "Bo">` {
		t.Errorf("props = %v", p.Props)
	}
}

func TestRender_JSON(t *testing.T) {
	app := newApp(t, config.Config{})

	rr := httptest.NewRecorder()
	app.Render(rr, inertiaRequest(http.MethodGet, "/users", "v1"), "Users/Index", map[string]any{"count": 3})

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get(protocol.HeaderInertia) != "true" {
		t.Error("missing X-Inertia response header")
	}
	p := decodePage(t, rr)
	if p.Component != "Users/Index" || p.Props["count"] != float64(3) {
		t.Errorf("page = %+v", p)
	}
}

func TestRender_VersionConflict(t *testing.T) {
	app := newApp(t, config.Config{})

	rr := httptest.NewRecorder()
	app.Render(rr, inertiaRequest(http.MethodGet, "/users?page=3", "old"), "Users/Index", nil)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	if got := rr.Header().Get(protocol.HeaderLocation); got != "/users?page=3" {
		t.Errorf("location = %q", got)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rr.Body.String())
	}
}

func TestRender_Options(t *testing.T) {
	app := newApp(t, config.Config{})

	rr := httptest.NewRecorder()
	app.Render(rr, inertiaRequest(http.MethodPost, "/users", "v1"), "Users/Create",
		map[string]any{"errors": map[string]any{"name": "required"}, "posts": []int{1}, "stats": 1},
		WithStatus(http.StatusUnprocessableEntity),
		WithDeferred("side", "stats"),
		WithMerge("posts"),
		WithEncryptHistory(false),
		WithClearHistory(),
	)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rr.Code)
	}
	p := decodePage(t, rr)
	if _, ok := p.Props["stats"]; ok {
		t.Error("deferred prop sent on first render")
	}
	if got := p.DeferredProps["side"]; len(got) != 1 || got[0] != "stats" {
		t.Errorf("deferredProps = %v", p.DeferredProps)
	}
	if len(p.MergeProps) != 1 || p.MergeProps[0] != "posts" {
		t.Errorf("mergeProps = %v", p.MergeProps)
	}
	if p.EncryptHistory || !p.ClearHistory {
		t.Errorf("history flags = %v/%v", p.EncryptHistory, p.ClearHistory)
	}
}

func TestMiddleware_RequestState(t *testing.T) {
	app := newApp(t, config.Config{
		SharedData: shared.Data{"app": "demo", "user": "shared"},
	})

	h := app.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !Share(r.Context(), "user", "alice") {
			t.Error("Share reported no request state")
		}
		Share(r.Context(), "flash", "saved")
		EncryptHistory(r.Context(), false)
		ClearHistory(r.Context())
		app.Render(w, r, "Dashboard", map[string]any{"flash": "page"})
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, inertiaRequest(http.MethodGet, "/", "v1"))

	p := decodePage(t, rr)
	if p.Props["app"] != "demo" || p.Props["user"] != "alice" {
		t.Errorf("request share does not override config: %v", p.Props)
	}
	if p.Props["flash"] != "saved" {
		t.Errorf("request props should win over page props: %v", p.Props)
	}
	if p.EncryptHistory || !p.ClearHistory {
		t.Errorf("history flags = %v/%v", p.EncryptHistory, p.ClearHistory)
	}
}

func TestRequestState_WithoutMiddleware(t *testing.T) {
	ctx := context.Background()
	if Share(ctx, "a", 1) || EncryptHistory(ctx, true) || ClearHistory(ctx) {
		t.Error("state helpers should report false without request state")
	}
	if Shared(ctx) != nil {
		t.Error("Shared should be nil without request state")
	}

	ctx = WithContext(ctx)
	Share(ctx, "a", 1)
	if WithContext(ctx) != ctx {
		t.Error("WithContext replaced existing state")
	}
	got := Shared(ctx)
	got["b"] = 2
	if len(Shared(ctx)) != 1 {
		t.Error("Shared returned the internal map")
	}
}

func TestRequestState_PageOverrideWins(t *testing.T) {
	app := newApp(t, config.Config{})
	h := app.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		EncryptHistory(r.Context(), false)
		app.Render(w, r, "Home", nil, WithEncryptHistory(true))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, inertiaRequest(http.MethodGet, "/", "v1"))
	if p := decodePage(t, rr); !p.EncryptHistory {
		t.Error("page option should win over request state")
	}
}

func TestMiddleware_RedirectStatus(t *testing.T) {
	app := newApp(t, config.Config{})
	h := app.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/users", http.StatusFound)
	}))

	tests := []struct {
		method  string
		inertia bool
		want    int
	}{
		{http.MethodPut, true, http.StatusSeeOther},
		{http.MethodPatch, true, http.StatusSeeOther},
		{http.MethodDelete, true, http.StatusSeeOther},
		{http.MethodPost, true, http.StatusFound},
		{http.MethodGet, true, http.StatusFound},
		{http.MethodPut, false, http.StatusFound},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(tt.method, "/users/1", nil)
		if tt.inertia {
			r.Header.Set(protocol.HeaderInertia, "true")
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, r)
		if rr.Code != tt.want {
			t.Errorf("%s inertia=%v: status = %d, want %d", tt.method, tt.inertia, rr.Code, tt.want)
		}
	}
}

func TestLocation(t *testing.T) {
	app := newApp(t, config.Config{})

	rr := httptest.NewRecorder()
	app.Location(rr, inertiaRequest(http.MethodGet, "/", "v1"), "https://example.com/sso")
	if rr.Code != http.StatusConflict || rr.Header().Get(protocol.HeaderLocation) != "https://example.com/sso" {
		t.Errorf("inertia location: %d %v", rr.Code, rr.Header())
	}

	rr = httptest.NewRecorder()
	app.Location(rr, httptest.NewRequest(http.MethodGet, "/", nil), "https://example.com/sso")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "https://example.com/sso" {
		t.Errorf("plain location: %d %v", rr.Code, rr.Header())
	}
}

func TestRedirectAndBack(t *testing.T) {
	app := newApp(t, config.Config{})

	rr := httptest.NewRecorder()
	app.Redirect(rr, httptest.NewRequest(http.MethodDelete, "/users/1", nil), "/users")
	if rr.Code != http.StatusSeeOther {
		t.Errorf("Redirect after DELETE = %d, want 303", rr.Code)
	}

	r := httptest.NewRequest(http.MethodPost, "/users", nil)
	r.Header.Set("Referer", "/users/new")
	rr = httptest.NewRecorder()
	app.Back(rr, r, "/")
	if rr.Code != http.StatusFound || rr.Header().Get("Location") != "/users/new" {
		t.Errorf("Back = %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = httptest.NewRecorder()
	app.Back(rr, httptest.NewRequest(http.MethodPost, "/users", nil), "/home")
	if rr.Header().Get("Location") != "/home" {
		t.Errorf("Back fallback = %q", rr.Header().Get("Location"))
	}
}

func TestRender_Failures(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	app := newApp(t, config.Config{
		SharedData: shared.Data{"user": shared.Factory(func(ctx context.Context, r *protocol.Request) (any, error) {
			return nil, errors.New("db down")
		})},
	}, WithLogger(logger))

	rr := httptest.NewRecorder()
	app.Render(rr, inertiaRequest(http.MethodGet, "/", "v1"), "Home", nil)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if !strings.Contains(logs.String(), "render failed") || !strings.Contains(logs.String(), "db down") {
		t.Errorf("logs = %q", logs.String())
	}

	err := app.RenderPage(httptest.NewRecorder(), inertiaRequest(http.MethodGet, "/", "v1"), "Home", nil)
	var sde *SharedDataError
	if !errors.As(err, &sde) || sde.Key != "user" {
		t.Errorf("RenderPage error = %v, want SharedDataError", err)
	}

	err = newApp(t, config.Config{}).RenderPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "", nil)
	var cre *ComponentResolutionError
	if !errors.As(err, &cre) || !errors.Is(err, ErrNoComponent) {
		t.Errorf("RenderPage error = %v, want ComponentResolutionError", err)
	}
}

func TestRender_CanceledRequestIsNotLogged(t *testing.T) {
	var logs bytes.Buffer
	app := newApp(t, config.Config{
		SharedData: shared.Data{"slow": shared.Factory(func(ctx context.Context, r *protocol.Request) (any, error) {
			return nil, ctx.Err()
		})},
	}, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := inertiaRequest(http.MethodGet, "/", "v1").WithContext(ctx)
	rr := httptest.NewRecorder()
	app.Render(rr, r, "Home", nil)

	if strings.Contains(logs.String(), "render failed") {
		t.Errorf("canceled request logged as failure: %q", logs.String())
	}
	if rr.Body.Len() != 0 {
		t.Errorf("canceled request wrote %q", rr.Body.String())
	}
}

func TestRender_SSR(t *testing.T) {
	d := ssr.NewDispatcher(func(ctx context.Context, p *protocol.Page) (*ssr.Result, error) {
		return &ssr.Result{
			Head: []string{"<title>Home</title>", `<meta name="x">`},
			Body: `<div id="app" data-page="{}"><h1>Home</h1></div>`,
		}, nil
	})
	app := newApp(t, config.Config{
		SSR: config.SSRConfig{Enabled: true, Entrypoint: "ssr.ts", BuildEntrypoint: "build/ssr.js"},
	}, WithDispatcher(d))

	rr := httptest.NewRecorder()
	app.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil)

	body := rr.Body.String()
	if !strings.Contains(body, "<head><title>Home</title>\n<meta name=\"x\"></head>") {
		t.Errorf("head not spliced: %q", body)
	}
	if !strings.Contains(body, "<h1>Home</h1>") {
		t.Errorf("body not spliced: %q", body)
	}
}

func TestRender_SSRStrictFailure(t *testing.T) {
	d := ssr.NewDispatcher(func(ctx context.Context, p *protocol.Page) (*ssr.Result, error) {
		return nil, errors.New("node crashed")
	})
	app := newApp(t, config.Config{
		SSR: config.SSRConfig{Enabled: true, Entrypoint: "ssr.ts", BuildEntrypoint: "build/ssr.js"},
	}, WithDispatcher(d), WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))))

	err := app.RenderPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil)
	var re *RenderError
	if !errors.As(err, &re) {
		t.Errorf("RenderPage error = %v, want RenderError", err)
	}
}

func TestNew_SSRFromConfig(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"head":["<title>Rendered</title>"],"body":"<div id=\"app\">server</div>"}`))
	}))
	defer srv.Close()

	app := newApp(t, config.Config{
		SSR: config.SSRConfig{Enabled: true, Entrypoint: "ssr.ts", BuildEntrypoint: "build/ssr.js", Endpoint: srv.URL},
	})

	rr := httptest.NewRecorder()
	if err := app.RenderPage(rr, httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("render server called %d times, want 1", n)
	}
	if !strings.Contains(rr.Body.String(), `<div id="app">server</div>`) {
		t.Errorf("server render not used: %q", rr.Body.String())
	}
}

func TestNew_SSRPolicyFromConfig(t *testing.T) {
	failing := func(ctx context.Context, p *protocol.Page) (*ssr.Result, error) {
		return nil, errors.New("render server down")
	}
	quiet := WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	ssrConfig := func(policy ssr.Policy) config.Config {
		return config.Config{
			SSR: config.SSRConfig{Enabled: true, Entrypoint: "ssr.ts", BuildEntrypoint: "build/ssr.js", Policy: policy},
		}
	}

	t.Run("strict", func(t *testing.T) {
		app := newApp(t, ssrConfig(ssr.PolicyStrict), WithRenderer(failing), quiet)
		err := app.RenderPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil)
		var re *RenderError
		if !errors.As(err, &re) {
			t.Errorf("RenderPage error = %v, want RenderError", err)
		}
	})

	t.Run("default is strict", func(t *testing.T) {
		app := newApp(t, ssrConfig(""), WithRenderer(failing), quiet)
		err := app.RenderPage(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil)
		if err == nil {
			t.Error("RenderPage succeeded without a render server")
		}
	})

	t.Run("degrade", func(t *testing.T) {
		app := newApp(t, ssrConfig(ssr.PolicyDegrade), WithRenderer(failing), quiet)
		rr := httptest.NewRecorder()
		if err := app.RenderPage(rr, httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil); err != nil {
			t.Fatalf("RenderPage: %v", err)
		}
		if p := dataPage(t, rr.Body.String()); p.Component != "Home" {
			t.Errorf("client-only page = %+v", p)
		}
	})
}

func TestNew_SharedAtStartup(t *testing.T) {
	app := newApp(t, config.Config{SharedData: shared.Data{"appName": "demo"}},
		WithShared("locale", "en"),
		WithShared("appName", "override"),
	)

	rr := httptest.NewRecorder()
	app.Render(rr, inertiaRequest(http.MethodGet, "/", "v1"), "Home", map[string]any{"title": "Home"})
	p := decodePage(t, rr)
	if p.Props["locale"] != "en" || p.Props["appName"] != "override" || p.Props["title"] != "Home" {
		t.Errorf("props = %v", p.Props)
	}
}

func TestRender_ManifestVersion(t *testing.T) {
	m := assets.NewManifest()
	app := newApp(t, config.Config{}, WithManifest(m))

	if app.Version() != "v1" {
		t.Errorf("Version() before load = %q, want configured", app.Version())
	}
	if _, err := m.Update([]byte(`{"src/main.ts": {"file": "assets/main-Bx9aQ2c1.js"}}`)); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if app.Version() != m.Version() {
		t.Errorf("Version() = %q, want %q", app.Version(), m.Version())
	}

	rr := httptest.NewRecorder()
	app.Render(rr, inertiaRequest(http.MethodGet, "/", "v1"), "Home", nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409 after the manifest changed", rr.Code)
	}
}

func TestRender_DevScript(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	if err := os.WriteFile(index, []byte(indexHTML), 0o644); err != nil {
		t.Fatal(err)
	}
	script := func(version string) string { return "<script>/*" + version + "*/</script>" }
	app := newApp(t, config.Config{Dev: true, IndexEntrypoint: index}, WithDevScript(script))

	rr := httptest.NewRecorder()
	app.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil)
	if !strings.Contains(rr.Body.String(), "<script>/*v1*/</script></body>") {
		t.Errorf("dev script not injected: %q", rr.Body.String())
	}

	// Dev mode re-reads the template.
	if err := os.WriteFile(index, []byte(`<main>@inertia</main>`), 0o644); err != nil {
		t.Fatal(err)
	}
	rr = httptest.NewRecorder()
	app.Render(rr, httptest.NewRequest(http.MethodGet, "/", nil), "Home", nil)
	if !strings.HasPrefix(rr.Body.String(), "<main><div") {
		t.Errorf("template edit not picked up: %q", rr.Body.String())
	}
	if !strings.HasSuffix(rr.Body.String(), "</main><script>/*v1*/</script>") {
		t.Errorf("script should be appended without </body>: %q", rr.Body.String())
	}
}

func TestHandler(t *testing.T) {
	app := newApp(t, config.Config{})
	rr := httptest.NewRecorder()
	app.Handler("About", map[string]any{"team": 4}).ServeHTTP(rr, inertiaRequest(http.MethodGet, "/about", "v1"))
	if p := decodePage(t, rr); p.Component != "About" || p.URL != "/about" {
		t.Errorf("page = %+v", p)
	}
}
