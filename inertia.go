// Package inertia is a server-side adapter for the Inertia page protocol on
// net/http.
//
// An Inertia value wraps a resolved configuration, the page negotiator and
// the document assembler into a small API used from ordinary handlers:
//
//	cfg := config.MustResolve(config.Config{AssetVersion: "1"})
//	app := inertia.New(cfg)
//
//	mux := http.NewServeMux()
//	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
//	    app.Render(w, r, "Users/Index", map[string]any{"users": users.All()})
//	})
//	http.ListenAndServe(":8080", app.Middleware(mux))
//
// First visits receive the full HTML document built from the index
// template. Subsequent visits made by the client runtime receive the Page
// Object as JSON.
package inertia

import (
	"log/slog"
	"net/http"

	"github.com/vango-dev/inertia/pkg/assets"
	"github.com/vango-dev/inertia/pkg/config"
	"github.com/vango-dev/inertia/pkg/negotiator"
	"github.com/vango-dev/inertia/pkg/shared"
	"github.com/vango-dev/inertia/pkg/ssr"
)

// Inertia is the protocol adapter. It is safe for concurrent use.
type Inertia struct {
	cfg        *config.Resolved
	negotiator *negotiator.Negotiator
	document   *document
	dispatcher *ssr.Dispatcher
	manifest   *assets.Manifest
	devScript  func(version string) string
	logger     *slog.Logger

	renderer ssr.RenderFunc
	ssrOpts  []ssr.Option
	shared   []sharedEntry
}

type sharedEntry struct {
	key   string
	value any
}

// Option configures an Inertia value.
type Option func(*Inertia)

// WithLogger sets the logger used for request failures.
func WithLogger(l *slog.Logger) Option {
	return func(i *Inertia) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithDispatcher replaces the SSR dispatcher New builds from the
// configuration. d keeps its own policy. It only runs when SSR is enabled
// in the configuration.
func WithDispatcher(d *ssr.Dispatcher) Option {
	return func(i *Inertia) {
		i.dispatcher = d
	}
}

// WithRenderer replaces the HTTP render server call in the dispatcher New
// builds. The configured failure policy still applies.
func WithRenderer(fn ssr.RenderFunc) Option {
	return func(i *Inertia) {
		i.renderer = fn
	}
}

// WithSSROptions adds options to the dispatcher New builds, after the
// configured policy and logger.
func WithSSROptions(opts ...ssr.Option) Option {
	return func(i *Inertia) {
		i.ssrOpts = append(i.ssrOpts, opts...)
	}
}

// WithShared adds a shared prop at startup, on top of the configured
// shared data. value may be a shared.Factory.
func WithShared(key string, value any) Option {
	return func(i *Inertia) {
		i.shared = append(i.shared, sharedEntry{key, value})
	}
}

// WithManifest derives the asset version from a build manifest instead of
// the configured AssetVersion. The version follows manifest updates.
func WithManifest(m *assets.Manifest) Option {
	return func(i *Inertia) {
		i.manifest = m
	}
}

// WithDevScript injects the HTML returned by fn before </body> of every
// document when the configuration is in dev mode. fn receives the asset
// version the page was rendered with.
func WithDevScript(fn func(version string) string) Option {
	return func(i *Inertia) {
		i.devScript = fn
	}
}

// New creates an adapter for cfg.
func New(cfg *config.Resolved, opts ...Option) *Inertia {
	i := &Inertia{
		cfg:    cfg,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	base := i.logger
	i.logger = base.With("component", "inertia")

	if s, ok := cfg.SSREnabled(); ok && i.dispatcher == nil {
		render := i.renderer
		if render == nil {
			render = ssr.NewHTTPRenderer(s.Endpoint)
		}
		dopts := append([]ssr.Option{ssr.WithPolicy(s.Policy), ssr.WithLogger(base)}, i.ssrOpts...)
		i.dispatcher = ssr.NewDispatcher(render, dopts...)
	}

	nopts := []negotiator.Option{negotiator.WithLogger(base)}
	if i.dispatcher != nil {
		nopts = append(nopts, negotiator.WithDispatcher(i.dispatcher))
	}
	if len(i.shared) > 0 {
		reg := shared.NewRegistry(cfg.SharedData)
		for _, e := range i.shared {
			reg = reg.With(e.key, e.value)
		}
		nopts = append(nopts, negotiator.WithShared(reg))
	}
	if i.manifest != nil {
		nopts = append(nopts, negotiator.WithVersion(i.manifestVersion))
	}
	i.negotiator = negotiator.New(cfg, nopts...)
	i.document = newDocument(cfg.IndexPath(), cfg.RootElementID, cfg.Dev)
	return i
}

// manifestVersion falls back to the configured version until a manifest
// has been loaded.
func (i *Inertia) manifestVersion() string {
	if v := i.manifest.Version(); v != "" {
		return v
	}
	return i.cfg.AssetVersion
}

// Version returns the current asset version.
func (i *Inertia) Version() string {
	return i.negotiator.Version()
}

// Config returns the resolved configuration.
func (i *Inertia) Config() *config.Resolved {
	return i.cfg
}

// Handler returns a handler that renders component with fixed props.
func (i *Inertia) Handler(component string, props map[string]any, opts ...RenderOption) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i.Render(w, r, component, props, opts...)
	})
}
