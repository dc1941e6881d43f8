package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/vango-dev/inertia/pkg/shared"
	"github.com/vango-dev/inertia/pkg/ssr"
)

const (
	// DefaultRootElementID is the id of the element the client mounts on.
	DefaultRootElementID = "app"

	// DefaultAssetVersion is used when no asset version is configured.
	DefaultAssetVersion = "v1"

	// DefaultIndexEntrypoint is the development index template, relative
	// to the working directory.
	DefaultIndexEntrypoint = "index.html"

	// DefaultIndexBuildEntrypoint is the built index template, relative to
	// the working directory.
	DefaultIndexBuildEntrypoint = "build/client/index.html"

	// DefaultAppType is the build-tool app type for middleware mode.
	DefaultAppType = "custom"

	// DefaultSSREndpoint is where the SSR render server listens.
	DefaultSSREndpoint = "http://127.0.0.1:13714/render"
)

// Config holds user-supplied settings. Zero values mean "use the default".
type Config struct {
	// RootElementID is the id of the element the client runtime mounts on.
	RootElementID string `json:"rootElementId,omitempty" toml:"root_element_id" yaml:"rootElementId,omitempty"`

	// AssetVersion is compared against the client's version header.
	AssetVersion string `json:"assetVersion,omitempty" toml:"asset_version" yaml:"assetVersion,omitempty"`

	// EncryptHistory is the history-encryption default. Nil means true.
	EncryptHistory *bool `json:"encryptHistory,omitempty" toml:"encrypt_history" yaml:"encryptHistory,omitempty"`

	// SharedData is merged into every page's props.
	SharedData shared.Data `json:"shared,omitempty" toml:"shared" yaml:"shared,omitempty"`

	// IndexEntrypoint is the HTML template used in development.
	IndexEntrypoint string `json:"indexEntrypoint,omitempty" toml:"index_entrypoint" yaml:"indexEntrypoint,omitempty"`

	// IndexBuildEntrypoint is the HTML template produced by the client build.
	IndexBuildEntrypoint string `json:"indexBuildEntrypoint,omitempty" toml:"index_build_entrypoint" yaml:"indexBuildEntrypoint,omitempty"`

	// Dev selects development entrypoints and re-reads templates per request.
	Dev bool `json:"dev,omitempty" toml:"dev" yaml:"dev,omitempty"`

	// BuildTool holds settings passed through to the build-tool integration.
	BuildTool BuildTool `json:"buildTool,omitempty" toml:"build_tool" yaml:"buildTool,omitempty"`

	// SSR declares the server-side rendering mode.
	SSR SSRConfig `json:"ssr,omitempty" toml:"ssr" yaml:"ssr,omitempty"`
}

// BuildTool holds build-tool dev server settings.
type BuildTool struct {
	Server DevServer `json:"server,omitempty" toml:"server" yaml:"server,omitempty"`

	// AppType defaults to "custom".
	AppType string `json:"appType,omitempty" toml:"app_type" yaml:"appType,omitempty"`

	// Extra is passed through untouched.
	Extra map[string]any `json:"extra,omitempty" toml:"extra" yaml:"extra,omitempty"`
}

// DevServer configures the build tool's development server.
type DevServer struct {
	// MiddlewareMode runs the dev server inside the application. Nil means true.
	MiddlewareMode *bool `json:"middlewareMode,omitempty" toml:"middleware_mode" yaml:"middlewareMode,omitempty"`

	// URL is the dev server origin that serves client modules, if any.
	URL string `json:"url,omitempty" toml:"url" yaml:"url,omitempty"`
}

// SSRConfig declares server-side rendering.
type SSRConfig struct {
	Enabled bool `json:"enabled,omitempty" toml:"enabled" yaml:"enabled,omitempty"`

	// Entrypoint is the SSR source entry used in development. Required when enabled.
	Entrypoint string `json:"entrypoint,omitempty" toml:"entrypoint" yaml:"entrypoint,omitempty"`

	// BuildEntrypoint is the built SSR bundle. Required when enabled.
	BuildEntrypoint string `json:"buildEntrypoint,omitempty" toml:"build_entrypoint" yaml:"buildEntrypoint,omitempty"`

	// Endpoint is the render server URL used by ssr.HTTPRenderer.
	Endpoint string `json:"endpoint,omitempty" toml:"endpoint" yaml:"endpoint,omitempty"`

	// Policy decides what a render failure does. Defaults to strict.
	Policy ssr.Policy `json:"policy,omitempty" toml:"policy" yaml:"policy,omitempty"`
}

// Resolved is the fully populated configuration. It is created once at
// startup and never modified.
type Resolved struct {
	RootElementID        string
	AssetVersion         string
	EncryptHistory       bool
	SharedData           shared.Data
	IndexEntrypoint      string
	IndexBuildEntrypoint string
	Dev                  bool
	BuildTool            ResolvedBuildTool
	SSR                  SSRMode
}

// ResolvedBuildTool is BuildTool with defaults applied.
type ResolvedBuildTool struct {
	MiddlewareMode bool
	URL            string
	AppType        string
	Extra          map[string]any
}

// SSRMode is either SSRDisabled or SSREnabled.
type SSRMode interface {
	Enabled() bool
	ssrMode()
}

// SSRDisabled is the client-only rendering mode.
type SSRDisabled struct{}

// Enabled returns false.
func (SSRDisabled) Enabled() bool { return false }
func (SSRDisabled) ssrMode()      {}

// SSREnabled is the server-side rendering mode.
type SSREnabled struct {
	Entrypoint      string
	BuildEntrypoint string
	Endpoint        string
	Policy          ssr.Policy
}

// Enabled returns true.
func (SSREnabled) Enabled() bool { return true }
func (SSREnabled) ssrMode()      {}

// EntrypointFor returns the development or built SSR entry.
func (s SSREnabled) EntrypointFor(dev bool) string {
	if dev {
		return s.Entrypoint
	}
	return s.BuildEntrypoint
}

// IndexPath returns the HTML template for the current mode.
func (c *Resolved) IndexPath() string {
	if c.Dev {
		return c.IndexEntrypoint
	}
	return c.IndexBuildEntrypoint
}

// SSREnabled returns the enabled SSR variant, if SSR is on.
func (c *Resolved) SSREnabled() (SSREnabled, bool) {
	s, ok := c.SSR.(SSREnabled)
	return s, ok
}

// Sentinel errors wrapped by Error.
var (
	// ErrSSREntrypoint is returned when SSR is enabled without entrypoints.
	ErrSSREntrypoint = errors.New("SSR enabled without entrypoint")

	// ErrSSRPolicy is returned for an unknown SSR failure policy.
	ErrSSRPolicy = errors.New("unknown SSR policy")

	// ErrSSREndpoint is returned for an unparseable render endpoint.
	ErrSSREndpoint = errors.New("invalid SSR endpoint")
)

// Error reports an invalid configuration. It is fatal at startup.
type Error struct {
	Field string
	Err   error
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Resolve applies defaults to cfg and validates the SSR declaration.
// Relative paths resolve against the working directory.
func Resolve(cfg Config) (*Resolved, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, &Error{Field: "cwd", Err: err}
	}
	return resolve(cfg, cwd)
}

func resolve(cfg Config, cwd string) (*Resolved, error) {
	out := &Resolved{
		RootElementID:        stringOr(cfg.RootElementID, DefaultRootElementID),
		AssetVersion:         stringOr(cfg.AssetVersion, DefaultAssetVersion),
		EncryptHistory:       boolOr(cfg.EncryptHistory, true),
		SharedData:           cfg.SharedData,
		IndexEntrypoint:      absPath(cwd, stringOr(cfg.IndexEntrypoint, DefaultIndexEntrypoint)),
		IndexBuildEntrypoint: absPath(cwd, stringOr(cfg.IndexBuildEntrypoint, DefaultIndexBuildEntrypoint)),
		Dev:                  cfg.Dev,
		BuildTool: ResolvedBuildTool{
			MiddlewareMode: boolOr(cfg.BuildTool.Server.MiddlewareMode, true),
			URL:            cfg.BuildTool.Server.URL,
			AppType:        stringOr(cfg.BuildTool.AppType, DefaultAppType),
			Extra:          cfg.BuildTool.Extra,
		},
		SSR: SSRDisabled{},
	}
	if out.SharedData == nil {
		out.SharedData = shared.Data{}
	}

	if !cfg.SSR.Enabled {
		return out, nil
	}

	if cfg.SSR.Entrypoint == "" {
		return nil, &Error{Field: "ssr.entrypoint", Err: ErrSSREntrypoint}
	}
	if cfg.SSR.BuildEntrypoint == "" {
		return nil, &Error{Field: "ssr.buildEntrypoint", Err: ErrSSREntrypoint}
	}

	policy := cfg.SSR.Policy
	if policy == "" {
		policy = ssr.PolicyStrict
	}
	if !policy.Valid() {
		return nil, &Error{Field: "ssr.policy", Err: fmt.Errorf("%w %q", ErrSSRPolicy, policy)}
	}

	endpoint := stringOr(cfg.SSR.Endpoint, DefaultSSREndpoint)
	if u, err := url.Parse(endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, &Error{Field: "ssr.endpoint", Err: fmt.Errorf("%w %q", ErrSSREndpoint, endpoint)}
	}

	out.SSR = SSREnabled{
		Entrypoint:      absPath(cwd, cfg.SSR.Entrypoint),
		BuildEntrypoint: absPath(cwd, cfg.SSR.BuildEntrypoint),
		Endpoint:        endpoint,
		Policy:          policy,
	}
	return out, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve(cfg Config) *Resolved {
	r, err := Resolve(cfg)
	if err != nil {
		panic(err)
	}
	return r
}

// Bool returns a pointer to b, for optional boolean fields.
func Bool(b bool) *bool {
	return &b
}

func stringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func absPath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
