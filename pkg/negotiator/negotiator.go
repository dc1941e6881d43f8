package negotiator

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sort"

	"github.com/vango-dev/inertia/pkg/config"
	"github.com/vango-dev/inertia/pkg/props"
	"github.com/vango-dev/inertia/pkg/protocol"
	"github.com/vango-dev/inertia/pkg/shared"
	"github.com/vango-dev/inertia/pkg/ssr"
)

// Negotiator decides the response shape for a request and builds the
// Page Object. It holds only immutable configuration and is safe for
// concurrent use.
type Negotiator struct {
	cfg        *config.Resolved
	shared     *shared.Registry
	dispatcher *ssr.Dispatcher
	version    func() string
	logger     *slog.Logger
}

// Option configures a Negotiator.
type Option func(*Negotiator)

// WithDispatcher enables SSR for full-document responses. It only takes
// effect when the configuration has SSR enabled.
func WithDispatcher(d *ssr.Dispatcher) Option {
	return func(n *Negotiator) {
		n.dispatcher = d
	}
}

// WithShared replaces the registry built from the configured shared data.
func WithShared(reg *shared.Registry) Option {
	return func(n *Negotiator) {
		if reg != nil {
			n.shared = reg
		}
	}
}

// WithVersion replaces the configured asset version with a function, for
// versions that change at runtime (manifest hashing in development).
func WithVersion(fn func() string) Option {
	return func(n *Negotiator) {
		if fn != nil {
			n.version = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Negotiator) {
		if l != nil {
			n.logger = l.With("component", "negotiator")
		}
	}
}

// New creates a negotiator for cfg.
func New(cfg *config.Resolved, opts ...Option) *Negotiator {
	n := &Negotiator{
		cfg:    cfg,
		shared: shared.NewRegistry(cfg.SharedData),
		logger: slog.Default().With("component", "negotiator"),
	}
	version := cfg.AssetVersion
	n.version = func() string { return version }
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Version returns the current asset version.
func (n *Negotiator) Version() string {
	return n.version()
}

// Negotiate classifies r and builds the outcome for page.
//
// A stale client version on a GET produces a KindVersionConflict outcome,
// not an error. Errors are *ComponentError, *shared.Error, *PropError,
// *ssr.Error, or the context error when the request was abandoned.
func (n *Negotiator) Negotiate(ctx context.Context, r *protocol.Request, page Page) (*Outcome, error) {
	version := n.version()
	d := classify(readSignals(r, page.Component, version))

	if d.kind == KindVersionConflict {
		n.logger.Debug("stale asset version", "url", r.URL(), "client", r.Version(), "server", version)
		h := make(http.Header)
		h.Set(protocol.HeaderLocation, r.URL())
		return &Outcome{Kind: KindVersionConflict, Status: http.StatusConflict, Header: h, Rule: d.rule}, nil
	}

	if page.Component == "" {
		return nil, &ComponentError{URL: r.URL(), Err: ErrNoComponent}
	}

	p, err := n.build(ctx, r, page, d, version)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Kind: d.kind, Status: http.StatusOK, Header: make(http.Header), Page: p, Rule: d.rule}
	out.Header.Set("Vary", protocol.Vary)

	switch d.kind {
	case KindJSON:
		if page.Status != 0 {
			out.Status = page.Status
		}
		out.Header.Set(protocol.HeaderInertia, "true")
		out.Header.Set(protocol.HeaderVersion, version)
		out.Header.Set("Content-Type", "application/json")
	case KindDocument:
		if err := n.render(ctx, p); err != nil {
			return nil, err
		}
	}

	n.logger.Debug("negotiated", "component", p.Component, "kind", d.kind.String(), "rule", d.rule, "url", p.URL)
	return out, nil
}

// render attaches SSR output to a document page when SSR is enabled.
func (n *Negotiator) render(ctx context.Context, p *protocol.Page) error {
	if n.dispatcher == nil || !n.cfg.SSR.Enabled() {
		return nil
	}
	res, err := n.dispatcher.Render(ctx, p)
	if err != nil {
		return err
	}
	if res != nil {
		p.SSRHead = res.Head
		p.SSRBody = res.Body
	}
	return nil
}

// build assembles the Page Object.
func (n *Negotiator) build(ctx context.Context, r *protocol.Request, page Page, d decision, version string) (*protocol.Page, error) {
	sharedProps, err := n.shared.Resolve(ctx, r)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]any, len(sharedProps)+len(page.Props)+len(page.RequestProps))
	maps.Copy(merged, sharedProps)
	maps.Copy(merged, page.Props)
	maps.Copy(merged, page.RequestProps)

	cls := classifyProps(merged, page)

	var selected map[string]any
	switch d.partial {
	case partialOnly:
		only, _ := r.PartialOnly()
		selected, err = selectOnly(ctx, merged, newSelector(only))
	case partialExcept:
		except, _ := r.PartialExcept()
		selected, err = selectExcept(ctx, merged, cls, newSelector(except))
	default:
		selected, err = selectExcept(ctx, merged, cls, selector{})
	}
	if err != nil {
		return nil, err
	}

	p := &protocol.Page{
		Component:      page.Component,
		Props:          selected,
		URL:            r.URL(),
		Version:        version,
		EncryptHistory: n.cfg.EncryptHistory,
		ClearHistory:   page.ClearHistory,
	}
	if page.EncryptHistory != nil {
		p.EncryptHistory = *page.EncryptHistory
	}
	if d.partial == partialNone {
		p.DeferredProps = cls.deferredGroups()
	}
	if !r.Reset() {
		p.MergeProps = cls.mergeKeys(selected, p.DeferredProps)
	}
	return p, nil
}

// classification records per-key prop treatment.
type classification struct {
	deferred map[string]string // key -> group
	optional map[string]bool
	merge    map[string]bool
}

func classifyProps(merged map[string]any, page Page) classification {
	cls := classification{
		deferred: make(map[string]string),
		optional: make(map[string]bool),
		merge:    make(map[string]bool),
	}
	for group, keys := range page.Deferred {
		if group == "" {
			group = props.DefaultGroup
		}
		for _, k := range keys {
			if _, ok := merged[k]; ok {
				cls.deferred[k] = group
			}
		}
	}
	for _, k := range page.Merge {
		cls.merge[k] = true
	}
	for k, v := range merged {
		info := props.Inspect(v)
		if info.Deferred {
			cls.deferred[k] = info.Group
		}
		if info.Optional {
			cls.optional[k] = true
		}
		if info.Merge {
			cls.merge[k] = true
		}
	}
	return cls
}

func (c classification) excluded(key string) bool {
	_, deferred := c.deferred[key]
	return deferred || c.optional[key]
}

func (c classification) deferredGroups() map[string][]string {
	if len(c.deferred) == 0 {
		return nil
	}
	groups := make(map[string][]string)
	for k, g := range c.deferred {
		groups[g] = append(groups[g], k)
	}
	for _, keys := range groups {
		sort.Strings(keys)
	}
	return groups
}

func (c classification) mergeKeys(selected map[string]any, deferred map[string][]string) []string {
	var keys []string
	for k := range c.merge {
		if _, ok := selected[k]; ok {
			keys = append(keys, k)
			continue
		}
		if g, ok := c.deferred[k]; ok && slices.Contains(deferred[g], k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// selectOnly keeps the named keys, including deferred and optional ones.
func selectOnly(ctx context.Context, merged map[string]any, sel selector) (map[string]any, error) {
	out := make(map[string]any)
	for _, k := range sortedKeys(merged) {
		if !sel.names(k) {
			continue
		}
		v, err := value(ctx, k, merged[k])
		if err != nil {
			return nil, err
		}
		if sel.whole[k] {
			out[k] = v
			continue
		}
		if sub, ok := pick(v, sel.nested[k]); ok {
			out[k] = sub
		}
	}
	return out, nil
}

// selectExcept drops excluded (deferred, optional) keys and the named keys.
// An empty selector yields the full page props.
func selectExcept(ctx context.Context, merged map[string]any, cls classification, sel selector) (map[string]any, error) {
	out := make(map[string]any, len(merged))
	for _, k := range sortedKeys(merged) {
		if cls.excluded(k) || sel.whole[k] {
			continue
		}
		v, err := value(ctx, k, merged[k])
		if err != nil {
			return nil, err
		}
		if subs, ok := sel.nested[k]; ok {
			v = drop(v, subs)
		}
		out[k] = v
	}
	return out, nil
}

func value(ctx context.Context, key string, v any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resolved, err := props.Value(ctx, v)
	if err != nil {
		return nil, &PropError{Key: key, Err: err}
	}
	return resolved, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
