package inertia

import (
	"context"
	"errors"
	"net/http"

	"github.com/vango-dev/inertia/pkg/negotiator"
	"github.com/vango-dev/inertia/pkg/protocol"
)

// RenderOption adjusts the page passed to the negotiator.
type RenderOption func(*negotiator.Page)

// WithStatus sets the status of a JSON response, for example 422 after a
// failed form submission.
func WithStatus(code int) RenderOption {
	return func(p *negotiator.Page) {
		p.Status = code
	}
}

// WithDeferred omits keys from the first render. The client fetches each
// group in a follow-up partial reload.
func WithDeferred(group string, keys ...string) RenderOption {
	return func(p *negotiator.Page) {
		if p.Deferred == nil {
			p.Deferred = make(map[string][]string)
		}
		p.Deferred[group] = append(p.Deferred[group], keys...)
	}
}

// WithMerge marks keys whose values the client merges instead of replaces.
func WithMerge(keys ...string) RenderOption {
	return func(p *negotiator.Page) {
		p.Merge = append(p.Merge, keys...)
	}
}

// WithEncryptHistory overrides history encryption for this page.
func WithEncryptHistory(encrypt bool) RenderOption {
	return func(p *negotiator.Page) {
		p.EncryptHistory = &encrypt
	}
}

// WithClearHistory asks the client to clear encrypted history.
func WithClearHistory() RenderOption {
	return func(p *negotiator.Page) {
		p.ClearHistory = true
	}
}

// Render negotiates and writes the response for component. Failures are
// logged and answered with a 500.
func (i *Inertia) Render(w http.ResponseWriter, r *http.Request, component string, props map[string]any, opts ...RenderOption) {
	if err := i.RenderPage(w, r, component, props, opts...); err != nil {
		i.fail(w, r, err)
	}
}

// RenderPage is Render without the error response, for callers that
// handle failures themselves. Nothing is written when it returns an error.
func (i *Inertia) RenderPage(w http.ResponseWriter, r *http.Request, component string, props map[string]any, opts ...RenderOption) error {
	page := negotiator.Page{Component: component, Props: props}
	for _, opt := range opts {
		opt(&page)
	}
	stateFrom(r.Context()).apply(&page)

	out, err := i.negotiator.Negotiate(r.Context(), protocol.NewRequest(r), page)
	if err != nil {
		return err
	}
	if out.Kind != negotiator.KindDocument {
		return out.Write(w)
	}

	html, err := i.document.render(out.Page, i.script(out.Page.Version))
	if err != nil {
		return err
	}
	out.ApplyHeaders(w)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(out.Status)
	_, err = w.Write(html)
	return err
}

func (i *Inertia) script(version string) string {
	if !i.cfg.Dev || i.devScript == nil {
		return ""
	}
	return i.devScript(version)
}

// Location sends the client to url with a full page visit. Requests from
// the client runtime get a 409 with the location header; other requests
// get an ordinary redirect.
func (i *Inertia) Location(w http.ResponseWriter, r *http.Request, url string) {
	if protocol.NewRequest(r).IsInertia() {
		w.Header().Set(protocol.HeaderLocation, url)
		w.WriteHeader(http.StatusConflict)
		return
	}
	http.Redirect(w, r, url, http.StatusFound)
}

// Redirect redirects with 302, or 303 after PUT, PATCH and DELETE so the
// client follows with a GET.
func (i *Inertia) Redirect(w http.ResponseWriter, r *http.Request, url string) {
	http.Redirect(w, r, url, negotiator.RedirectStatus(r.Method, http.StatusFound))
}

// Back redirects to the referring page, or to fallback without one.
func (i *Inertia) Back(w http.ResponseWriter, r *http.Request, fallback string) {
	url := r.Referer()
	if url == "" {
		url = fallback
	}
	i.Redirect(w, r, url)
}

func (i *Inertia) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		i.logger.Debug("request abandoned", "url", r.URL.RequestURI())
		return
	}
	i.logger.Error("render failed", "url", r.URL.RequestURI(), "error", err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
