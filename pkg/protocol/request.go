package protocol

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// Request is a read-only view of an incoming HTTP request, exposing the
// protocol signals the negotiator and shared-data factories need.
type Request struct {
	r *http.Request
}

// NewRequest wraps r. The underlying request is never modified.
func NewRequest(r *http.Request) *Request {
	return &Request{r: r}
}

// Context returns the request context.
func (q *Request) Context() context.Context { return q.r.Context() }

// Method returns the HTTP method.
func (q *Request) Method() string { return q.r.Method }

// Path returns the URL path.
func (q *Request) Path() string { return q.r.URL.Path }

// Query returns a copy of the parsed query string.
func (q *Request) Query() url.Values { return q.r.URL.Query() }

// Header returns the first value of the named header.
func (q *Request) Header(name string) string { return q.r.Header.Get(name) }

// Raw returns the wrapped request for collaborators that need the body or
// cookies. Callers must treat it as read-only.
func (q *Request) Raw() *http.Request { return q.r }

// URL returns the canonical request path plus query, as placed in the
// Page Object and the stale-version location header.
func (q *Request) URL() string {
	u := q.r.URL.RequestURI()
	if u == "" {
		return "/"
	}
	return u
}

// IsInertia reports whether the presence marker was sent.
func (q *Request) IsInertia() bool {
	return hasHeader(q.r.Header, HeaderInertia)
}

// Version returns the client's declared asset version.
func (q *Request) Version() string { return q.r.Header.Get(HeaderVersion) }

// PartialComponent returns the partial-reload target component.
func (q *Request) PartialComponent() string {
	return strings.TrimSpace(q.r.Header.Get(HeaderPartialComponent))
}

// PartialOnly returns the keys listed in the only selector, and whether the
// header was sent at all.
func (q *Request) PartialOnly() ([]string, bool) {
	if !hasHeader(q.r.Header, HeaderPartialOnly) {
		return nil, false
	}
	return SplitKeys(q.r.Header.Get(HeaderPartialOnly)), true
}

// PartialExcept returns the keys listed in the except selector, and
// whether the header was sent at all.
func (q *Request) PartialExcept() ([]string, bool) {
	if !hasHeader(q.r.Header, HeaderPartialExcept) {
		return nil, false
	}
	return SplitKeys(q.r.Header.Get(HeaderPartialExcept)), true
}

// Reset reports whether the reset-partial marker was sent.
func (q *Request) Reset() bool {
	return hasHeader(q.r.Header, HeaderReset)
}

// ErrorBag returns the error bag name, if any. The negotiator does not
// interpret it; shared-data factories use it to scope validation errors.
func (q *Request) ErrorBag() string { return q.r.Header.Get(HeaderErrorBag) }
