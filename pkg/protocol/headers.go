package protocol

import (
	"net/http"
	"strings"
)

// Protocol header names. Lookups go through http.Header, which
// canonicalizes names, so incoming headers match regardless of case.
const (
	// HeaderInertia marks a request as protocol-aware. Responses echo it.
	HeaderInertia = "X-Inertia"

	// HeaderReset asks the server to replace, not merge, mergeable props.
	HeaderReset = "X-Inertia-Reset"

	// HeaderVersion carries the client's loaded asset version on requests
	// and the server's authoritative version on responses.
	HeaderVersion = "X-Inertia-Version"

	// HeaderLocation is sent with 409 to force a full browser visit.
	HeaderLocation = "X-Inertia-Location"

	// HeaderErrorBag scopes validation errors to a named form.
	HeaderErrorBag = "X-Inertia-Error-Bag"

	// HeaderPartialOnly lists the prop keys a partial reload wants.
	HeaderPartialOnly = "X-Inertia-Partial-Data"

	// HeaderPartialExcept lists the prop keys a partial reload skips.
	HeaderPartialExcept = "X-Inertia-Partial-Except"

	// HeaderPartialComponent names the component a partial reload targets.
	HeaderPartialComponent = "X-Inertia-Partial-Component"
)

// Vary is the header value every negotiated response must vary on.
const Vary = HeaderInertia

// SplitKeys parses a comma-separated key list header value.
// Blank entries are dropped. Returns nil for an empty value.
func SplitKeys(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	keys := make([]string, 0, len(parts))
	for _, p := range parts {
		if k := strings.TrimSpace(p); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	return keys
}

// hasHeader reports whether the header is present at all, even if empty.
func hasHeader(h http.Header, name string) bool {
	_, ok := h[http.CanonicalHeaderKey(name)]
	return ok
}
