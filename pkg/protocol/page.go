package protocol

// Page is the Page Object sent to the client runtime.
//
// SSRHead and SSRBody are populated only when server-side rendering ran
// for a full-document response. They are never part of the JSON payload;
// the document assembler splices them into the HTML directly.
type Page struct {
	// Component is the client-side view to render.
	Component string `json:"component"`

	// Props are the merged and filtered page props.
	Props map[string]any `json:"props"`

	// URL is the canonical request path and query.
	URL string `json:"url"`

	// Version is the server's asset version.
	Version string `json:"version"`

	// DeferredProps maps a group name to the prop keys the client should
	// fetch in follow-up partial reloads.
	DeferredProps map[string][]string `json:"deferredProps,omitempty"`

	// MergeProps lists props whose client-side values are merged rather
	// than replaced.
	MergeProps []string `json:"mergeProps,omitempty"`

	EncryptHistory bool `json:"encryptHistory"`
	ClearHistory   bool `json:"clearHistory"`

	SSRHead []string `json:"-"`
	SSRBody string   `json:"-"`
}

// HasSSR reports whether SSR output is attached.
func (p *Page) HasSSR() bool {
	return p != nil && (p.SSRBody != "" || len(p.SSRHead) > 0)
}

// WithoutSSR returns a shallow copy with the SSR fields cleared.
func (p *Page) WithoutSSR() *Page {
	cp := *p
	cp.SSRHead = nil
	cp.SSRBody = ""
	return &cp
}
