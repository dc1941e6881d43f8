package negotiator

// Page is the caller's description of the page to render.
type Page struct {
	// Component names the client-side view. Required.
	Component string

	// Props are the page props. Values may be wrapped with the props
	// package to defer, merge or lazily evaluate them.
	Props map[string]any

	// RequestProps are request-scoped props; they win over Props.
	RequestProps map[string]any

	// Deferred maps a group name to plain prop keys that are omitted from
	// the first render.
	Deferred map[string][]string

	// Merge lists plain prop keys to merge client-side.
	Merge []string

	// EncryptHistory overrides the configured default when set.
	EncryptHistory *bool

	// ClearHistory asks the client to wipe encrypted history state.
	ClearHistory bool

	// Status overrides the 200 status of a JSON response.
	Status int
}
