// Package negotiator implements the page-protocol negotiation at the core
// of the adapter.
//
// For each request it decides between three response shapes:
//
//   - KindDocument: no X-Inertia header; the Page Object is embedded in a
//     full HTML document, rendered server-side when SSR is enabled.
//   - KindVersionConflict: a GET whose X-Inertia-Version differs from the
//     server's asset version; 409 with X-Inertia-Location and no body.
//   - KindJSON: the Page Object as the response body.
//
// The decision is a small table evaluated top to bottom (see decision.go),
// so every branch can be tested on its own.
//
// # Props
//
// Final props are shared data, overlaid by page props, overlaid by
// request-scoped props. Deferred and optional props are left out of the
// first render. A partial reload whose X-Inertia-Partial-Component matches
// the page then selects props with X-Inertia-Partial-Data (dotted paths
// select nested values) or X-Inertia-Partial-Except. A mismatched target
// returns the full page.
//
//	n := negotiator.New(cfg, negotiator.WithDispatcher(d))
//	out, err := n.Negotiate(ctx, protocol.NewRequest(r), negotiator.Page{
//	    Component: "Users/Show",
//	    Props:     map[string]any{"user": user},
//	})
package negotiator
