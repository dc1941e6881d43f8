// Package protocol defines the Inertia page protocol vocabulary: the
// header names exchanged with the client runtime, the Page Object payload,
// and a read-only request view used by everything that makes decisions
// from those headers.
//
// # Request Flow
//
// A first visit carries no X-Inertia header and receives a full HTML
// document with the Page Object embedded. Subsequent visits carry
//
//	X-Inertia: true
//	X-Inertia-Version: <loaded asset version>
//
// and receive the Page Object as JSON:
//
//	{
//	  "component": "Users/Index",
//	  "props": {"users": [...]},
//	  "url": "/users?page=2",
//	  "version": "v1",
//	  "encryptHistory": true,
//	  "clearHistory": false
//	}
//
// Partial reloads add X-Inertia-Partial-Component together with either
// X-Inertia-Partial-Data or X-Inertia-Partial-Except.
package protocol
