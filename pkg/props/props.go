// Package props provides wrappers that classify individual page props.
//
//	inertia.Render(w, r, "Dashboard", map[string]any{
//	    "user":   user,                                // always sent
//	    "stats":  props.Func(loadStats),               // sent, evaluated lazily
//	    "feed":   props.Defer(loadFeed),               // omitted, fetched after first render
//	    "audit":  props.Defer(loadAudit, "sidebar"),   // deferred in group "sidebar"
//	    "posts":  props.Merge(posts),                  // merged client-side
//	    "export": props.Optional(buildExport),         // only when asked for by name
//	})
//
// Lazy values are evaluated only when the prop survives partial-reload
// filtering.
package props

import (
	"context"
	"fmt"
)

// DefaultGroup is the deferred group used when none is given.
const DefaultGroup = "default"

// Func is a lazily evaluated prop value.
type Func func(ctx context.Context) (any, error)

// Deferred is omitted from the first render of a page and listed in the
// page's deferredProps instead.
type Deferred struct {
	Fn    Func
	Group string
	merge bool
}

// Defer wraps fn as a deferred prop. The optional group names the batch
// of props the client fetches together.
func Defer(fn Func, group ...string) *Deferred {
	g := DefaultGroup
	if len(group) > 0 && group[0] != "" {
		g = group[0]
	}
	return &Deferred{Fn: fn, Group: g}
}

// Merge marks the deferred prop as mergeable once loaded.
func (d *Deferred) Merge() *Deferred {
	d.merge = true
	return d
}

// OptionalProp is sent only when a partial reload names it explicitly.
type OptionalProp struct {
	Fn Func
}

// Optional wraps fn as an optional prop.
func Optional(fn Func) *OptionalProp {
	return &OptionalProp{Fn: fn}
}

// Merged is a prop whose client-side value is merged with, not replaced
// by, the new value.
type Merged struct {
	Value any
}

// Merge wraps v as a mergeable prop. v may be a Func.
func Merge(v any) *Merged {
	return &Merged{Value: v}
}

// Info describes how a prop value is classified.
type Info struct {
	Deferred bool
	Group    string
	Optional bool
	Merge    bool
}

// Excluded reports whether the prop is left out unless requested by name.
func (i Info) Excluded() bool {
	return i.Deferred || i.Optional
}

// Inspect classifies v.
func Inspect(v any) Info {
	switch p := v.(type) {
	case *Deferred:
		return Info{Deferred: true, Group: p.Group, Merge: p.merge}
	case *OptionalProp:
		return Info{Optional: true}
	case *Merged:
		return Info{Merge: true}
	}
	return Info{}
}

// Value unwraps v and evaluates lazy values.
func Value(ctx context.Context, v any) (any, error) {
	switch p := v.(type) {
	case *Deferred:
		return call(ctx, p.Fn)
	case *OptionalProp:
		return call(ctx, p.Fn)
	case *Merged:
		return Value(ctx, p.Value)
	case Func:
		return call(ctx, p)
	case func(context.Context) (any, error):
		return call(ctx, p)
	}
	return v, nil
}

func call(ctx context.Context, fn Func) (v any, err error) {
	if fn == nil {
		return nil, nil
	}
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("props: panic: %v", p)
		}
	}()
	return fn(ctx)
}
