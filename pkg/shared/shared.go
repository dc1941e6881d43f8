// Package shared resolves data that is merged into the props of every page.
//
// Values are either literals, used as-is, or a Factory evaluated once per
// request with the request's context and a read-only view of the request:
//
//	data := shared.Data{
//	    "app": map[string]any{"name": "Acme"},
//	    "user": shared.Factory(func(ctx context.Context, r *protocol.Request) (any, error) {
//	        return users.FromContext(ctx), nil
//	    }),
//	}
//
// Factories run concurrently. Resolve waits for all of them and fails as
// soon as one fails; there is no default substitution for a failed key.
// Factories must not cache across requests.
package shared

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/vango-dev/inertia/pkg/protocol"
	"golang.org/x/sync/errgroup"
)

// Factory produces a shared value for one request.
type Factory func(ctx context.Context, r *protocol.Request) (any, error)

// Data maps keys to literal values or Factory values.
type Data map[string]any

// Error reports a failed shared-data factory.
type Error struct {
	Key string
	Err error
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("shared: factory %q failed: %v", e.Key, e.Err)
}

// Unwrap returns the factory's error.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrNilFactory is reported when a key holds a nil Factory.
var ErrNilFactory = errors.New("shared: nil factory")

// Resolve evaluates data for the request r. The result has exactly the
// configured keys. Literal values are not copied deeply.
func Resolve(ctx context.Context, data Data, r *protocol.Request) (map[string]any, error) {
	out := make(map[string]any, len(data))
	if len(data) == 0 {
		return out, nil
	}

	factories := make(map[string]Factory)
	for key, value := range data {
		fn, ok := asFactory(value)
		if !ok {
			out[key] = value
			continue
		}
		if fn == nil {
			return nil, &Error{Key: key, Err: ErrNilFactory}
		}
		factories[key] = fn
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for key, fn := range factories {
		g.Go(func() error {
			v, err := call(gctx, fn, r)
			if err != nil {
				return &Error{Key: key, Err: err}
			}
			mu.Lock()
			out[key] = v
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func asFactory(v any) (Factory, bool) {
	switch fn := v.(type) {
	case Factory:
		return fn, true
	case func(context.Context, *protocol.Request) (any, error):
		return fn, true
	}
	return nil, false
}

// call runs fn and converts a panic into an error so one bad factory
// fails its own request only.
func call(ctx context.Context, fn Factory, r *protocol.Request) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return fn(ctx, r)
}

// Registry holds the process-wide shared data definitions. It is
// immutable; With returns an extended copy.
type Registry struct {
	data Data
}

// NewRegistry creates a registry over a copy of data.
func NewRegistry(data Data) *Registry {
	return &Registry{data: maps.Clone(data)}
}

// With returns a new registry with key set to value.
func (reg *Registry) With(key string, value any) *Registry {
	next := maps.Clone(reg.data)
	if next == nil {
		next = make(Data, 1)
	}
	next[key] = value
	return &Registry{data: next}
}

// Len returns the number of configured keys.
func (reg *Registry) Len() int {
	if reg == nil {
		return 0
	}
	return len(reg.data)
}

// Resolve evaluates the registry for one request.
func (reg *Registry) Resolve(ctx context.Context, r *protocol.Request) (map[string]any, error) {
	if reg == nil {
		return map[string]any{}, nil
	}
	return Resolve(ctx, reg.data, r)
}
