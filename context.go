package inertia

import (
	"context"
	"maps"
	"net/http"
	"sync"

	"github.com/vango-dev/inertia/pkg/negotiator"
	"github.com/vango-dev/inertia/pkg/protocol"
)

type stateKey struct{}

// state holds request-scoped props and history overrides set by handlers
// and middleware earlier in the chain.
type state struct {
	mu             sync.Mutex
	props          map[string]any
	encryptHistory *bool
	clearHistory   bool
}

func stateFrom(ctx context.Context) *state {
	s, _ := ctx.Value(stateKey{}).(*state)
	return s
}

func (s *state) apply(page *negotiator.Page) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.props) > 0 {
		rp := maps.Clone(s.props)
		maps.Copy(rp, page.RequestProps)
		page.RequestProps = rp
	}
	if s.encryptHistory != nil && page.EncryptHistory == nil {
		v := *s.encryptHistory
		page.EncryptHistory = &v
	}
	if s.clearHistory {
		page.ClearHistory = true
	}
}

// WithContext returns a copy of ctx carrying fresh request state. The
// middleware does this for every request; call it directly when rendering
// outside the middleware.
func WithContext(ctx context.Context) context.Context {
	if stateFrom(ctx) != nil {
		return ctx
	}
	return context.WithValue(ctx, stateKey{}, &state{})
}

// Share adds a prop to every page rendered for the request carried by
// ctx. It reports false when ctx has no request state.
func Share(ctx context.Context, key string, value any) bool {
	s := stateFrom(ctx)
	if s == nil {
		return false
	}
	s.mu.Lock()
	if s.props == nil {
		s.props = make(map[string]any)
	}
	s.props[key] = value
	s.mu.Unlock()
	return true
}

// Shared returns a copy of the props shared for the request.
func Shared(ctx context.Context) map[string]any {
	s := stateFrom(ctx)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.props)
}

// EncryptHistory overrides the configured history encryption for the
// request.
func EncryptHistory(ctx context.Context, encrypt bool) bool {
	s := stateFrom(ctx)
	if s == nil {
		return false
	}
	s.mu.Lock()
	s.encryptHistory = &encrypt
	s.mu.Unlock()
	return true
}

// ClearHistory asks the client to clear its encrypted history state. It
// applies to pages rendered for this request only; a redirect starts a new
// request with fresh state.
func ClearHistory(ctx context.Context) bool {
	s := stateFrom(ctx)
	if s == nil {
		return false
	}
	s.mu.Lock()
	s.clearHistory = true
	s.mu.Unlock()
	return true
}

// Middleware attaches request state and normalizes redirects after
// PUT, PATCH and DELETE visits from the client runtime.
func (i *Inertia) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(WithContext(r.Context()))
		if protocol.NewRequest(r).IsInertia() {
			w = &redirectWriter{ResponseWriter: w, method: r.Method}
		}
		next.ServeHTTP(w, r)
	})
}

// redirectWriter rewrites the status of redirects per method.
type redirectWriter struct {
	http.ResponseWriter
	method string
}

func (w *redirectWriter) WriteHeader(code int) {
	w.ResponseWriter.WriteHeader(negotiator.RedirectStatus(w.method, code))
}

func (w *redirectWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Flush implements http.Flusher when the wrapped writer does.
func (w *redirectWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
