package ssr

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vango-dev/inertia/pkg/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Policy decides what a render failure does.
type Policy string

const (
	// PolicyStrict surfaces render failures as *Error.
	PolicyStrict Policy = "strict"

	// PolicyDegrade falls back to client-side rendering.
	PolicyDegrade Policy = "degrade"
)

// Valid reports whether p is a known policy.
func (p Policy) Valid() bool {
	return p == PolicyStrict || p == PolicyDegrade
}

// Result is the renderer output for one page.
type Result struct {
	Head []string `json:"head"`
	Body string   `json:"body"`
}

// RenderFunc renders a page on the server. It must honor ctx.
type RenderFunc func(ctx context.Context, page *protocol.Page) (*Result, error)

// Observer is notified after every render attempt.
type Observer interface {
	ObserveRender(component string, d time.Duration, err error)
}

// Error reports a failed server-side render.
type Error struct {
	Component string
	Err       error
}

// Error returns the error message.
func (e *Error) Error() string {
	return fmt.Sprintf("ssr: render %q failed: %v", e.Component, e.Err)
}

// Unwrap returns the renderer's error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Dispatcher invokes the render function for full-document requests.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	render   RenderFunc
	policy   Policy
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(d *Dispatcher) {
		if p.Valid() {
			d.policy = p
		}
	}
}

// WithObserver sets a render observer, typically the metrics middleware.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) {
		d.observer = o
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l.With("component", "ssr")
		}
	}
}

// WithTracerProvider sets the provider used for render spans.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(d *Dispatcher) {
		if tp != nil {
			d.tracer = tp.Tracer(tracerName)
		}
	}
}

const tracerName = "github.com/vango-dev/inertia/pkg/ssr"

// NewDispatcher creates a dispatcher around render.
func NewDispatcher(render RenderFunc, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		render: render,
		policy: PolicyStrict,
		logger: slog.Default().With("component", "ssr"),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Policy returns the configured failure policy.
func (d *Dispatcher) Policy() Policy {
	return d.policy
}

// Render renders page. The render function receives a copy without SSR
// fields. Under PolicyDegrade a failure yields (nil, nil).
func (d *Dispatcher) Render(ctx context.Context, page *protocol.Page) (*Result, error) {
	ctx, span := d.tracer.Start(ctx, "inertia.ssr",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("inertia.component", page.Component)),
	)
	defer span.End()

	start := time.Now()
	res, err := d.call(ctx, page.WithoutSSR())
	if d.observer != nil {
		d.observer.ObserveRender(page.Component, time.Since(start), err)
	}

	if err == nil {
		span.SetStatus(codes.Ok, "")
		return res, nil
	}

	rerr := &Error{Component: page.Component, Err: err}
	span.RecordError(rerr)
	span.SetStatus(codes.Error, rerr.Error())

	if d.policy == PolicyDegrade && ctx.Err() == nil {
		d.logger.Warn("ssr failed, serving client-rendered document",
			"page", page.Component, "error", err)
		span.SetAttributes(attribute.Bool("inertia.ssr.degraded", true))
		return nil, nil
	}
	return nil, rerr
}

func (d *Dispatcher) call(ctx context.Context, page *protocol.Page) (res *Result, err error) {
	if d.render == nil {
		return nil, ErrNoRenderer
	}
	defer func() {
		if p := recover(); p != nil {
			res, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	res, err = d.render(ctx, page)
	if err == nil && res == nil {
		err = ErrEmptyResult
	}
	return res, err
}
