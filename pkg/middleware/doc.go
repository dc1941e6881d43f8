// Package middleware provides observability middleware for Inertia
// applications.
//
// # Prometheus Metrics
//
// The Prometheus middleware counts responses by negotiated kind (inertia,
// document, version_conflict, redirect, error) and times them. The same
// value observes server-side renders:
//
//	m := middleware.Prometheus(middleware.WithNamespace("shop"))
//	dispatcher := ssr.NewDispatcher(render, ssr.WithObserver(m))
//
//	r := chi.NewRouter()
//	r.Use(m.Handler)
//	r.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// The OpenTelemetry middleware opens a server span per request, named
// after the chi route pattern once routing has run, and annotates it with
// the Inertia request headers:
//
//	r.Use(middleware.OpenTelemetry(middleware.WithTracerName("shop")))
//
// Handlers reach the span through the request context:
//
//	span := trace.SpanFromContext(r.Context())
package middleware
