package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/vango-dev/inertia/pkg/protocol"
)

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusMiddleware_RecordsKinds(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		handler http.HandlerFunc
		kind    string
		code    string
	}{
		{
			name:   "inertia json",
			method: "GET",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(protocol.HeaderInertia, "true")
				w.Write([]byte(`{}`))
			},
			kind: KindInertia,
			code: "200",
		},
		{
			name:    "document",
			method:  "GET",
			handler: func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("<html>")) },
			kind:    KindDocument,
			code:    "200",
		},
		{
			name:   "version conflict",
			method: "GET",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set(protocol.HeaderLocation, "/x")
				w.WriteHeader(http.StatusConflict)
			},
			kind: KindVersionConflict,
			code: "409",
		},
		{
			name:    "redirect",
			method:  "PUT",
			handler: func(w http.ResponseWriter, r *http.Request) { http.Redirect(w, r, "/", http.StatusSeeOther) },
			kind:    KindRedirect,
			code:    "303",
		},
		{
			name:    "error",
			method:  "POST",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			kind:    KindError,
			code:    "500",
		},
		{
			name:    "plain conflict is not a version conflict",
			method:  "POST",
			handler: func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusConflict) },
			kind:    KindDocument,
			code:    "409",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Prometheus(WithRegistry(prometheus.NewRegistry()))
			h := m.Handler(tt.handler)

			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, "/x", nil))

			if got := metricCounterValue(t, m.requestsTotal.WithLabelValues(tt.kind, tt.method, tt.code)); got != 1 {
				t.Errorf("requests_total(%s,%s,%s) = %v, want 1", tt.kind, tt.method, tt.code, got)
			}
			if got := metricHistogramCount(t, m.requestDuration.WithLabelValues(tt.kind)); got != 1 {
				t.Errorf("request_duration_seconds(%s) count = %d, want 1", tt.kind, got)
			}
			wantConflicts := 0.0
			if tt.kind == KindVersionConflict {
				wantConflicts = 1
			}
			if got := metricCounterValue(t, m.versionConflicts); got != wantConflicts {
				t.Errorf("version_conflicts_total = %v, want %v", got, wantConflicts)
			}
			if got := metricGaugeValue(t, m.inFlight); got != 0 {
				t.Errorf("requests_in_flight = %v after request, want 0", got)
			}
		})
	}
}

func TestPrometheusMiddleware_InFlight(t *testing.T) {
	m := Prometheus(WithRegistry(prometheus.NewRegistry()))
	var during float64
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		during = metricGaugeValue(t, m.inFlight)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if during != 1 {
		t.Errorf("requests_in_flight during request = %v, want 1", during)
	}
}

func TestPrometheusSameRegistryReused(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := Prometheus(WithRegistry(reg))
	b := Prometheus(WithRegistry(reg), WithNamespace("other"))
	if a != b {
		t.Error("Prometheus() registered a second collector set on the same registry")
	}
}

func TestObserveRender(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := Prometheus(WithRegistry(reg), WithNamespace("shop"))

	m.ObserveRender("Home", 20*time.Millisecond, nil)
	m.ObserveRender("Home", 5*time.Millisecond, errors.New("down"))
	m.ObserveRender("Cart", time.Millisecond, nil)

	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("Home", "ok")); got != 1 {
		t.Errorf("ssr_renders_total(Home,ok) = %v", got)
	}
	if got := metricCounterValue(t, m.rendersTotal.WithLabelValues("Home", "error")); got != 1 {
		t.Errorf("ssr_renders_total(Home,error) = %v", got)
	}
	if got := metricHistogramCount(t, m.renderDuration.WithLabelValues("ok")); got != 2 {
		t.Errorf("ssr_render_duration_seconds(ok) count = %d, want 2", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "shop_ssr_renders_total" {
			found = true
		}
	}
	if !found {
		t.Error("shop_ssr_renders_total not registered under the configured namespace")
	}
}

func TestStatusRecorderDefaults(t *testing.T) {
	rec := newStatusRecorder(httptest.NewRecorder())
	if rec.Status() != http.StatusOK {
		t.Errorf("Status() = %d before write, want 200", rec.Status())
	}
	rec.WriteHeader(http.StatusNotFound)
	rec.WriteHeader(http.StatusOK)
	if rec.Status() != http.StatusNotFound {
		t.Errorf("Status() = %d, want first written status", rec.Status())
	}
}
