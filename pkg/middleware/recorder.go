package middleware

import (
	"net/http"

	"github.com/vango-dev/inertia/pkg/protocol"
)

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func newStatusRecorder(w http.ResponseWriter) *statusRecorder {
	return &statusRecorder{ResponseWriter: w}
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Response kinds used as metric labels and span attributes.
const (
	KindInertia         = "inertia"
	KindDocument        = "document"
	KindVersionConflict = "version_conflict"
	KindRedirect        = "redirect"
	KindError           = "error"
)

// responseKind classifies a finished response from its status and headers.
func responseKind(status int, h http.Header) string {
	switch {
	case status == http.StatusConflict && h.Get(protocol.HeaderLocation) != "":
		return KindVersionConflict
	case status >= 500:
		return KindError
	case status >= 300 && status < 400:
		return KindRedirect
	case h.Get(protocol.HeaderInertia) == "true":
		return KindInertia
	default:
		return KindDocument
	}
}
