package negotiator

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/vango-dev/inertia/pkg/protocol"
)

// Kind is the response shape chosen for a request.
type Kind int

const (
	// KindDocument is a full HTML document embedding the Page Object.
	KindDocument Kind = iota

	// KindJSON is the Page Object as a JSON body.
	KindJSON

	// KindVersionConflict tells the client to reload the whole document.
	KindVersionConflict
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindJSON:
		return "json"
	case KindVersionConflict:
		return "version_conflict"
	default:
		return "unknown"
	}
}

// ErrNotJSON is returned by Write for document outcomes, which the
// document assembler writes instead.
var ErrNotJSON = errors.New("negotiator: document outcome has no JSON body")

// Outcome is the negotiated response for one request.
type Outcome struct {
	Kind   Kind
	Status int
	Header http.Header

	// Page is nil for version conflicts.
	Page *protocol.Page

	// Rule names the decision table row that produced the outcome.
	Rule string
}

// Write writes a JSON or version-conflict outcome to w.
func (o *Outcome) Write(w http.ResponseWriter) error {
	if o.Kind == KindDocument {
		return ErrNotJSON
	}
	o.applyHeaders(w)
	if o.Kind == KindVersionConflict {
		w.WriteHeader(o.Status)
		return nil
	}

	data, err := json.Marshal(o.Page)
	if err != nil {
		return err
	}
	w.WriteHeader(o.Status)
	_, err = w.Write(data)
	return err
}

// applyHeaders copies the outcome headers onto w.
func (o *Outcome) applyHeaders(w http.ResponseWriter) {
	h := w.Header()
	for k, vs := range o.Header {
		h.Del(k)
		for _, v := range vs {
			h.Add(k, v)
		}
	}
}

// ApplyHeaders copies the outcome headers onto w. Document writers call it
// before writing their own body.
func (o *Outcome) ApplyHeaders(w http.ResponseWriter) {
	o.applyHeaders(w)
}

// RedirectStatus normalizes a redirect status for a request method. The
// implicit 302 after a PUT, PATCH or DELETE becomes 303 so the client
// follows with a GET. Any other status is kept as the caller set it.
func RedirectStatus(method string, status int) int {
	if status != http.StatusFound {
		return status
	}
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
		return http.StatusSeeOther
	}
	return status
}
