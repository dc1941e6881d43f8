package inertia

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"os"
	"strings"
	"sync"

	"github.com/vango-dev/inertia/pkg/protocol"
)

const (
	headPlaceholder = "@inertiaHead"
	bodyPlaceholder = "@inertia"
)

// ErrTemplate is returned when the index template lacks the @inertia
// placeholder. @inertiaHead alone does not count.
var ErrTemplate = errors.New("inertia: index template has no " + bodyPlaceholder + " placeholder")

// document assembles full HTML responses from the index template.
type document struct {
	path   string
	rootID string
	reload bool

	mu     sync.Mutex
	cached []byte
}

func newDocument(path, rootID string, reload bool) *document {
	return &document{path: path, rootID: rootID, reload: reload}
}

// template returns the index template. It is read once unless reload is
// set, in which case edits show up on the next request.
func (d *document) template() ([]byte, error) {
	if !d.reload {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.cached != nil {
			return d.cached, nil
		}
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return nil, fmt.Errorf("inertia: read index template: %w", err)
	}
	if bytes.Count(data, []byte(bodyPlaceholder)) == bytes.Count(data, []byte(headPlaceholder)) {
		return nil, fmt.Errorf("%w (%s)", ErrTemplate, d.path)
	}
	if !d.reload {
		d.cached = data
	}
	return data, nil
}

// render fills the placeholders for page. script is inserted before
// </body> when non-empty.
func (d *document) render(page *protocol.Page, script string) ([]byte, error) {
	tmpl, err := d.template()
	if err != nil {
		return nil, err
	}

	var body string
	if page.HasSSR() && page.SSRBody != "" {
		body = page.SSRBody
	} else {
		body, err = d.mount(page)
		if err != nil {
			return nil, err
		}
	}
	head := strings.Join(page.SSRHead, "\n")

	// The head placeholder contains the body one, so it goes first.
	out := string(tmpl)
	out = strings.Replace(out, headPlaceholder, head, 1)
	out = strings.Replace(out, bodyPlaceholder, body, 1)
	if script != "" {
		if idx := strings.LastIndex(out, "</body>"); idx >= 0 {
			out = out[:idx] + script + out[idx:]
		} else {
			out += script
		}
	}
	return []byte(out), nil
}

// mount returns the client mount point carrying the Page Object.
func (d *document) mount(page *protocol.Page) (string, error) {
	data, err := json.Marshal(page)
	if err != nil {
		return "", fmt.Errorf("inertia: encode page: %w", err)
	}
	return fmt.Sprintf(`<div id="%s" data-page="%s"></div>`, html.EscapeString(d.rootID), html.EscapeString(string(data))), nil
}
