package ssr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vango-dev/inertia/pkg/protocol"
)

// maxResponseBytes bounds the render server response.
const maxResponseBytes = 8 << 20

// HTTPRenderer posts the Page Object to a render server and decodes a
// {"head": [...], "body": "..."} response. This is the contract of the
// standard Inertia SSR server.
type HTTPRenderer struct {
	Endpoint string
	Client   *http.Client
}

// NewHTTPRenderer returns a RenderFunc backed by an HTTPRenderer.
func NewHTTPRenderer(endpoint string) RenderFunc {
	h := &HTTPRenderer{
		Endpoint: endpoint,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
	return h.Render
}

// Render implements RenderFunc.
func (h *HTTPRenderer) Render(ctx context.Context, page *protocol.Page) (*Result, error) {
	body, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("render server returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &res, nil
}
