package dev

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ReloadPath is where the reload WebSocket is mounted.
const ReloadPath = "/__inertia/reload"

// ReloadMessageType represents the type of reload message.
type ReloadMessageType string

const (
	ReloadTypeFull    ReloadMessageType = "reload"
	ReloadTypeVersion ReloadMessageType = "version"
	ReloadTypeCSS     ReloadMessageType = "css"
	ReloadTypeError   ReloadMessageType = "error"
	ReloadTypeClear   ReloadMessageType = "clear"
)

// ReloadMessage is sent to browsers via WebSocket.
type ReloadMessage struct {
	Type    ReloadMessageType `json:"type"`
	Version string            `json:"version,omitempty"`
	Error   string            `json:"error,omitempty"`
	File    string            `json:"file,omitempty"`
}

const writeWait = 5 * time.Second

// client serializes writes; a websocket connection allows one writer.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReloadServer manages WebSocket connections for live reload.
type ReloadServer struct {
	clients  map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	version  func() string
}

// NewReloadServer creates a new reload server.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins in dev
			},
		},
	}
}

// SetVersion sets the function reporting the current asset version, sent
// to each client when it connects.
func (r *ReloadServer) SetVersion(fn func() string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.version = fn
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn}

	r.mu.Lock()
	r.clients[c] = true
	version := r.version
	r.mu.Unlock()

	if version != nil {
		if data, err := json.Marshal(ReloadMessage{Type: ReloadTypeVersion, Version: version()}); err == nil {
			c.send(data)
		}
	}

	// Keep connection alive until client disconnects
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	r.remove(c)
}

func (r *ReloadServer) remove(c *client) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
	c.conn.Close()
}

// NotifyReload sends a full page reload message to all clients.
func (r *ReloadServer) NotifyReload() {
	r.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyVersion announces a new asset version.
func (r *ReloadServer) NotifyVersion(version string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeVersion, Version: version})
}

// NotifyCSS sends a CSS-only reload message to all clients.
func (r *ReloadServer) NotifyCSS(file string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeCSS, File: file})
}

// NotifyError sends an error message to all clients.
func (r *ReloadServer) NotifyError(errMsg string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeError, Error: errMsg})
}

// ClearError clears the error overlay on all clients.
func (r *ReloadServer) ClearError() {
	r.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	r.mu.RLock()
	clients := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}
	r.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			r.remove(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close closes all client connections.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for c := range r.clients {
		c.conn.Close()
		delete(r.clients, c)
	}
}

// ClientScript returns the browser script for live reload. version is
// the asset version the page was rendered with.
func ClientScript(version string) string {
	v, _ := json.Marshal(version)
	return strings.Replace(clientScript, "__VERSION__", string(v), 1)
}

const clientScript = `<script>
(function() {
    'use strict';

    var renderedVersion = __VERSION__;
    var reconnectDelay = 1000;
    var maxReconnectDelay = 30000;
    var ws = null;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + location.host + '` + ReloadPath + `');

        ws.onopen = function() {
            reconnectDelay = 1000;
            clearErrorOverlay();
        };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }

            switch (msg.type) {
                case 'version':
                    if (msg.version && msg.version !== renderedVersion) {
                        location.reload();
                    }
                    break;

                case 'reload':
                    location.reload();
                    break;

                case 'css':
                    reloadCSS();
                    break;

                case 'error':
                    showErrorOverlay(msg.error);
                    break;

                case 'clear':
                    clearErrorOverlay();
                    break;
            }
        };

        ws.onclose = function() {
            setTimeout(function() {
                reconnectDelay = Math.min(reconnectDelay * 2, maxReconnectDelay);
                connect();
            }, reconnectDelay);
        };

        ws.onerror = function() {
            ws.close();
        };
    }

    function reloadCSS() {
        document.querySelectorAll('link[rel="stylesheet"]').forEach(function(link) {
            var url = new URL(link.href);
            url.searchParams.set('_reload', Date.now());
            link.href = url.toString();
        });
    }

    function showErrorOverlay(error) {
        clearErrorOverlay();

        var overlay = document.createElement('div');
        overlay.id = 'inertia-error-overlay';
        overlay.style.cssText = 'position:fixed;top:0;left:0;right:0;bottom:0;background:rgba(0,0,0,0.9);color:#fff;font-family:monospace;font-size:14px;padding:20px;overflow:auto;z-index:999999;';

        var pre = document.createElement('pre');
        pre.style.cssText = 'max-width:800px;margin:0 auto;white-space:pre-wrap;word-wrap:break-word;';
        pre.textContent = error;

        overlay.appendChild(pre);
        document.body.appendChild(overlay);
    }

    function clearErrorOverlay() {
        var overlay = document.getElementById('inertia-error-overlay');
        if (overlay) {
            overlay.remove();
        }
    }

    if (document.readyState === 'loading') {
        document.addEventListener('DOMContentLoaded', connect);
    } else {
        connect();
    }
})();
</script>
`
