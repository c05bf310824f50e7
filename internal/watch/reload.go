package watch

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/modelview/internal/logging"
	"github.com/vango-dev/modelview/pkg/middleware"
)

// ReloadPath is the WebSocket endpoint served by Hub.
const ReloadPath = middleware.ReloadPath

// MessageType represents the type of reload message.
type MessageType string

const (
	MessageReload MessageType = "reload"
	MessageError  MessageType = "error"
)

// Message is sent to viewers via WebSocket.
type Message struct {
	Type  MessageType `json:"type"`
	File  string      `json:"file,omitempty"`
	Error string      `json:"error,omitempty"`
}

const writeTimeout = 2 * time.Second

// Hub manages the WebSocket connections of open viewers.
type Hub struct {
	clients  map[*websocket.Conn]struct{}
	mu       sync.RWMutex
	writeMu  sync.Mutex
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates a hub. A nil logger uses slog.Default.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The server only ever listens on behalf of the local user.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logging.WithComponent(logger, "reload"),
	}
}

// ServeHTTP upgrades the connection and returns immediately; the client is
// read on its own goroutine until it disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go h.readLoop(conn)
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// NotifyReload tells every viewer to reload.
func (h *Hub) NotifyReload(file string) {
	h.Broadcast(Message{Type: MessageReload, File: file})
}

// NotifyError shows msg in every viewer.
func (h *Hub) NotifyError(msg string) {
	h.Broadcast(Message{Type: MessageError, Error: msg})
}

// Broadcast sends msg to all clients, dropping those that fail.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}

	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	h.writeMu.Lock()
	defer h.writeMu.Unlock()
	for _, c := range clients {
		_ = c.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
		}
	}
}

// HandleChange maps a watcher change to a viewer message.
func (h *Hub) HandleChange(c Change) {
	if c.Type == ChangeRemoved {
		h.NotifyError("model file removed: " + c.Path)
		return
	}
	h.NotifyReload(c.Path)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close closes all client connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
		delete(h.clients, c)
	}
}

// Script returns the client snippet injected into the viewer shell.
func (h *Hub) Script() string {
	return strings.Replace(clientScript, "{{path}}", ReloadPath, 1)
}

const clientScript = `<script>
(function() {
    'use strict';
    var delay = 1000;
    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '{{path}}');
        ws.onopen = function() { delay = 1000; };
        ws.onmessage = function(e) {
            var msg;
            try { msg = JSON.parse(e.data); } catch (err) { return; }
            if (msg.type === 'reload') {
                location.reload();
            } else if (msg.type === 'error') {
                var status = document.getElementById('status');
                if (status) { status.textContent = msg.error; }
            }
        };
        ws.onclose = function() {
            setTimeout(function() { delay = Math.min(delay * 2, 30000); connect(); }, delay);
        };
    }
    connect();
})();
</script>`
