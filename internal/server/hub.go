package server

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/artemisops/orbitdeck/internal/logging"
)

// Message is the envelope pushed to websocket subscribers.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub fans telemetry out to connected websocket clients. Writes are
// serialized per connection; a failed write drops the client.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	logger  *logging.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *logging.Logger) *Hub {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
		logger:  logger.Named("hub"),
	}
}

// Register adds a connection to the broadcast set.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = true
	h.logger.Debug("client connected (%d total)", len(h.clients))
}

// Unregister removes and closes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[conn] {
		delete(h.clients, conn)
		conn.Close()
		h.logger.Debug("client disconnected (%d total)", len(h.clients))
	}
}

// Broadcast sends a message to every connected client. Clients whose
// writes fail are dropped.
func (h *Hub) Broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("dropping client after write error: %v", err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll disconnects every client, used on shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
