// Package notifications delivers feed events to websocket clients, fanned
// out across instances through Redis pub/sub.
package notifications

import (
	"context"
	"errors"
	"log"
	"sync"

	"postfeed/internal/observability"

	"github.com/gofiber/websocket/v2"
)

// MaxConnections caps the websocket clients served by one hub.
const MaxConnections = 10000

// ErrConnectionLimit is returned by Register when the hub is full.
var ErrConnectionLimit = errors.New("server connection limit reached")

// Hub tracks every connected feed client on this instance.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	maxConns int
	closed   bool
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[*Client]struct{}),
		maxConns: MaxConnections,
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "feed hub" }

// Register adds a connection. userID is 0 for anonymous clients.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed || len(h.clients) >= h.maxConns {
		return nil, ErrConnectionLimit
	}

	client := NewClient(h, conn, userID)
	h.clients[client] = struct{}{}
	observability.ActiveWebSockets.Inc()
	return client, nil
}

// UnregisterClient removes client and closes its send channel. It is safe to
// call more than once.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.Send)
	observability.ActiveWebSockets.Dec()
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastAll queues message for every connected client.
func (h *Hub) BroadcastAll(message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.TrySend(message)
	}
}

// StartWiring subscribes n to the broadcast channels and forwards every
// message to all local clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartBroadcastSubscriber(ctx, func(_ string, payload string) {
		h.BroadcastAll([]byte(payload))
	})
}

// Shutdown sends a close frame to every client and drops them.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.Conn != nil {
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message: %v", err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket: %v", err)
			}
		}
		close(client.Send)
		observability.ActiveWebSockets.Dec()
	}
	h.clients = make(map[*Client]struct{})
	h.closed = true
	return nil
}
