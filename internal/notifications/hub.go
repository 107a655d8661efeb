package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"agora/internal/models"
	"agora/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per identity
	maxConnsPerIdentity = 12
	// Max total connections
	maxTotalConns = 10000
)

// Hub fans domain events out to websocket subscribers, keyed by identity.
type Hub struct {
	mu         sync.RWMutex
	conns      map[string]map[*Client]struct{}
	totalConns int
	shutdown   chan struct{}
	done       chan struct{}
}

// NewHub creates a new Hub instance for delivering domain events.
func NewHub() *Hub {
	return &Hub{
		conns:    make(map[string]map[*Client]struct{}),
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "event hub" }

// Register a connection for a given identity. Returns the Client or error if limits exceeded.
func (h *Hub) Register(identity string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.totalConns >= maxTotalConns {
		return nil, errors.New("server connection limit reached")
	}

	m, ok := h.conns[identity]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[identity] = m
	}

	if len(m) >= maxConnsPerIdentity {
		return nil, errors.New("identity connection limit reached")
	}

	client := NewClient(h, conn, identity)
	m[client] = struct{}{}
	h.totalConns++
	observability.WebSocketConnectionsTotal.Inc()

	return client, nil
}

// UnregisterClient removes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m, ok := h.conns[client.Identity]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			observability.WebSocketConnectionsTotal.Dec()
		}
		if len(m) == 0 {
			delete(h.conns, client.Identity)
		}
	}
}

// BroadcastEvent sends the event to every connected websocket client.
func (h *Hub) BroadcastEvent(ev models.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("failed to marshal %s event: %v", ev.Type, err)
		return
	}
	h.BroadcastAll(string(data))
}

// BroadcastAll sends message to every connected websocket client.
func (h *Hub) BroadcastAll(message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	data := []byte(message)
	for _, clients := range h.conns {
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// IsOnline reports whether an identity currently has at least one active websocket connection.
func (h *Hub) IsOnline(identity string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	clients, ok := h.conns[identity]
	return ok && len(clients) > 0
}

// StartWiring connects the Notifier to this hub: events arriving on the Redis
// channel are fanned out to every websocket subscriber.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartSubscriber(ctx, func(ev models.Event) {
		h.BroadcastEvent(ev)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(_ context.Context) error {
	close(h.shutdown)

	h.mu.Lock()
	for identity, conns := range h.conns {
		for client := range conns {
			if client.Conn == nil {
				continue
			}
			if err := client.Conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
				log.Printf("failed to write close message for %s: %v", identity, err)
			}
			if err := client.Conn.Close(); err != nil {
				log.Printf("failed to close websocket for %s: %v", identity, err)
			}
		}
	}
	h.conns = make(map[string]map[*Client]struct{})
	h.mu.Unlock()

	close(h.done)

	return nil
}
