package websocket

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub maintains active WebSocket connections and fans events out to them.
// The transport is role-unaware: every connected client receives every
// broadcast, and role-scoped filtering happens at the alert query layer.
// Delivery is best-effort; a slow client is dropped, never waited on.
type Hub struct {
	// Registered clients (userID -> Client)
	clients map[string]*Client

	// Outbound events to fan out to every client
	broadcast chan *Event

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for thread-safe client map access
	mu sync.RWMutex
}

// Event is a typed real-time message, e.g. {"type":"newReport","data":{...}}.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// A second login for the same user replaces the first
			// connection; closing the old send channel shuts its pumps down.
			if old, ok := h.clients[client.UserID]; ok && old != client {
				close(old.send)
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
			log.Printf("✅ [WEBSOCKET] Client connected: %s (%s), total: %d", client.UserID, client.UserRole, h.GetClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			// Only detach when the map still points at this connection; a
			// replaced connection's late unregister must not evict its successor.
			if h.clients[client.UserID] == client {
				delete(h.clients, client.UserID)
				close(client.send)
				log.Printf("🔴 [WEBSOCKET] Client disconnected: %s (%s), remaining: %d", client.UserID, client.UserRole, len(h.clients))
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				log.Printf("❌ Failed to marshal event %q: %v", event.Type, err)
				continue
			}

			h.mu.Lock()
			for userID, client := range h.clients {
				select {
				case client.send <- data:
				default:
					// Client buffer full, disconnect
					close(client.send)
					delete(h.clients, userID)
					log.Printf("⚠️ Client buffer full, disconnecting: %s", userID)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for delivery to every connected client.
// Fire-and-forget: zero subscribers is not an error.
func (h *Hub) Broadcast(eventType string, data interface{}) {
	h.broadcast <- &Event{Type: eventType, Data: data}
}

// SendToUser delivers an event only to the named user, if connected.
func (h *Hub) SendToUser(userID, eventType string, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	client, ok := h.clients[userID]
	if !ok {
		return
	}

	payload, err := json.Marshal(&Event{Type: eventType, Data: data})
	if err != nil {
		log.Printf("❌ Failed to marshal event %q: %v", eventType, err)
		return
	}

	select {
	case client.send <- payload:
	default:
		log.Printf("⚠️ Client buffer full, skipping: %s", userID)
	}
}

// sendToClient enqueues a payload for one connection. Send channels are only
// ever closed while the write lock is held, so checking that the map still
// points at this client under the read lock makes the send safe against a
// concurrent disconnect. Returns false when the client is gone or its buffer
// is full.
func (h *Hub) sendToClient(c *Client, payload []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.clients[c.UserID] != c {
		return false
	}

	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// IsUserConnected checks if a user is currently connected
func (h *Hub) IsUserConnected(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
