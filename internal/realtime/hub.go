package realtime

import (
	"sync"
)

// Client is one live listener connection. The network conn itself is
// managed by the websocket handler.
type Client interface {
	Send(message []byte) bool
	Close()
}

// Hub fans task events out to every connection a user has open. Mutation
// paths publish here so clients can refresh lists and counters without
// polling.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[Client]struct{}
}

var (
	hubInstance *Hub
	once        sync.Once
)

// GetHub returns the process-wide hub.
func GetHub() *Hub {
	once.Do(func() {
		hubInstance = &Hub{
			subscribers: make(map[string]map[Client]struct{}),
		}
	})
	return hubInstance
}

// Register adds a client under a user ID.
func (h *Hub) Register(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subscribers[userID]; !ok {
		h.subscribers[userID] = make(map[Client]struct{})
	}
	h.subscribers[userID][client] = struct{}{}
}

// Unregister removes a client; the user entry is dropped once empty.
func (h *Hub) Unregister(userID string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients, ok := h.subscribers[userID]
	if !ok {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.subscribers, userID)
	}
}

// Broadcast sends a message to all clients of a user. Failed writes are
// left for the owning handler to clean up.
func (h *Hub) Broadcast(userID string, message []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.subscribers[userID] {
		_ = c.Send(message)
	}
}

// ListenerCount reports how many connections a user currently has.
func (h *Hub) ListenerCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}
