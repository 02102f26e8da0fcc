package handlers

import (
	"sync"

	"go.uber.org/zap"
)

const clientBuffer = 16

// Hub fans messages out to admin websocket connections. Each connection gets
// a buffered channel; a client that falls behind misses messages rather than
// stalling the sender.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]chan interface{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]chan interface{}),
		logger:  logger.Named("hub"),
	}
}

// Register adds connID and returns the channel its writer drains.
func (h *Hub) Register(connID string) <-chan interface{} {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan interface{}, clientBuffer)
	h.clients[connID] = ch
	h.logger.Debug("Client registered", zap.String("conn_id", connID), zap.Int("clients", len(h.clients)))
	return ch
}

// Unregister removes connID and closes its channel.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if ch, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		close(ch)
		h.logger.Debug("Client unregistered", zap.String("conn_id", connID), zap.Int("clients", len(h.clients)))
	}
}

// Broadcast queues message for every client without blocking.
func (h *Hub) Broadcast(message interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, ch := range h.clients {
		select {
		case ch <- message:
		default:
			h.logger.Warn("Dropping message for slow client", zap.String("conn_id", id))
		}
	}
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
