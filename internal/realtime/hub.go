package realtime

import (
	"log"
	"sync"

	"github.com/google/uuid"
)

// sendBuffer is the per-connection backlog; a client that falls further
// behind misses messages instead of stalling the sender.
const sendBuffer = 64

type Client struct {
	ID     string
	UserID uuid.UUID
	Send   chan []byte
}

func NewClient(userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		UserID: userID,
		Send:   make(chan []byte, sendBuffer),
	}
}

// Hub tracks the websocket clients connected to this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	h.mu.Unlock()
	log.Printf("[realtime] client registered: %s (user %s)", c.ID, c.UserID)
}

// Unregister removes the client and closes its Send channel. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(old.Send)
		log.Printf("[realtime] client unregistered: %s", c.ID)
	}
}

// SendBytes queues payload on every connection of userID and reports how
// many accepted it.
func (h *Hub) SendBytes(userID uuid.UUID, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for _, c := range h.clients {
		if c.UserID != userID {
			continue
		}
		select {
		case c.Send <- payload:
			n++
		default:
			log.Printf("[realtime] client %s backlog full, message dropped", c.ID)
		}
	}
	return n
}

// Connected counts the live connections of userID.
func (h *Hub) Connected(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, c := range h.clients {
		if c.UserID == userID {
			n++
		}
	}
	return n
}
