package websocket

import (
	"sync"
	"time"

	"spectrumhub/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

// Client is one websocket subscriber of story events.
type Client struct {
	ID      string
	Conn    *websocket.Conn
	writeMu sync.Mutex
}

// SafeWriteJSON serialises writes to the client's connection.
func (c *Client) SafeWriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteJSON(v)
}

// Hub fans story events out to every connected client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{clients: make(map[*Client]struct{}), log: log}
}

// Register adds a connection and returns its client.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	client := &Client{ID: uuid.NewString(), Conn: conn}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	total := len(h.clients)
	h.mu.Unlock()

	h.log.Debug("story client registered", zap.String("clientId", client.ID), zap.Int("clients", total))
	return client
}

// Unregister removes the client and closes its connection. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	delete(h.clients, client)
	total := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	client.Conn.Close()
	h.log.Debug("story client unregistered", zap.String("clientId", client.ID), zap.Int("clients", total))
}

// Broadcast sends the event to all clients; clients that fail the write are dropped.
func (h *Hub) Broadcast(event models.StoryEvent) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.SafeWriteJSON(event); err != nil {
			h.log.Info("dropping story client", zap.String("clientId", c.ID), zap.Error(err))
			h.Unregister(c)
		}
	}

	h.log.Info("broadcast story event",
		zap.String("type", event.Type),
		zap.String("storyId", event.StoryID),
		zap.Int("clients", len(clients)))
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client. Used on shutdown.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.SafeWriteJSON(map[string]string{"type": "shutdown"})
		h.Unregister(c)
	}
}
