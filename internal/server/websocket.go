package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/agentpay/flux-ledger/internal/interfaces"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The dashboard runs on a different origin in development.
		return true
	},
}

// wsEvent is the envelope pushed to dashboard clients.
type wsEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Hub broadcasts ledger events to connected dashboard clients. It
// doubles as an EventPublisher so the ledger can feed it directly.
type Hub struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewHub creates an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:  logger,
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Handle upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("dashboard client connected", "remote", conn.RemoteAddr().String())

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Drain incoming frames; the feed is one-way.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Publish sends the event to every connected client. Write failures
// drop the offending client and are not reported upstream.
func (h *Hub) Publish(topic string, event any) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		if err := conn.WriteJSON(wsEvent{Type: topic, Payload: event}); err != nil {
			h.logger.Warn("dropping dashboard client", "error", err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
	return nil
}

var _ interfaces.EventPublisher = (*Hub)(nil)
