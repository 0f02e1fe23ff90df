// Package websocket pushes notifications to connected browser sessions.
package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/garyjia/procurement-portal/internal/domain/entity"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// Message is the frame written to clients
type Message struct {
	Type         string               `json:"type"`
	Notification *entity.Notification `json:"notification"`
}

// Client is one connected session of an authenticated actor
type Client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	actor entity.Actor
}

// Hub tracks connected clients by actor and fans notifications out to them.
// Hub implements port.NotificationChannel.
type Hub struct {
	upgrader   websocket.Upgrader
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewHub creates a hub. allowedOrigins empty means any origin is accepted.
func NewHub(allowedOrigins []string, logger *zap.Logger) *Hub {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(origins) == 0 || origin == "" || origins[origin] || origins["*"]
			},
		},
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run processes registrations until ctx is cancelled, then disconnects every client
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("WebSocket client connected", zap.String("user_id", client.actor.ID))
		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()
			h.logger.Debug("WebSocket client disconnected", zap.String("user_id", client.actor.ID))
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				h.drop(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// drop must be called with mu held
func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
}

// Name implements port.NotificationChannel
func (h *Hub) Name() string {
	return "websocket"
}

// Deliver writes the notification to every session of the recipient, or of every
// holder of the recipient role. Having no connected session is not an error; the
// notification stays in the inbox.
func (h *Hub) Deliver(_ context.Context, n *entity.Notification, recipient *entity.User) error {
	payload, err := json.Marshal(Message{Type: "notification", Notification: n})
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		if !h.addressed(client, n, recipient) {
			continue
		}
		select {
		case client.send <- payload:
		default:
			h.logger.Warn("WebSocket client too slow, disconnecting", zap.String("user_id", client.actor.ID))
			h.drop(client)
		}
	}
	return nil
}

func (h *Hub) addressed(client *Client, n *entity.Notification, recipient *entity.User) bool {
	if recipient != nil {
		return client.actor.ID == recipient.ID
	}
	return n.AddressedTo(client.actor)
}

// Connected returns the number of live sessions for the user
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for client := range h.clients {
		if client.actor.ID == userID {
			count++
		}
	}
	return count
}

// ServeWS upgrades the request for an already authenticated actor
func (h *Hub) ServeWS(c *gin.Context, actor entity.Actor) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.String("user_id", actor.ID), zap.Error(err))
		return
	}
	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBufferSize), actor: actor}

	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	case <-c.Request.Context().Done():
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; clients never send commands
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("WebSocket read error", zap.String("user_id", c.actor.ID), zap.Error(err))
			}
			return
		}
	}
}
