// Package websocket pushes notification-created events to connected clients.
// Each authenticated session subscribes to its own user topic; the HTTP
// polling endpoint remains the reference delivery mechanism, this channel is
// a lower-latency supplement for clients that keep a connection open.
package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/wellbee/wellbee/internal/platform/auth"
)

// Event is a real-time message sent to connected clients.
type Event struct {
	Type      string          `json:"type"`
	Topic     string          `json:"topic"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// EventPublisher publishes events to subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// UserTopic returns the topic a user's sessions subscribe to.
func UserTopic(userID string) string { return "user:" + userID }

// Client represents a single connected session.
type Client struct {
	Topic string
	Send  chan []byte
}

// Hub tracks connected clients by topic. All operations are safe for
// concurrent use.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

// NewHub creates an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

// Register adds a client under its topic.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.Topic] == nil {
		h.clients[client.Topic] = make(map[*Client]struct{})
	}
	h.clients[client.Topic][client] = struct{}{}
}

// Unregister removes a client and closes its Send channel. Safe to call more
// than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subscribers, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := subscribers[client]; !ok {
		return
	}

	delete(subscribers, client)
	if len(subscribers) == 0 {
		delete(h.clients, client.Topic)
	}
	close(client.Send)
}

// Broadcast sends an event to all clients subscribed to the event's topic.
func (h *Hub) Broadcast(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[event.Topic] {
		select {
		case client.Send <- data:
		default:
			// Client buffer full; skip to avoid blocking.
		}
	}
}

// Publish implements EventPublisher.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.Broadcast(event)
	return nil
}

// ClientCount returns the total number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, subscribers := range h.clients {
		n += len(subscribers)
	}
	return n
}

// TopicCount returns the number of clients subscribed to a topic.
func (h *Hub) TopicCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

var upgrader = gorillawebsocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Handler upgrades HTTP connections and binds them to the session user's
// notification topic.
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a Handler bound to the given Hub.
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// RegisterRoutes registers the WebSocket endpoint on the provided Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/notifications", h.HandleConnect)
}

// HandleConnect upgrades the connection and streams notification events for
// the authenticated user until the client disconnects.
func (h *Handler) HandleConnect(c echo.Context) error {
	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return echo.NewHTTPError(401, "authentication required")
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		Topic: UserTopic(principal.UserID),
		Send:  make(chan []byte, 256),
	}
	h.hub.Register(client)

	go h.writePump(client, ws)
	go h.readPump(client, ws)

	return nil
}

// readPump discards inbound frames and tears the client down on close.
func (h *Handler) readPump(client *Client, ws *gorillawebsocket.Conn) {
	defer func() {
		h.hub.Unregister(client)
		ws.Close()
	}()

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(client *Client, ws *gorillawebsocket.Conn) {
	defer ws.Close()

	for message := range client.Send {
		if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
			h.logger.Debug().Err(err).Msg("websocket write failed")
			return
		}
	}
}
