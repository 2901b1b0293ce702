package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"talenta/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

// Errors returned by Register when limits are hit or the hub is closing.
var (
	ErrServerConnLimit = errors.New("server connection limit reached")
	ErrUserConnLimit   = errors.New("user connection limit reached")
	ErrHubClosed       = errors.New("hub is shutting down")
)

// Hub is a websocket hub that maps userID -> set of Clients.
type Hub struct {
	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
	closed     bool
	log        *observability.WSLogger
}

// NewHub creates a new Hub instance for managing notifications.
func NewHub() *Hub {
	return &Hub{
		conns: make(map[uint]map[*Client]struct{}),
		log:   observability.NewWSLogger("notifications"),
	}
}

// Name returns a human-readable identifier for this hub.
func (h *Hub) Name() string { return "notification hub" }

// Register a connection for a given userID. Returns the Client or error if limits exceeded.
func (h *Hub) Register(userID uint, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHubClosed
	}
	if h.totalConns >= maxTotalConns {
		return nil, ErrServerConnLimit
	}

	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		return nil, ErrUserConnLimit
	}

	client := NewClient(h, conn, userID)
	client.IncomingHandler = handleIncoming
	m[client] = struct{}{}
	h.totalConns++
	h.log.LogConnect(context.Background(), userID)
	return client, nil
}

// UnregisterClient removes a client. Calling it twice is harmless.
func (h *Hub) UnregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m, ok := h.conns[client.UserID]
	if !ok {
		return
	}
	if _, exists := m[client]; !exists {
		return
	}
	delete(m, client)
	h.totalConns--
	if len(m) == 0 {
		delete(h.conns, client.UserID)
	}
	client.closeSend()
	h.log.LogDisconnect(context.Background(), client.UserID, "unregistered")
}

// Broadcast sends message to all connections for userID
func (h *Hub) Broadcast(userID uint, message string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if clients, ok := h.conns[userID]; ok {
		data := []byte(message)
		for c := range clients {
			c.TrySend(data)
		}
	}
}

// ConnectionCount reports the open connections for userID.
func (h *Hub) ConnectionCount(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID])
}

// StartWiring connects the Notifier to this hub: it subscribes to the Redis
// pattern and forwards messages to matching userID connections.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartPatternSubscriber(ctx, func(channel, payload string) {
		userID, err := ParseUserChannel(channel)
		if err != nil {
			h.log.LogError(ctx, 0, err, "parse_channel")
			return
		}
		h.Broadcast(userID, payload)
	})
}

// Shutdown gracefully closes all websocket connections
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true

	// Closing Send makes each WritePump write the close frame and close its
	// connection, so the hub never writes to a conn concurrently.
	for _, userConns := range h.conns {
		for client := range userConns {
			client.closeSend()
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.log.LogLifecycle(ctx, "shutdown")
	return nil
}

// handleIncoming answers keepalive pings. Everything else from the browser
// is ignored; this socket only streams server events.
func handleIncoming(c *Client, message []byte) {
	var in struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(message, &in); err != nil {
		return
	}
	if in.Type == "ping" {
		c.TrySend(pongMessage)
	}
}

var pongMessage = mustEncode(EventPong, nil)
