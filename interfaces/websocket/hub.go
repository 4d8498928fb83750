// Package websocket streams editor session notifications to browser clients.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"workflowbuilder/application/ports"
)

// Message is the envelope written to clients
type Message struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// closedRetention is how long a closed session id keeps refusing clients
const closedRetention = 10 * time.Minute

type outbound struct {
	sessionID string
	closing   bool
	payload   []byte
}

// HubMetrics tracks hub traffic
type HubMetrics struct {
	ActiveConnections atomic.Int64
	MessagesSent      atomic.Int64
	MessagesDropped   atomic.Int64
}

// Hub keeps the connections of every session and fans notifications out
// to them. It is a ports.NotificationSink.
type Hub struct {
	connections map[string]map[*Client]bool
	closed      map[string]time.Time
	mu          sync.RWMutex
	now         func() time.Time

	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound

	logger  *zap.Logger
	metrics *HubMetrics
}

var _ ports.NotificationSink = (*Hub)(nil)

// NewHub creates a hub; call Run to start it
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		connections: make(map[string]map[*Client]bool),
		closed:      make(map[string]time.Time),
		now:         time.Now,
		register:    make(chan *Client, 100),
		unregister:  make(chan *Client, 100),
		broadcast:   make(chan outbound, 1000),
		logger:      logger,
		metrics:     &HubMetrics{},
	}
}

// Run is the hub's event loop; it returns when ctx is done
func (h *Hub) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("Hub shutting down")
			h.closeAll()
			return nil
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.send(msg)
		}
	}
}

// Deliver queues a notification for the session's clients. It never blocks.
func (h *Hub) Deliver(_ context.Context, n ports.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}
	payload, err := json.Marshal(Message{
		Type:      string(n.Kind),
		SessionID: n.SessionID,
		Data:      data,
		Timestamp: n.Timestamp.Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case h.broadcast <- outbound{sessionID: n.SessionID, closing: n.Kind == ports.KindClosed, payload: payload}:
		return nil
	default:
		h.metrics.MessagesDropped.Add(1)
		return fmt.Errorf("broadcast channel full, message dropped")
	}
}

// ConnectionCount returns the number of clients attached to a session
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}

// Metrics exposes the hub counters
func (h *Hub) Metrics() *HubMetrics {
	return h.metrics
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, gone := h.closed[c.sessionID]; gone {
		// the write pump sends a normal closure once the greeting is out
		close(c.send)
		h.logger.Debug("Client rejected for closed session",
			zap.String("sessionID", c.sessionID),
			zap.String("connectionID", c.id),
		)
		return
	}
	set, ok := h.connections[c.sessionID]
	if !ok {
		set = make(map[*Client]bool)
		h.connections[c.sessionID] = set
	}
	set[c] = true
	h.metrics.ActiveConnections.Add(1)
	h.logger.Debug("Client registered",
		zap.String("sessionID", c.sessionID),
		zap.String("connectionID", c.id),
	)
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.detach(c)
}

// detach must be called with mu held
func (h *Hub) detach(c *Client) {
	set, ok := h.connections[c.sessionID]
	if !ok || !set[c] {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(h.connections, c.sessionID)
	}
	close(c.send)
	h.metrics.ActiveConnections.Add(-1)
}

func (h *Hub) send(msg outbound) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if msg.closing {
		h.markClosed(msg.sessionID)
	}
	for c := range h.connections[msg.sessionID] {
		select {
		case c.send <- msg.payload:
			h.metrics.MessagesSent.Add(1)
		default:
			// slow reader
			h.metrics.MessagesDropped.Add(1)
			h.detach(c)
		}
		if msg.closing {
			h.detach(c)
		}
	}
}

// markClosed must be called with mu held
func (h *Hub) markClosed(sessionID string) {
	now := h.now()
	for id, at := range h.closed {
		if now.Sub(at) > closedRetention {
			delete(h.closed, id)
		}
	}
	h.closed[sessionID] = now
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.connections {
		for c := range set {
			h.detach(c)
		}
	}
}
