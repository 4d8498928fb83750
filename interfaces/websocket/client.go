package websocket

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Clients only send keepalives
	maxMessageSize = 4 * 1024

	sendBufferSize = 256
)

// Client is one browser connection watching a session
type Client struct {
	id        string
	sessionID string
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	logger    *zap.Logger
}

func newClient(sessionID string, hub *Hub, conn *websocket.Conn, logger *zap.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:        id,
		sessionID: sessionID,
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, sendBufferSize),
		logger: logger.With(
			zap.String("sessionID", sessionID),
			zap.String("connectionID", id),
		),
	}
}

// start queues the greeting, registers with the hub and runs the pumps
func (c *Client) start() {
	c.send <- c.greeting()
	c.hub.register <- c
	go c.writePump()
	go c.readPump()
}

func (c *Client) greeting() []byte {
	data, _ := json.Marshal(map[string]string{"connectionId": c.id})
	msg, _ := json.Marshal(Message{
		Type:      "connected",
		SessionID: c.sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	})
	return msg
}

// readPump keeps the read deadline fresh and answers pings
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
		c.logger.Debug("Read pump stopped")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn("WebSocket read error", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(message), []byte(`{"type":"ping"}`)) {
			c.conn.SetReadDeadline(time.Now().Add(pongWait))
		}
	}
}

// writePump drains the send channel to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.logger.Debug("Write pump stopped")
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("Failed to write message", zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
