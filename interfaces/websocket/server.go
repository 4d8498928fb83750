package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ServerConfig holds upgrade settings
type ServerConfig struct {
	ReadBufferSize        int
	WriteBufferSize       int
	CheckOrigin           func(r *http.Request) bool
	MaxSessionConnections int
}

// DefaultServerConfig returns the default upgrade settings
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
		MaxSessionConnections: 10,
	}
}

// Server upgrades HTTP requests into session streams
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	config   *ServerConfig
	logger   *zap.Logger
}

// NewServer creates a server on top of hub
func NewServer(hub *Hub, config *ServerConfig, logger *zap.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
		logger: logger,
	}
}

// Serve upgrades the request and attaches it to sessionID. The caller has
// already checked that the session exists.
func (s *Server) Serve(w http.ResponseWriter, r *http.Request, sessionID string) {
	if s.hub.ConnectionCount(sessionID) >= s.config.MaxSessionConnections {
		s.logger.Warn("Connection limit exceeded for session",
			zap.String("sessionID", sessionID),
			zap.Int("currentConnections", s.hub.ConnectionCount(sessionID)),
		)
		http.Error(w, "Connection limit exceeded", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade connection",
			zap.Error(err),
			zap.String("remoteAddr", r.RemoteAddr),
		)
		return
	}

	client := newClient(sessionID, s.hub, conn, s.logger)
	client.start()

	s.logger.Info("WebSocket connection established",
		zap.String("sessionID", sessionID),
		zap.String("connectionID", client.id),
		zap.String("remoteAddr", r.RemoteAddr),
	)
}
