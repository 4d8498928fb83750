package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workflowbuilder/application/ports"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	srv := NewServer(hub, nil, zap.NewNop())
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.Serve(w, r, r.URL.Query().Get("session"))
	}))
	t.Cleanup(ts.Close)
	return hub, ts
}

func dial(t *testing.T, ts *httptest.Server, session string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/?session=" + session
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestHub_DeliversToSessionClients(t *testing.T) {
	hub, ts := startHub(t)
	conn := dial(t, ts, "s-1")
	other := dial(t, ts, "s-2")

	assert.Equal(t, "connected", read(t, conn).Type)
	assert.Equal(t, "connected", read(t, other).Type)
	require.Eventually(t, func() bool { return hub.ConnectionCount("s-1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Deliver(context.Background(), ports.Notification{
		SessionID: "s-1",
		Kind:      ports.KindToast,
		Type:      "node.added",
		Title:     "Node added",
		Timestamp: time.Now(),
	}))

	msg := read(t, conn)
	assert.Equal(t, "toast", msg.Type)
	assert.Equal(t, "s-1", msg.SessionID)
	var n ports.Notification
	require.NoError(t, json.Unmarshal(msg.Data, &n))
	assert.Equal(t, "Node added", n.Title)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "other sessions receive nothing")
}

func TestHub_ClosedNotificationDisconnects(t *testing.T) {
	hub, ts := startHub(t)
	conn := dial(t, ts, "s-1")
	read(t, conn)
	require.Eventually(t, func() bool { return hub.ConnectionCount("s-1") == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, hub.Deliver(context.Background(), ports.Notification{
		SessionID: "s-1",
		Kind:      ports.KindClosed,
		Timestamp: time.Now(),
	}))

	assert.Equal(t, "closed", read(t, conn).Type)
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.Equal(t, 0, hub.ConnectionCount("s-1"))
}

func TestHub_RejectsClientsOfClosedSession(t *testing.T) {
	hub, ts := startHub(t)
	require.NoError(t, hub.Deliver(context.Background(), ports.Notification{
		SessionID: "s-1",
		Kind:      ports.KindClosed,
		Timestamp: time.Now(),
	}))
	require.Eventually(t, func() bool {
		hub.mu.RLock()
		defer hub.mu.RUnlock()
		_, ok := hub.closed["s-1"]
		return ok
	}, time.Second, 5*time.Millisecond)

	conn := dial(t, ts, "s-1")
	assert.Equal(t, "connected", read(t, conn).Type)
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure))
	assert.Equal(t, 0, hub.ConnectionCount("s-1"))
	assert.Equal(t, int64(0), hub.Metrics().ActiveConnections.Load())
}

func TestHub_ForgetsClosedSessionsAfterRetention(t *testing.T) {
	hub := NewHub(zap.NewNop())
	now := time.Now()
	hub.now = func() time.Time { return now }

	hub.send(outbound{sessionID: "old", closing: true})
	now = now.Add(closedRetention + time.Second)
	hub.send(outbound{sessionID: "new", closing: true})

	assert.NotContains(t, hub.closed, "old")
	assert.Contains(t, hub.closed, "new")
}

func TestServer_ConnectionLimit(t *testing.T) {
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	cfg := DefaultServerConfig()
	cfg.MaxSessionConnections = 0
	srv := NewServer(hub, cfg, zap.NewNop())

	rec := httptest.NewRecorder()
	srv.Serve(rec, httptest.NewRequest(http.MethodGet, "/", nil), "s-1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
