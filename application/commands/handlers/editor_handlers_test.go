package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"workflowbuilder/application/commands"
	"workflowbuilder/application/commands/bus"
	"workflowbuilder/application/ports"
	"workflowbuilder/application/queries"
	qbus "workflowbuilder/application/queries/bus"
	qhandlers "workflowbuilder/application/queries/handlers"
	"workflowbuilder/application/services"
	"workflowbuilder/application/session"
	"workflowbuilder/domain/canvas"
	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/events"
	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
	"workflowbuilder/infrastructure/persistence/memory"
	pkgerrors "workflowbuilder/pkg/errors"
)

type collector struct {
	mu    sync.Mutex
	notes []ports.Notification
}

func (c *collector) Deliver(_ context.Context, n ports.Notification) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, n)
	return nil
}

func (c *collector) has(kind ports.NotificationKind, eventType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.notes {
		if n.Kind == kind && (eventType == "" || n.Type == eventType) {
			return true
		}
	}
	return false
}

func (c *collector) last(kind ports.NotificationKind) (ports.Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.notes) - 1; i >= 0; i-- {
		if c.notes[i].Kind == kind {
			return c.notes[i], true
		}
	}
	return ports.Notification{}, false
}

type testEnv struct {
	commands *bus.CommandBus
	queries  *qbus.QueryBus
	notes    *collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	notes := &collector{}
	cfg := config.DefaultDomainConfig()
	cfg.TestRunDelay = 10 * time.Millisecond

	catalog := palette.Default()
	table := inspector.DefaultTable()
	svc := services.NewSessionService(memory.NewSessionRepository(10), session.Deps{
		Config:  cfg,
		Catalog: catalog,
		Table:   table,
		Sinks:   []ports.NotificationSink{notes},
	}, time.Minute, zap.NewNop())

	cb := bus.NewCommandBus(bus.LoggingMiddleware(zap.NewNop()), bus.MetricsMiddleware(ports.NopMetrics{}))
	require.NoError(t, NewEditorHandlers(svc, zap.NewNop()).Register(cb))

	qb := qbus.NewQueryBus(qbus.LoggingMiddleware(zap.NewNop()))
	require.NoError(t, qhandlers.NewEditorQueries(svc, catalog, table).Register(qb))

	return &testEnv{commands: cb, queries: qb, notes: notes}
}

func (e *testEnv) send(t *testing.T, cmd bus.Command) *commands.Result {
	t.Helper()
	out, err := e.commands.Send(context.Background(), cmd)
	require.NoError(t, err)
	res, ok := out.(*commands.Result)
	require.True(t, ok)
	return res
}

func (e *testEnv) open(t *testing.T) string {
	t.Helper()
	return e.send(t, commands.CreateSessionCommand{Name: "Test Flow"}).SessionID
}

func (e *testEnv) canvas(t *testing.T, id string) canvas.Snapshot {
	t.Helper()
	out, err := e.queries.Ask(context.Background(), queries.GetCanvasQuery{SessionID: id})
	require.NoError(t, err)
	return out.(canvas.Snapshot)
}

func TestEditorHandlers_BuildGraph(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)

	a := env.send(t, commands.DropNodeCommand{SessionID: id, Type: "web3-token", X: 100, Y: 100})
	require.True(t, a.Applied)
	b := env.send(t, commands.DropNodeCommand{SessionID: id, Type: "web3-defi", X: 400, Y: 100})
	require.True(t, b.Applied)
	assert.Equal(t, "Token Swap", b.Node.Data.Title)

	ignored := env.send(t, commands.DropNodeCommand{SessionID: id, Type: "not-a-type", X: 0, Y: 0})
	assert.False(t, ignored.Applied)

	conn := env.send(t, commands.ConnectCommand{SessionID: id, Source: a.Node.ID.String(), Target: b.Node.ID.String()})
	require.True(t, conn.Applied)
	dup := env.send(t, commands.ConnectCommand{SessionID: id, Source: a.Node.ID.String(), Target: b.Node.ID.String()})
	assert.False(t, dup.Applied)

	snap := env.canvas(t, id)
	assert.Equal(t, "Test Flow", snap.Name)
	assert.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Connections, 1)
	assert.Equal(t, "M 300 140 C 350 140, 350 140, 400 140", snap.Connections[0].Path)
	assert.True(t, env.notes.has(ports.KindToast, events.TypeConnectionAdded))
}

func TestEditorHandlers_PointerDrag(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)
	env.send(t, commands.DropNodeCommand{SessionID: id, Type: "web2-api", X: 100, Y: 100})

	down := env.send(t, commands.PointerCommand{SessionID: id, Phase: commands.PhaseDown, X: 150, Y: 120})
	require.True(t, down.Applied)
	assert.Equal(t, "drag", down.Gesture)

	refused := env.send(t, commands.SetModeCommand{SessionID: id, Mode: "pan"})
	assert.False(t, refused.Applied, "mode is locked during a gesture")

	env.send(t, commands.PointerCommand{SessionID: id, Phase: commands.PhaseMove, X: 250, Y: 220})
	up := env.send(t, commands.PointerCommand{SessionID: id, Phase: commands.PhaseUp, X: 250, Y: 220})
	assert.True(t, up.Applied)
	assert.Empty(t, up.Gesture)

	snap := env.canvas(t, id)
	assert.Equal(t, 200.0, snap.Nodes[0].Position.X)
	assert.Equal(t, 200.0, snap.Nodes[0].Position.Y)
	assert.NotEmpty(t, snap.SelectedNode)
	assert.True(t, env.notes.has(ports.KindSelect, ""))
}

func TestEditorHandlers_Zoom(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)

	res := env.send(t, commands.ZoomCommand{SessionID: id, Direction: commands.ZoomIn})
	assert.InDelta(t, 1.2, res.Zoom, 1e-9)

	wheel := env.send(t, commands.WheelCommand{SessionID: id, DeltaY: -1, X: 10, Y: 10})
	assert.False(t, wheel.Applied, "wheel without modifier does not zoom")

	reset := env.send(t, commands.ZoomCommand{SessionID: id, Direction: commands.ZoomReset})
	assert.True(t, reset.Applied)
	assert.Equal(t, 1.0, reset.Zoom)
}

func TestEditorHandlers_ApplyTemplate(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)
	env.send(t, commands.DropNodeCommand{SessionID: id, Type: "web2-time", X: 0, Y: 0})

	res := env.send(t, commands.ApplyTemplateCommand{SessionID: id, Name: "defi yield optimizer"})
	require.True(t, res.Applied)
	require.NotNil(t, res.Diff)
	assert.Equal(t, 3, res.Diff.NodesDiff.Added)
	assert.Equal(t, 1, res.Diff.NodesDiff.Removed)
	assert.Equal(t, 2, res.Diff.ConnectionsDiff.Added)

	_, err := env.commands.Send(context.Background(), commands.ApplyTemplateCommand{SessionID: id, Name: "Nope"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))

	bad := &aggregates.Template{
		Name:        "Broken",
		Nodes:       []aggregates.TemplateNode{{ID: "1", Type: "web3-token"}},
		Connections: []aggregates.TemplateConnection{{Source: "1", Target: "2"}},
	}
	_, err = env.commands.Send(context.Background(), commands.ApplyTemplateCommand{SessionID: id, Template: bad})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Len(t, env.canvas(t, id).Nodes, 3, "graph unchanged by a rejected template")

	_, err = env.commands.Send(context.Background(), commands.ApplyTemplateCommand{SessionID: id})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestEditorHandlers_InspectorFlow(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)
	node := env.send(t, commands.DropNodeCommand{SessionID: id, Type: "web3-defi", X: 100, Y: 100}).Node

	env.send(t, commands.SelectNodeCommand{SessionID: id, NodeID: node.ID.String()})
	env.send(t, commands.SetFieldCommand{SessionID: id, Key: "tokenIn", Value: "ETH"})
	env.send(t, commands.SetFieldCommand{SessionID: id, Key: "slippage", Value: "0.5"})

	saved := env.send(t, commands.SaveConfigCommand{SessionID: id})
	require.True(t, saved.Applied)
	require.NotNil(t, saved.Node)
	assert.Equal(t, "ETH", saved.Node.Data.Params["tokenIn"])
	assert.Equal(t, 0.5, saved.Node.Data.Params["slippage"])
	update, ok := env.notes.last(ports.KindUpdate)
	require.True(t, ok)
	payload, ok := update.Payload.(map[string]interface{})
	require.True(t, ok, "update payload carries the node id and data")
	assert.Equal(t, node.ID, payload["id"])
	assert.Equal(t, "ETH", payload["data"].(entities.NodeData).Params["tokenIn"])
	assert.True(t, env.notes.has(ports.KindToast, events.TypeNodeDataUpdated))

	nothing := env.send(t, commands.SaveConfigCommand{SessionID: id})
	assert.False(t, nothing.Applied)

	env.send(t, commands.SetFieldCommand{SessionID: id, Key: "slippage", Value: "500"})
	_, err := env.commands.Send(context.Background(), commands.SaveConfigCommand{SessionID: id})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	out, err := env.queries.Ask(context.Background(), queries.GetInspectorQuery{SessionID: id})
	require.NoError(t, err)
	view := out.(inspector.View)
	assert.True(t, view.Dirty)
	assert.Equal(t, "Swap not configured", view.Summary, "tokenOut is still missing")

	env.send(t, commands.TestNodeCommand{SessionID: id})
	assert.Eventually(t, func() bool {
		return env.notes.has(ports.KindToast, events.TypeNodeTestCompleted)
	}, time.Second, 5*time.Millisecond)

	env.send(t, commands.DeleteSelectedCommand{SessionID: id})
	assert.True(t, env.notes.has(ports.KindDelete, ""))
	assert.Empty(t, env.canvas(t, id).Nodes)
}

func TestEditorHandlers_Validation(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)

	_, err := env.commands.Send(context.Background(), commands.PointerCommand{SessionID: id, Phase: "tap"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	_, err = env.commands.Send(context.Background(), commands.DropNodeCommand{SessionID: "missing", Type: "web3-token"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestEditorHandlers_CloseSession(t *testing.T) {
	env := newTestEnv(t)
	id := env.open(t)

	env.send(t, commands.CloseSessionCommand{SessionID: id})
	assert.True(t, env.notes.has(ports.KindClosed, ""))

	_, err := env.queries.Ask(context.Background(), queries.GetCanvasQuery{SessionID: id})
	assert.True(t, pkgerrors.IsNotFound(err))
}
