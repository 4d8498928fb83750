package aggregates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/events"
	pkgerrors "workflowbuilder/pkg/errors"
)

func addNode(t *testing.T, wf *Workflow, kind string, x, y float64) *entities.Node {
	t.Helper()
	n, err := wf.AddNode(valueobjects.NodeKind(kind), valueobjects.NewPosition(x, y), entities.NodeData{Title: kind})
	require.NoError(t, err)
	return n
}

func strPtr(s string) *string { return &s }

func TestNewWorkflow(t *testing.T) {
	wf := NewWorkflow("", nil)

	assert.NotEmpty(t, wf.ID())
	assert.Equal(t, config.DefaultDomainConfig().DefaultWorkflowName, wf.Name())
	assert.Equal(t, 0, wf.NodeCount())
	assert.Equal(t, 0, wf.ConnectionCount())
	assert.Equal(t, 1, wf.Version())
	assert.Empty(t, wf.GetUncommittedEvents())
}

func TestWorkflow_AddNode(t *testing.T) {
	wf := NewWorkflow("Test", nil)

	a := addNode(t, wf, "web3-defi", 10, 20)
	b := addNode(t, wf, "web3-defi", 10, 20)

	assert.False(t, a.ID().Equals(b.ID()), "ids must be unique")
	assert.Equal(t, 2, wf.NodeCount())
	assert.Nil(t, a.Data().Params)

	evts := wf.GetUncommittedEvents()
	require.Len(t, evts, 2)
	assert.Equal(t, events.TypeNodeAdded, evts[0].GetEventType())
	assert.Equal(t, "Node Added", evts[0].GetTitle())

	_, err := wf.AddNode("", valueobjects.Position{}, entities.NodeData{})
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestWorkflow_AddNodeLimit(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNodesPerWorkflow = 1
	wf := NewWorkflow("Limited", cfg)

	addNode(t, wf, "web2-api", 0, 0)
	_, err := wf.AddNode("web2-api", valueobjects.Position{}, entities.NodeData{})
	assert.Error(t, err)
	assert.Equal(t, 1, wf.NodeCount())
}

func TestWorkflow_MoveNode(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	n := addNode(t, wf, "web2-time", 0, 0)
	wf.MarkEventsAsCommitted()

	assert.True(t, wf.MoveNode(n.ID(), valueobjects.NewPosition(10, 10)))
	assert.True(t, wf.MoveNode(n.ID(), valueobjects.NewPosition(20, 20)))
	assert.True(t, wf.MoveNode(n.ID(), valueobjects.NewPosition(40, 60)))

	evts := wf.GetUncommittedEvents()
	require.Len(t, evts, 1, "consecutive moves collapse into one event")
	moved := evts[0].(events.NodeMoved)
	assert.Equal(t, valueobjects.NewPosition(0, 0), moved.OldPosition)
	assert.Equal(t, valueobjects.NewPosition(40, 60), moved.NewPosition)

	assert.False(t, wf.MoveNode(valueobjects.NewNodeID(), valueobjects.NewPosition(1, 1)), "absent node is a no-op")
	assert.False(t, wf.MoveNode(n.ID(), valueobjects.NewPosition(40, 60)), "same position is a no-op")
}

func TestWorkflow_UpdateNodeData(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	n := addNode(t, wf, "web3-token", 0, 0)

	tests := []struct {
		name       string
		patch      entities.DataPatch
		wantTitle  string
		wantParams map[string]interface{}
	}{
		{
			name:       "params merge into empty",
			patch:      entities.DataPatch{Params: map[string]interface{}{"token": "ETH"}},
			wantTitle:  "web3-token",
			wantParams: map[string]interface{}{"token": "ETH"},
		},
		{
			name:       "title only keeps params",
			patch:      entities.DataPatch{Title: strPtr("Price Alert")},
			wantTitle:  "Price Alert",
			wantParams: map[string]interface{}{"token": "ETH"},
		},
		{
			name:       "second key merges",
			patch:      entities.DataPatch{Params: map[string]interface{}{"threshold": 2000.0}},
			wantTitle:  "Price Alert",
			wantParams: map[string]interface{}{"token": "ETH", "threshold": 2000.0},
		},
		{
			name:       "nil value removes key",
			patch:      entities.DataPatch{Params: map[string]interface{}{"token": nil}},
			wantTitle:  "Price Alert",
			wantParams: map[string]interface{}{"threshold": 2000.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, wf.UpdateNodeData(n.ID(), tt.patch))
			got, ok := wf.Node(n.ID())
			require.True(t, ok)
			assert.Equal(t, tt.wantTitle, got.Data().Title)
			assert.Equal(t, tt.wantParams, got.Data().Params)
		})
	}

	assert.False(t, wf.UpdateNodeData(valueobjects.NewNodeID(), entities.DataPatch{Title: strPtr("x")}))
	assert.False(t, wf.UpdateNodeData(n.ID(), entities.DataPatch{}))
}

func TestWorkflow_DeleteNodeCascades(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	a := addNode(t, wf, "web3-token", 0, 0)
	b := addNode(t, wf, "web3-defi", 300, 0)
	c := addNode(t, wf, "web2-social", 600, 0)
	require.NotNil(t, wf.AddConnection(a.ID(), b.ID(), "", ""))
	require.NotNil(t, wf.AddConnection(b.ID(), c.ID(), "", ""))
	keep := wf.AddConnection(a.ID(), c.ID(), "", "")
	require.NotNil(t, keep)

	assert.True(t, wf.DeleteNode(b.ID()))

	assert.Equal(t, 2, wf.NodeCount())
	conns := wf.Connections()
	require.Len(t, conns, 1)
	assert.Equal(t, keep.ID, conns[0].ID)
	require.NoError(t, wf.Validate())

	assert.False(t, wf.DeleteNode(b.ID()), "second delete is a no-op")

	evts := wf.GetUncommittedEvents()
	deleted := evts[len(evts)-1].(events.NodeDeleted)
	assert.Len(t, deleted.RemovedConnectionIDs, 2)
}

func TestWorkflow_AddConnection(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	a := addNode(t, wf, "web3-token", 0, 0)
	b := addNode(t, wf, "web3-defi", 300, 0)

	conn := wf.AddConnection(a.ID(), b.ID(), "", "")
	require.NotNil(t, conn)
	assert.Equal(t, entities.OutputHandle, conn.SourceHandle)
	assert.Equal(t, entities.InputHandle, conn.TargetHandle)

	tests := []struct {
		name   string
		source valueobjects.NodeID
		target valueobjects.NodeID
	}{
		{name: "self loop", source: a.ID(), target: a.ID()},
		{name: "duplicate pair", source: a.ID(), target: b.ID()},
		{name: "missing source", source: valueobjects.NewNodeID(), target: b.ID()},
		{name: "missing target", source: a.ID(), target: valueobjects.NewNodeID()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := wf.Version()
			assert.Nil(t, wf.AddConnection(tt.source, tt.target, "", ""))
			assert.Equal(t, 1, wf.ConnectionCount())
			assert.Equal(t, before, wf.Version())
		})
	}

	t.Run("reverse pair is distinct", func(t *testing.T) {
		assert.NotNil(t, wf.AddConnection(b.ID(), a.ID(), "", ""))
	})
}

func TestWorkflow_DeleteConnection(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	a := addNode(t, wf, "web3-token", 0, 0)
	b := addNode(t, wf, "web3-defi", 300, 0)
	conn := wf.AddConnection(a.ID(), b.ID(), "", "")
	require.NotNil(t, conn)

	assert.True(t, wf.DeleteConnection(conn.ID))
	assert.Equal(t, 0, wf.ConnectionCount())
	assert.False(t, wf.DeleteConnection(conn.ID))
	assert.NotNil(t, wf.AddConnection(a.ID(), b.ID(), "", ""), "pair is free again")
}

func sampleTemplate() Template {
	return Template{
		Name: "DeFi Yield Optimizer",
		Nodes: []TemplateNode{
			{ID: "1", Type: "web2-time", Position: valueobjects.NewPosition(100, 100), Data: entities.NodeData{Title: "Daily Check"}},
			{ID: "2", Type: "web3-defi", Position: valueobjects.NewPosition(400, 100), Data: entities.NodeData{Title: "Check Yields"}},
			{ID: "3", Type: "web3-wallet", Position: valueobjects.NewPosition(700, 100), Data: entities.NodeData{Title: "Rebalance"}},
		},
		Connections: []TemplateConnection{
			{ID: "c1", Source: "1", Target: "2"},
			{ID: "c2", Source: "2", Target: "3"},
		},
	}
}

func TestWorkflow_ReplaceGraph(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	addNode(t, wf, "web2-api", 0, 0)

	require.NoError(t, wf.ReplaceGraph(sampleTemplate()))

	nodes := wf.Nodes()
	require.Len(t, nodes, 3)
	conns := wf.Connections()
	require.Len(t, conns, 2)

	for _, n := range nodes {
		assert.NotContains(t, []string{"1", "2", "3"}, n.ID().String(), "ids are re-minted")
	}
	assert.True(t, conns[0].Source.Equals(nodes[0].ID()))
	assert.True(t, conns[0].Target.Equals(nodes[1].ID()))
	assert.True(t, conns[1].Source.Equals(nodes[1].ID()))
	assert.True(t, conns[1].Target.Equals(nodes[2].ID()))
	assert.Equal(t, "Check Yields", nodes[1].Title())
	require.NoError(t, wf.Validate())

	evts := wf.GetUncommittedEvents()
	last := evts[len(evts)-1]
	assert.Equal(t, events.TypeTemplateApplied, last.GetEventType())
	assert.Equal(t, "Template Applied", last.GetTitle())
}

func TestWorkflow_ReplaceGraphTwice(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	require.NoError(t, wf.ReplaceGraph(sampleTemplate()))
	first := wf.Nodes()
	require.NoError(t, wf.ReplaceGraph(sampleTemplate()))
	second := wf.Nodes()

	assert.Len(t, second, 3, "replace is never additive")
	assert.Len(t, wf.Connections(), 2)
	for i := range first {
		assert.False(t, first[i].ID().Equals(second[i].ID()))
	}
}

func TestWorkflow_ReplaceGraphAtomic(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Template)
	}{
		{name: "unknown connection endpoint", mutate: func(tpl *Template) {
			tpl.Connections = append(tpl.Connections, TemplateConnection{Source: "3", Target: "99"})
		}},
		{name: "duplicate node id", mutate: func(tpl *Template) {
			tpl.Nodes = append(tpl.Nodes, TemplateNode{ID: "1", Type: "web2-api"})
		}},
		{name: "empty node type", mutate: func(tpl *Template) {
			tpl.Nodes[2].Type = ""
		}},
		{name: "self loop", mutate: func(tpl *Template) {
			tpl.Connections = append(tpl.Connections, TemplateConnection{Source: "2", Target: "2"})
		}},
		{name: "duplicate pair", mutate: func(tpl *Template) {
			tpl.Connections = append(tpl.Connections, TemplateConnection{Source: "1", Target: "2"})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf := NewWorkflow("Test", nil)
			kept := addNode(t, wf, "web2-api", 0, 0)
			before := wf.Snapshot()

			tpl := sampleTemplate()
			tt.mutate(&tpl)
			err := wf.ReplaceGraph(tpl)

			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Equal(t, before, wf.Snapshot())
			assert.True(t, wf.HasNode(kept.ID()))
		})
	}
}

func TestWorkflow_Rename(t *testing.T) {
	wf := NewWorkflow("Old", nil)
	require.NoError(t, wf.Rename("  New  "))
	assert.Equal(t, "New", wf.Name())
	assert.Error(t, wf.Rename("   "))
}

func TestWorkflow_AsTemplateRoundTrip(t *testing.T) {
	wf := NewWorkflow("Source", nil)
	require.NoError(t, wf.ReplaceGraph(sampleTemplate()))

	copyWf := NewWorkflow("Copy", nil)
	require.NoError(t, copyWf.ReplaceGraph(wf.AsTemplate()))
	assert.Equal(t, wf.NodeCount(), copyWf.NodeCount())
	assert.Equal(t, wf.ConnectionCount(), copyWf.ConnectionCount())
}

func TestWorkflow_PullEvents(t *testing.T) {
	wf := NewWorkflow("Test", nil)
	addNode(t, wf, "web2-api", 0, 0)

	assert.Len(t, wf.PullEvents(), 1)
	assert.Empty(t, wf.PullEvents())
}
