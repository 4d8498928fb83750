package aggregates

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"workflowbuilder/domain/config"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/events"
	pkgerrors "workflowbuilder/pkg/errors"
)

// WorkflowID represents a unique workflow identifier
type WorkflowID string

// NewWorkflowID creates a new random WorkflowID
func NewWorkflowID() WorkflowID {
	return WorkflowID(uuid.New().String())
}

// String returns the string representation
func (id WorkflowID) String() string {
	return string(id)
}

// Workflow is the aggregate root for the graph being edited.
// Nodes and connections keep insertion order, which is also render order.
type Workflow struct {
	id          WorkflowID
	name        string
	nodes       []*entities.Node
	nodeIndex   map[valueobjects.NodeID]*entities.Node
	connections []entities.Connection
	pairs       map[string]bool
	config      *config.DomainConfig
	createdAt   time.Time
	updatedAt   time.Time
	version     int
	events      []events.DomainEvent
}

// NewWorkflow creates an empty workflow
func NewWorkflow(name string, cfg *config.DomainConfig) *Workflow {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if strings.TrimSpace(name) == "" {
		name = cfg.DefaultWorkflowName
	}
	now := time.Now()
	return &Workflow{
		id:        NewWorkflowID(),
		name:      name,
		nodeIndex: make(map[valueobjects.NodeID]*entities.Node),
		pairs:     make(map[string]bool),
		config:    cfg,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}
}

// ID returns the workflow's unique identifier
func (w *Workflow) ID() WorkflowID {
	return w.id
}

// Name returns the workflow's name
func (w *Workflow) Name() string {
	return w.name
}

// Version increases on every mutation
func (w *Workflow) Version() int {
	return w.version
}

// CreatedAt returns when the workflow was created
func (w *Workflow) CreatedAt() time.Time {
	return w.createdAt
}

// UpdatedAt returns when the workflow was last changed
func (w *Workflow) UpdatedAt() time.Time {
	return w.updatedAt
}

// Rename changes the workflow name
func (w *Workflow) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return pkgerrors.NewValidationError("workflow name cannot be empty")
	}
	if name == w.name {
		return nil
	}
	old := w.name
	w.name = name
	w.touch()
	w.addEvent(events.NewWorkflowRenamed(w.id.String(), old, name, w.updatedAt))
	return nil
}

// AddNode places a new node with a freshly minted id
func (w *Workflow) AddNode(kind valueobjects.NodeKind, position valueobjects.Position, data entities.NodeData) (*entities.Node, error) {
	if len(w.nodes) >= w.config.MaxNodesPerWorkflow {
		return nil, pkgerrors.NewValidationError(fmt.Sprintf("maximum nodes reached: %d", w.config.MaxNodesPerWorkflow))
	}
	node, err := entities.NewNode(kind, position, data)
	if err != nil {
		return nil, err
	}
	w.insertNode(node)
	w.touch()
	w.addEvent(events.NewNodeAdded(w.id.String(), node.ID(), kind, node.Title(), position, w.updatedAt))
	return node, nil
}

// MoveNode sets a node's position. Absent nodes are ignored.
// Consecutive moves of the same node collapse into one pending event.
func (w *Workflow) MoveNode(id valueobjects.NodeID, position valueobjects.Position) bool {
	node, ok := w.nodeIndex[id]
	if !ok {
		return false
	}
	old := node.Position()
	if !node.MoveTo(position) {
		return false
	}
	w.touch()

	if n := len(w.events); n > 0 {
		if last, ok := w.events[n-1].(events.NodeMoved); ok && last.NodeID.Equals(id) {
			w.events[n-1] = events.NewNodeMoved(w.id.String(), id, last.OldPosition, position, w.updatedAt)
			return true
		}
	}
	w.addEvent(events.NewNodeMoved(w.id.String(), id, old, position, w.updatedAt))
	return true
}

// UpdateNodeData merges a patch into a node's data. Absent nodes are ignored.
func (w *Workflow) UpdateNodeData(id valueobjects.NodeID, patch entities.DataPatch) bool {
	node, ok := w.nodeIndex[id]
	if !ok {
		return false
	}
	if !node.ApplyPatch(patch) {
		return false
	}
	w.touch()
	w.addEvent(events.NewNodeDataUpdated(w.id.String(), id, node.Title(), patch.Keys(), w.updatedAt))
	return true
}

// DeleteNode removes a node and every connection that references it.
// Deleting an absent node is a no-op.
func (w *Workflow) DeleteNode(id valueobjects.NodeID) bool {
	if _, ok := w.nodeIndex[id]; !ok {
		return false
	}

	kept := w.connections[:0]
	var removed []valueobjects.ConnectionID
	for _, c := range w.connections {
		if c.Touches(id) {
			removed = append(removed, c.ID)
			delete(w.pairs, c.PairKey())
			continue
		}
		kept = append(kept, c)
	}
	w.connections = kept

	delete(w.nodeIndex, id)
	for i, n := range w.nodes {
		if n.ID().Equals(id) {
			w.nodes = append(w.nodes[:i], w.nodes[i+1:]...)
			break
		}
	}

	w.touch()
	w.addEvent(events.NewNodeDeleted(w.id.String(), id, removed, w.updatedAt))
	return true
}

// AddConnection links source to target. It returns nil without changing
// anything for a self-loop, a duplicate pair or a missing endpoint.
func (w *Workflow) AddConnection(source, target valueobjects.NodeID, sourceHandle, targetHandle string) *entities.Connection {
	if source.Equals(target) {
		return nil
	}
	if !w.HasNode(source) || !w.HasNode(target) {
		return nil
	}
	if w.pairs[entities.PairKeyOf(source, target)] {
		return nil
	}
	if len(w.connections) >= w.config.MaxConnectionsPerWorkflow {
		return nil
	}

	conn := entities.NewConnection(source, target, sourceHandle, targetHandle)
	w.connections = append(w.connections, conn)
	w.pairs[conn.PairKey()] = true
	w.touch()
	w.addEvent(events.NewConnectionAdded(w.id.String(), conn.ID, source, target, w.updatedAt))
	return &conn
}

// DeleteConnection removes a connection. Absent ids are ignored.
func (w *Workflow) DeleteConnection(id valueobjects.ConnectionID) bool {
	for i, c := range w.connections {
		if c.ID == id {
			w.connections = append(w.connections[:i], w.connections[i+1:]...)
			delete(w.pairs, c.PairKey())
			w.touch()
			w.addEvent(events.NewConnectionDeleted(w.id.String(), c.ID, c.Source, c.Target, w.updatedAt))
			return true
		}
	}
	return false
}

// ReplaceGraph swaps the whole graph for the template's contents.
// Every node and connection gets a fresh id. On any error the previous
// graph is kept untouched.
func (w *Workflow) ReplaceGraph(t Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if len(t.Nodes) > w.config.MaxNodesPerWorkflow {
		return pkgerrors.NewValidationError(fmt.Sprintf("template exceeds maximum nodes: %d", w.config.MaxNodesPerWorkflow))
	}
	if len(t.Connections) > w.config.MaxConnectionsPerWorkflow {
		return pkgerrors.NewValidationError(fmt.Sprintf("template exceeds maximum connections: %d", w.config.MaxConnectionsPerWorkflow))
	}

	nodes := make([]*entities.Node, 0, len(t.Nodes))
	index := make(map[valueobjects.NodeID]*entities.Node, len(t.Nodes))
	remap := make(map[string]valueobjects.NodeID, len(t.Nodes))
	for _, tn := range t.Nodes {
		node, err := entities.NewNode(valueobjects.NodeKind(tn.Type), tn.Position, tn.Data)
		if err != nil {
			return err
		}
		nodes = append(nodes, node)
		index[node.ID()] = node
		remap[tn.ID] = node.ID()
	}

	conns := make([]entities.Connection, 0, len(t.Connections))
	pairs := make(map[string]bool, len(t.Connections))
	for _, tc := range t.Connections {
		conn := entities.NewConnection(remap[tc.Source], remap[tc.Target], tc.SourceHandle, tc.TargetHandle)
		conns = append(conns, conn)
		pairs[conn.PairKey()] = true
	}

	w.nodes = nodes
	w.nodeIndex = index
	w.connections = conns
	w.pairs = pairs
	w.touch()

	name := t.Name
	if name == "" {
		name = "Custom"
	}
	w.addEvent(events.NewTemplateApplied(w.id.String(), name, len(nodes), len(conns), w.updatedAt))
	return nil
}

// Node returns the node with the given id
func (w *Workflow) Node(id valueobjects.NodeID) (*entities.Node, bool) {
	n, ok := w.nodeIndex[id]
	return n, ok
}

// HasNode checks if a node exists in the workflow
func (w *Workflow) HasNode(id valueobjects.NodeID) bool {
	_, ok := w.nodeIndex[id]
	return ok
}

// Nodes returns the nodes in insertion order
func (w *Workflow) Nodes() []*entities.Node {
	out := make([]*entities.Node, len(w.nodes))
	copy(out, w.nodes)
	return out
}

// Connections returns the connections in insertion order
func (w *Workflow) Connections() []entities.Connection {
	out := make([]entities.Connection, len(w.connections))
	copy(out, w.connections)
	return out
}

// Connection returns the connection with the given id
func (w *Workflow) Connection(id valueobjects.ConnectionID) (entities.Connection, bool) {
	for _, c := range w.connections {
		if c.ID == id {
			return c, true
		}
	}
	return entities.Connection{}, false
}

// NodeCount returns the number of nodes
func (w *Workflow) NodeCount() int {
	return len(w.nodes)
}

// ConnectionCount returns the number of connections
func (w *Workflow) ConnectionCount() int {
	return len(w.connections)
}

// Validate ensures graph invariants
func (w *Workflow) Validate() error {
	if len(w.nodes) != len(w.nodeIndex) {
		return errors.New("node index mismatch")
	}
	seen := make(map[string]bool, len(w.connections))
	for _, c := range w.connections {
		if !w.HasNode(c.Source) {
			return errors.New("connection references non-existent source node")
		}
		if !w.HasNode(c.Target) {
			return errors.New("connection references non-existent target node")
		}
		if c.IsSelfLoop() {
			return errors.New("connection is a self-loop")
		}
		if seen[c.PairKey()] {
			return errors.New("duplicate connection pair")
		}
		seen[c.PairKey()] = true
	}
	return nil
}

// WorkflowSnapshot is the serializable form of the graph
type WorkflowSnapshot struct {
	ID          WorkflowID              `json:"id"`
	Name        string                  `json:"name"`
	Version     int                     `json:"version"`
	Nodes       []entities.NodeSnapshot `json:"nodes"`
	Connections []entities.Connection   `json:"connections"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// Snapshot returns a copy of the graph suitable for serialization
func (w *Workflow) Snapshot() WorkflowSnapshot {
	nodes := make([]entities.NodeSnapshot, 0, len(w.nodes))
	for _, n := range w.nodes {
		nodes = append(nodes, n.Snapshot())
	}
	return WorkflowSnapshot{
		ID:          w.id,
		Name:        w.name,
		Version:     w.version,
		Nodes:       nodes,
		Connections: w.Connections(),
		UpdatedAt:   w.updatedAt,
	}
}

// AsTemplate exports the current graph as a template, keeping ids
func (w *Workflow) AsTemplate() Template {
	t := Template{Name: w.name}
	for _, n := range w.nodes {
		t.Nodes = append(t.Nodes, TemplateNode{
			ID:       n.ID().String(),
			Type:     n.Kind().String(),
			Position: n.Position(),
			Data:     n.Data(),
		})
	}
	for _, c := range w.connections {
		t.Connections = append(t.Connections, TemplateConnection{
			ID:           c.ID.String(),
			Source:       c.Source.String(),
			Target:       c.Target.String(),
			SourceHandle: c.SourceHandle,
			TargetHandle: c.TargetHandle,
		})
	}
	return t
}

// GetUncommittedEvents returns all uncommitted domain events
func (w *Workflow) GetUncommittedEvents() []events.DomainEvent {
	out := make([]events.DomainEvent, len(w.events))
	copy(out, w.events)
	return out
}

// MarkEventsAsCommitted clears the uncommitted events
func (w *Workflow) MarkEventsAsCommitted() {
	w.events = []events.DomainEvent{}
}

// PullEvents returns and clears the uncommitted events
func (w *Workflow) PullEvents() []events.DomainEvent {
	out := w.events
	w.events = []events.DomainEvent{}
	return out
}

// Private helper methods

func (w *Workflow) insertNode(node *entities.Node) {
	w.nodes = append(w.nodes, node)
	w.nodeIndex[node.ID()] = node
}

func (w *Workflow) touch() {
	w.updatedAt = time.Now()
	w.version++
}

func (w *Workflow) addEvent(event events.DomainEvent) {
	w.events = append(w.events, event)
}
