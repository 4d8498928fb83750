package entities

import (
	"sort"

	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

// NodeData is the user-editable payload of a node. Params is an open map
// whose meaning depends on the node kind.
type NodeData struct {
	Title  string                 `json:"title"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// Clone returns a deep-enough copy: the params map is copied, nested values are shared.
func (d NodeData) Clone() NodeData {
	out := NodeData{Title: d.Title}
	if len(d.Params) > 0 {
		out.Params = make(map[string]interface{}, len(d.Params))
		for k, v := range d.Params {
			out.Params[k] = v
		}
	}
	return out
}

// DataPatch is a partial update for NodeData.
// A nil Title leaves the title unchanged. A nil value in Params removes that key.
type DataPatch struct {
	Title  *string                `json:"title,omitempty"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// IsEmpty reports whether the patch changes nothing
func (p DataPatch) IsEmpty() bool {
	return p.Title == nil && len(p.Params) == 0
}

// Keys returns the changed keys in a stable order, "title" first when present
func (p DataPatch) Keys() []string {
	keys := make([]string, 0, len(p.Params)+1)
	for k := range p.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if p.Title != nil {
		keys = append([]string{"title"}, keys...)
	}
	return keys
}

// Node is a single step of a workflow placed on the canvas
type Node struct {
	id       valueobjects.NodeID
	kind     valueobjects.NodeKind
	position valueobjects.Position
	data     NodeData
}

// NewNode creates a node with a freshly minted id
func NewNode(kind valueobjects.NodeKind, position valueobjects.Position, data NodeData) (*Node, error) {
	return ReconstructNode(valueobjects.NewNodeID(), kind, position, data)
}

// ReconstructNode builds a node with a known id
func ReconstructNode(id valueobjects.NodeID, kind valueobjects.NodeKind, position valueobjects.Position, data NodeData) (*Node, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("node id cannot be empty")
	}
	if kind.IsZero() {
		return nil, pkgerrors.NewValidationError("node type cannot be empty")
	}
	return &Node{
		id:       id,
		kind:     kind,
		position: position,
		data:     data.Clone(),
	}, nil
}

// ID returns the node's unique identifier
func (n *Node) ID() valueobjects.NodeID {
	return n.id
}

// Kind returns the node type
func (n *Node) Kind() valueobjects.NodeKind {
	return n.kind
}

// Position returns the node's top-left corner in logical space
func (n *Node) Position() valueobjects.Position {
	return n.position
}

// Data returns a copy of the node's data
func (n *Node) Data() NodeData {
	return n.data.Clone()
}

// Title returns the display title
func (n *Node) Title() string {
	return n.data.Title
}

// MoveTo moves the node. It reports whether the position changed.
func (n *Node) MoveTo(position valueobjects.Position) bool {
	if position.Equals(n.position) {
		return false
	}
	n.position = position
	return true
}

// ApplyPatch merges a patch into the node's data.
// The title is replaced when given; params merge key by key.
func (n *Node) ApplyPatch(patch DataPatch) bool {
	if patch.IsEmpty() {
		return false
	}
	if patch.Title != nil {
		n.data.Title = *patch.Title
	}
	for k, v := range patch.Params {
		if v == nil {
			delete(n.data.Params, k)
			continue
		}
		if n.data.Params == nil {
			n.data.Params = make(map[string]interface{})
		}
		n.data.Params[k] = v
	}
	return true
}

// Bounds returns the node rectangle for the given fixed dimensions
func (n *Node) Bounds(width, height float64) valueobjects.Rect {
	return valueobjects.NewRect(n.position, width, height)
}

// NodeSnapshot is the serializable form of a node
type NodeSnapshot struct {
	ID       valueobjects.NodeID   `json:"id"`
	Type     valueobjects.NodeKind `json:"type"`
	Position valueobjects.Position `json:"position"`
	Data     NodeData              `json:"data"`
}

// Snapshot returns the serializable form of the node
func (n *Node) Snapshot() NodeSnapshot {
	return NodeSnapshot{ID: n.id, Type: n.kind, Position: n.position, Data: n.Data()}
}
