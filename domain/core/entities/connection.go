package entities

import (
	"workflowbuilder/domain/core/valueobjects"
)

// Default handle names
const (
	OutputHandle = "output"
	InputHandle  = "input"
)

// Connection is a directed link from a source node's output to a target node's input
type Connection struct {
	ID           valueobjects.ConnectionID `json:"id"`
	Source       valueobjects.NodeID       `json:"source"`
	Target       valueobjects.NodeID       `json:"target"`
	SourceHandle string                    `json:"sourceHandle"`
	TargetHandle string                    `json:"targetHandle"`
}

// NewConnection creates a connection with a fresh id. Empty handles take the defaults.
func NewConnection(source, target valueobjects.NodeID, sourceHandle, targetHandle string) Connection {
	if sourceHandle == "" {
		sourceHandle = OutputHandle
	}
	if targetHandle == "" {
		targetHandle = InputHandle
	}
	return Connection{
		ID:           valueobjects.NewConnectionID(),
		Source:       source,
		Target:       target,
		SourceHandle: sourceHandle,
		TargetHandle: targetHandle,
	}
}

// Touches reports whether the connection references the node
func (c Connection) Touches(id valueobjects.NodeID) bool {
	return c.Source.Equals(id) || c.Target.Equals(id)
}

// IsSelfLoop reports whether source and target are the same node
func (c Connection) IsSelfLoop() bool {
	return c.Source.Equals(c.Target)
}

// PairKey identifies the ordered (source, target) pair
func (c Connection) PairKey() string {
	return PairKeyOf(c.Source, c.Target)
}

// PairKeyOf identifies an ordered (source, target) pair
func PairKeyOf(source, target valueobjects.NodeID) string {
	return source.String() + "->" + target.String()
}
