package valueobjects

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

// NodeID is a value object representing a unique node identifier
// Value objects are immutable and have no identity beyond their value
type NodeID struct {
	value string
}

// NewNodeID creates a new random NodeID
func NewNodeID() NodeID {
	return NodeID{value: uuid.New().String()}
}

// NewNodeIDFromString creates a NodeID from an existing string.
// Template and client ids are opaque, so only emptiness is rejected.
func NewNodeIDFromString(id string) (NodeID, error) {
	if id == "" {
		return NodeID{}, errors.New("node ID cannot be empty")
	}
	return NodeID{value: id}, nil
}

// String returns the string representation of the NodeID
func (id NodeID) String() string {
	return id.value
}

// Equals checks if two NodeIDs are equal
func (id NodeID) Equals(other NodeID) bool {
	return id.value == other.value
}

// IsZero checks if the NodeID is the zero value
func (id NodeID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id NodeID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *NodeID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("NodeID must be a string")
	}
	id.value = s
	return nil
}

// ConnectionID identifies a connection between two nodes
type ConnectionID struct {
	value string
}

// NewConnectionID creates a new random ConnectionID
func NewConnectionID() ConnectionID {
	return ConnectionID{value: uuid.New().String()}
}

// NewConnectionIDFromString creates a ConnectionID from an existing string
func NewConnectionIDFromString(id string) (ConnectionID, error) {
	if id == "" {
		return ConnectionID{}, errors.New("connection ID cannot be empty")
	}
	return ConnectionID{value: id}, nil
}

// String returns the string representation of the ConnectionID
func (id ConnectionID) String() string {
	return id.value
}

// IsZero checks if the ConnectionID is the zero value
func (id ConnectionID) IsZero() bool {
	return id.value == ""
}

// MarshalJSON implements json.Marshaler
func (id ConnectionID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *ConnectionID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("ConnectionID must be a string")
	}
	id.value = s
	return nil
}
