package events

import (
	"fmt"
	"time"

	"workflowbuilder/domain/core/valueobjects"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
	// GetTitle and GetDescription are the human-readable notification text
	GetTitle() string
	GetDescription() string
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }
func (e BaseEvent) GetTitle() string        { return e.Title }
func (e BaseEvent) GetDescription() string  { return e.Description }

const (
	TypeNodeAdded         = "node.added"
	TypeNodeMoved         = "node.moved"
	TypeNodeDataUpdated   = "node.data_updated"
	TypeNodeDeleted       = "node.deleted"
	TypeConnectionAdded   = "connection.added"
	TypeConnectionDeleted = "connection.deleted"
	TypeTemplateApplied   = "template.applied"
	TypeWorkflowRenamed   = "workflow.renamed"
	TypeNodeTestStarted   = "node.test_started"
	TypeNodeTestCompleted = "node.test_completed"
)

func newBase(aggregateID, eventType, title, description string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
		Title:       title,
		Description: description,
	}
}

// Node Events

// NodeAdded is raised when a node is placed on the canvas
type NodeAdded struct {
	BaseEvent
	NodeID   valueobjects.NodeID   `json:"node_id"`
	Kind     valueobjects.NodeKind `json:"kind"`
	Position valueobjects.Position `json:"position"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(workflowID string, nodeID valueobjects.NodeID, kind valueobjects.NodeKind, title string, pos valueobjects.Position, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(workflowID, TypeNodeAdded, "Node Added",
			fmt.Sprintf("%s added to workflow", title), timestamp),
		NodeID:   nodeID,
		Kind:     kind,
		Position: pos,
	}
}

// NodeMoved is raised when a node is moved to a new position.
// Consecutive moves of one node during a drag collapse into a single event.
type NodeMoved struct {
	BaseEvent
	NodeID      valueobjects.NodeID   `json:"node_id"`
	OldPosition valueobjects.Position `json:"old_position"`
	NewPosition valueobjects.Position `json:"new_position"`
}

// NewNodeMoved creates a NodeMoved event
func NewNodeMoved(workflowID string, nodeID valueobjects.NodeID, oldPos, newPos valueobjects.Position, timestamp time.Time) NodeMoved {
	return NodeMoved{
		BaseEvent: newBase(workflowID, TypeNodeMoved, "Node Moved",
			fmt.Sprintf("Node moved to (%.0f, %.0f)", newPos.X, newPos.Y), timestamp),
		NodeID:      nodeID,
		OldPosition: oldPos,
		NewPosition: newPos,
	}
}

// NodeDataUpdated is raised when a node's title or params change
type NodeDataUpdated struct {
	BaseEvent
	NodeID      valueobjects.NodeID `json:"node_id"`
	ChangedKeys []string            `json:"changed_keys"`
}

// NewNodeDataUpdated creates a NodeDataUpdated event
func NewNodeDataUpdated(workflowID string, nodeID valueobjects.NodeID, title string, changed []string, timestamp time.Time) NodeDataUpdated {
	return NodeDataUpdated{
		BaseEvent: newBase(workflowID, TypeNodeDataUpdated, "Configuration Saved",
			fmt.Sprintf("%s configuration has been updated", title), timestamp),
		NodeID:      nodeID,
		ChangedKeys: changed,
	}
}

// NodeDeleted is raised when a node and its connections are removed
type NodeDeleted struct {
	BaseEvent
	NodeID               valueobjects.NodeID         `json:"node_id"`
	RemovedConnectionIDs []valueobjects.ConnectionID `json:"removed_connection_ids"`
}

// NewNodeDeleted creates a NodeDeleted event
func NewNodeDeleted(workflowID string, nodeID valueobjects.NodeID, removed []valueobjects.ConnectionID, timestamp time.Time) NodeDeleted {
	return NodeDeleted{
		BaseEvent: newBase(workflowID, TypeNodeDeleted, "Node Deleted",
			"Node has been removed from the workflow", timestamp),
		NodeID:               nodeID,
		RemovedConnectionIDs: removed,
	}
}

// Connection Events

// ConnectionAdded is raised when two nodes are connected
type ConnectionAdded struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
	SourceID     valueobjects.NodeID       `json:"source_id"`
	TargetID     valueobjects.NodeID       `json:"target_id"`
}

// NewConnectionAdded creates a ConnectionAdded event
func NewConnectionAdded(workflowID string, id valueobjects.ConnectionID, source, target valueobjects.NodeID, timestamp time.Time) ConnectionAdded {
	return ConnectionAdded{
		BaseEvent: newBase(workflowID, TypeConnectionAdded, "Connection Created",
			"Nodes have been connected successfully", timestamp),
		ConnectionID: id,
		SourceID:     source,
		TargetID:     target,
	}
}

// ConnectionDeleted is raised when a connection is removed
type ConnectionDeleted struct {
	BaseEvent
	ConnectionID valueobjects.ConnectionID `json:"connection_id"`
	SourceID     valueobjects.NodeID       `json:"source_id"`
	TargetID     valueobjects.NodeID       `json:"target_id"`
}

// NewConnectionDeleted creates a ConnectionDeleted event
func NewConnectionDeleted(workflowID string, id valueobjects.ConnectionID, source, target valueobjects.NodeID, timestamp time.Time) ConnectionDeleted {
	return ConnectionDeleted{
		BaseEvent: newBase(workflowID, TypeConnectionDeleted, "Connection Deleted",
			"Connection has been removed", timestamp),
		ConnectionID: id,
		SourceID:     source,
		TargetID:     target,
	}
}

// Workflow Events

// TemplateApplied is raised when the whole graph is replaced by a template
type TemplateApplied struct {
	BaseEvent
	TemplateName    string `json:"template_name"`
	NodeCount       int    `json:"node_count"`
	ConnectionCount int    `json:"connection_count"`
}

// NewTemplateApplied creates a TemplateApplied event
func NewTemplateApplied(workflowID, name string, nodes, connections int, timestamp time.Time) TemplateApplied {
	return TemplateApplied{
		BaseEvent: newBase(workflowID, TypeTemplateApplied, "Template Applied",
			fmt.Sprintf("%s template has been loaded", name), timestamp),
		TemplateName:    name,
		NodeCount:       nodes,
		ConnectionCount: connections,
	}
}

// WorkflowRenamed is raised when the workflow name changes
type WorkflowRenamed struct {
	BaseEvent
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// NewWorkflowRenamed creates a WorkflowRenamed event
func NewWorkflowRenamed(workflowID, oldName, newName string, timestamp time.Time) WorkflowRenamed {
	return WorkflowRenamed{
		BaseEvent: newBase(workflowID, TypeWorkflowRenamed, "Workflow Renamed",
			fmt.Sprintf("Workflow renamed to %s", newName), timestamp),
		OldName: oldName,
		NewName: newName,
	}
}

// Inspector Events

// NodeTestStarted is raised when a node test run begins
type NodeTestStarted struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeTestStarted creates a NodeTestStarted event
func NewNodeTestStarted(workflowID string, nodeID valueobjects.NodeID, title string, timestamp time.Time) NodeTestStarted {
	return NodeTestStarted{
		BaseEvent: newBase(workflowID, TypeNodeTestStarted, "Node Test Started",
			fmt.Sprintf("Testing %s...", title), timestamp),
		NodeID: nodeID,
	}
}

// NodeTestCompleted is raised when a node test run finishes
type NodeTestCompleted struct {
	BaseEvent
	NodeID valueobjects.NodeID `json:"node_id"`
}

// NewNodeTestCompleted creates a NodeTestCompleted event
func NewNodeTestCompleted(workflowID string, nodeID valueobjects.NodeID, title string, timestamp time.Time) NodeTestCompleted {
	return NodeTestCompleted{
		BaseEvent: newBase(workflowID, TypeNodeTestCompleted, "Node Test Complete",
			fmt.Sprintf("%s test completed successfully", title), timestamp),
		NodeID: nodeID,
	}
}
