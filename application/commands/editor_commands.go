package commands

import (
	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/versioning"
	pkgerrors "workflowbuilder/pkg/errors"
	"workflowbuilder/pkg/utils"
)

// Limits on free-text inputs
const (
	MaxNameLength  = 200
	MaxTitleLength = 200
	MaxValueLength = 50000
)

// Result is what an intent reports back. Applied is false when the intent
// was valid but changed nothing (an ignored drop, a duplicate connection).
type Result struct {
	Applied    bool                    `json:"applied"`
	SessionID  string                  `json:"sessionId,omitempty"`
	Node       *entities.NodeSnapshot  `json:"node,omitempty"`
	Connection *entities.Connection    `json:"connection,omitempty"`
	Patch      *entities.DataPatch     `json:"patch,omitempty"`
	Diff       *versioning.VersionDiff `json:"diff,omitempty"`
	Zoom       float64                 `json:"zoom,omitempty"`
	Gesture    string                  `json:"gesture,omitempty"`
}

// CreateSessionCommand opens an editor session
type CreateSessionCommand struct {
	Name string `json:"name" validate:"max=200"`
}

func (c CreateSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// CloseSessionCommand ends an editor session
type CloseSessionCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (c CloseSessionCommand) Validate() error { return utils.ValidateStruct(c) }

// RenameWorkflowCommand changes the workflow name
type RenameWorkflowCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	Name      string `json:"name" validate:"required,max=200"`
}

func (c RenameWorkflowCommand) Validate() error { return utils.ValidateStruct(c) }

// DropNodeCommand places a palette item at a screen point
type DropNodeCommand struct {
	SessionID string  `json:"sessionId" validate:"required"`
	Type      string  `json:"type" validate:"required"`
	Title     string  `json:"title" validate:"max=200"`
	ItemID    string  `json:"id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func (c DropNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// Pointer phases
const (
	PhaseDown = "down"
	PhaseMove = "move"
	PhaseUp   = "up"
)

// PointerCommand feeds one pointer event in screen space
type PointerCommand struct {
	SessionID string  `json:"sessionId" validate:"required"`
	Phase     string  `json:"phase" validate:"required,oneof=down move up"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func (c PointerCommand) Validate() error { return utils.ValidateStruct(c) }

// SetModeCommand switches the toolbar mode
type SetModeCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	Mode      string `json:"mode" validate:"required,oneof=select connect pan"`
}

func (c SetModeCommand) Validate() error { return utils.ValidateStruct(c) }

// Zoom directions
const (
	ZoomIn    = "in"
	ZoomOut   = "out"
	ZoomReset = "reset"
)

// ZoomCommand applies a toolbar zoom button
type ZoomCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	Direction string `json:"direction" validate:"required,oneof=in out reset"`
}

func (c ZoomCommand) Validate() error { return utils.ValidateStruct(c) }

// WheelCommand is one mouse-wheel tick over the canvas
type WheelCommand struct {
	SessionID string  `json:"sessionId" validate:"required"`
	DeltaY    float64 `json:"deltaY"`
	Modifier  bool    `json:"modifier"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func (c WheelCommand) Validate() error { return utils.ValidateStruct(c) }

// ToggleGridCommand flips grid visibility
type ToggleGridCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (c ToggleGridCommand) Validate() error { return utils.ValidateStruct(c) }

// SelectNodeCommand selects a node; an empty NodeID clears the selection
type SelectNodeCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	NodeID    string `json:"nodeId"`
}

func (c SelectNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// MoveNodeCommand places a node at a logical position
type MoveNodeCommand struct {
	SessionID string  `json:"sessionId" validate:"required"`
	NodeID    string  `json:"nodeId" validate:"required"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

func (c MoveNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// UpdateNodeDataCommand merges a patch into a node's data
type UpdateNodeDataCommand struct {
	SessionID string                 `json:"sessionId" validate:"required"`
	NodeID    string                 `json:"nodeId" validate:"required"`
	Title     *string                `json:"title" validate:"omitempty,max=200"`
	Params    map[string]interface{} `json:"params"`
}

func (c UpdateNodeDataCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteNodeCommand removes a node and its connections
type DeleteNodeCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	NodeID    string `json:"nodeId" validate:"required"`
}

func (c DeleteNodeCommand) Validate() error { return utils.ValidateStruct(c) }

// ConnectCommand links two nodes output to input
type ConnectCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	Source    string `json:"source" validate:"required"`
	Target    string `json:"target" validate:"required"`
}

func (c ConnectCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteConnectionCommand removes one connection
type DeleteConnectionCommand struct {
	SessionID    string `json:"sessionId" validate:"required"`
	ConnectionID string `json:"connectionId" validate:"required"`
}

func (c DeleteConnectionCommand) Validate() error { return utils.ValidateStruct(c) }

// ApplyTemplateCommand replaces the graph with a catalog template, chosen
// by name, or with an inline template
type ApplyTemplateCommand struct {
	SessionID string               `json:"sessionId" validate:"required"`
	Name      string               `json:"name"`
	Template  *aggregates.Template `json:"template"`
}

func (c ApplyTemplateCommand) Validate() error {
	if err := utils.ValidateStruct(c); err != nil {
		return err
	}
	if (c.Name == "") == (c.Template == nil) {
		return pkgerrors.NewValidationError("exactly one of name or template is required")
	}
	if c.Template != nil {
		return c.Template.Validate()
	}
	return nil
}

// SetFieldCommand stages the text typed into an inspector field
type SetFieldCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	Key       string `json:"key" validate:"required"`
	Value     string `json:"value" validate:"max=50000"`
}

func (c SetFieldCommand) Validate() error { return utils.ValidateStruct(c) }

// SetTitleCommand stages a new title in the inspector
type SetTitleCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
	Title     string `json:"title" validate:"max=200"`
}

func (c SetTitleCommand) Validate() error { return utils.ValidateStruct(c) }

// SaveConfigCommand commits the inspector's staged edits
type SaveConfigCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (c SaveConfigCommand) Validate() error { return utils.ValidateStruct(c) }

// DiscardConfigCommand drops the inspector's staged edits
type DiscardConfigCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (c DiscardConfigCommand) Validate() error { return utils.ValidateStruct(c) }

// DeleteSelectedCommand deletes the node shown in the inspector
type DeleteSelectedCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (c DeleteSelectedCommand) Validate() error { return utils.ValidateStruct(c) }

// TestNodeCommand starts a simulated run of the selected node
type TestNodeCommand struct {
	SessionID string `json:"sessionId" validate:"required"`
}

func (c TestNodeCommand) Validate() error { return utils.ValidateStruct(c) }
