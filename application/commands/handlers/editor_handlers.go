package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"workflowbuilder/application/commands"
	"workflowbuilder/application/commands/bus"
	"workflowbuilder/application/services"
	"workflowbuilder/application/session"
	"workflowbuilder/domain/bridge"
	"workflowbuilder/domain/canvas"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/palette"
	"workflowbuilder/domain/versioning"
)

// EditorHandlers turns editor commands into canvas and inspector intents
type EditorHandlers struct {
	sessions *services.SessionService
	logger   *zap.Logger
}

// NewEditorHandlers creates the editor command handlers
func NewEditorHandlers(sessions *services.SessionService, logger *zap.Logger) *EditorHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EditorHandlers{sessions: sessions, logger: logger}
}

// handle adapts a typed handler method to the bus
func handle[C bus.Command](fn func(context.Context, C) (*commands.Result, error)) bus.CommandHandler {
	return bus.CommandHandlerFunc(func(ctx context.Context, cmd bus.Command) (interface{}, error) {
		c, ok := cmd.(C)
		if !ok {
			return nil, fmt.Errorf("unexpected command type %T", cmd)
		}
		return fn(ctx, c)
	})
}

// Register wires every editor command into b
func (h *EditorHandlers) Register(b *bus.CommandBus) error {
	registrations := []struct {
		cmd     bus.Command
		handler bus.CommandHandler
	}{
		{commands.CreateSessionCommand{}, handle(h.CreateSession)},
		{commands.CloseSessionCommand{}, handle(h.CloseSession)},
		{commands.RenameWorkflowCommand{}, handle(h.RenameWorkflow)},
		{commands.DropNodeCommand{}, handle(h.DropNode)},
		{commands.PointerCommand{}, handle(h.Pointer)},
		{commands.SetModeCommand{}, handle(h.SetMode)},
		{commands.ZoomCommand{}, handle(h.Zoom)},
		{commands.WheelCommand{}, handle(h.Wheel)},
		{commands.ToggleGridCommand{}, handle(h.ToggleGrid)},
		{commands.SelectNodeCommand{}, handle(h.SelectNode)},
		{commands.MoveNodeCommand{}, handle(h.MoveNode)},
		{commands.UpdateNodeDataCommand{}, handle(h.UpdateNodeData)},
		{commands.DeleteNodeCommand{}, handle(h.DeleteNode)},
		{commands.ConnectCommand{}, handle(h.Connect)},
		{commands.DeleteConnectionCommand{}, handle(h.DeleteConnection)},
		{commands.ApplyTemplateCommand{}, handle(h.ApplyTemplate)},
		{commands.SetFieldCommand{}, handle(h.SetField)},
		{commands.SetTitleCommand{}, handle(h.SetTitle)},
		{commands.SaveConfigCommand{}, handle(h.SaveConfig)},
		{commands.DiscardConfigCommand{}, handle(h.DiscardConfig)},
		{commands.DeleteSelectedCommand{}, handle(h.DeleteSelected)},
		{commands.TestNodeCommand{}, handle(h.TestNode)},
	}
	for _, r := range registrations {
		if err := b.Register(r.cmd, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// edit runs fn under the session lock and returns its result
func (h *EditorHandlers) edit(ctx context.Context, sessionID string, fn func(e session.Editor) (*commands.Result, error)) (*commands.Result, error) {
	var result *commands.Result
	err := h.sessions.Do(ctx, sessionID, func(e session.Editor) error {
		var err error
		result, err = fn(e)
		return err
	})
	if err != nil {
		return nil, err
	}
	result.SessionID = sessionID
	return result, nil
}

func applied(ok bool) *commands.Result {
	return &commands.Result{Applied: ok}
}

// CreateSession opens an editor session
func (h *EditorHandlers) CreateSession(ctx context.Context, cmd commands.CreateSessionCommand) (*commands.Result, error) {
	sess, err := h.sessions.Create(ctx, cmd.Name)
	if err != nil {
		return nil, err
	}
	return &commands.Result{Applied: true, SessionID: sess.ID()}, nil
}

// CloseSession ends an editor session
func (h *EditorHandlers) CloseSession(ctx context.Context, cmd commands.CloseSessionCommand) (*commands.Result, error) {
	if err := h.sessions.Close(ctx, cmd.SessionID); err != nil {
		return nil, err
	}
	return &commands.Result{Applied: true, SessionID: cmd.SessionID}, nil
}

// RenameWorkflow changes the workflow name
func (h *EditorHandlers) RenameWorkflow(ctx context.Context, cmd commands.RenameWorkflowCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		if err := e.Canvas.Rename(cmd.Name); err != nil {
			return nil, err
		}
		return applied(true), nil
	})
}

// DropNode places a palette item
func (h *EditorHandlers) DropNode(ctx context.Context, cmd commands.DropNodeCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		payload := palette.DragPayload{Type: cmd.Type, Title: cmd.Title, ItemID: cmd.ItemID}
		node := e.Canvas.Drop(payload, valueobjects.NewPosition(cmd.X, cmd.Y))
		if node == nil {
			h.logger.Debug("Drop ignored", zap.String("type", cmd.Type))
			return applied(false), nil
		}
		snap := node.Snapshot()
		return &commands.Result{Applied: true, Node: &snap}, nil
	})
}

// Pointer feeds one pointer event to the canvas
func (h *EditorHandlers) Pointer(ctx context.Context, cmd commands.PointerCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		screen := valueobjects.NewPosition(cmd.X, cmd.Y)
		var ok bool
		switch cmd.Phase {
		case commands.PhaseDown:
			ok = e.Canvas.PointerDown(screen)
		case commands.PhaseMove:
			ok = e.Canvas.PointerMove(screen)
		case commands.PhaseUp:
			ok = e.Canvas.PointerUp(screen)
		}
		return &commands.Result{Applied: ok, Gesture: e.Canvas.Gesture()}, nil
	})
}

// SetMode switches the toolbar mode
func (h *EditorHandlers) SetMode(ctx context.Context, cmd commands.SetModeCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		return applied(e.Canvas.SetMode(canvas.Mode(cmd.Mode))), nil
	})
}

// Zoom applies a toolbar zoom button
func (h *EditorHandlers) Zoom(ctx context.Context, cmd commands.ZoomCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		before := e.Canvas.Viewport()
		switch cmd.Direction {
		case commands.ZoomIn:
			e.Canvas.ZoomIn()
		case commands.ZoomOut:
			e.Canvas.ZoomOut()
		case commands.ZoomReset:
			e.Canvas.ResetView()
		}
		after := e.Canvas.Viewport()
		return &commands.Result{Applied: after != before, Zoom: after.Zoom}, nil
	})
}

// Wheel applies one wheel tick
func (h *EditorHandlers) Wheel(ctx context.Context, cmd commands.WheelCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		ok := e.Canvas.Wheel(cmd.DeltaY, cmd.Modifier, valueobjects.NewPosition(cmd.X, cmd.Y))
		return &commands.Result{Applied: ok, Zoom: e.Canvas.Viewport().Zoom}, nil
	})
}

// ToggleGrid flips grid visibility
func (h *EditorHandlers) ToggleGrid(ctx context.Context, cmd commands.ToggleGridCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		e.Canvas.ToggleGrid()
		return applied(true), nil
	})
}

// SelectNode selects or clears the active node
func (h *EditorHandlers) SelectNode(ctx context.Context, cmd commands.SelectNodeCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		if cmd.NodeID == "" {
			_, had := e.Canvas.Selected()
			e.Canvas.ClearSelection()
			return applied(had), nil
		}
		id, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
		if err != nil {
			return nil, err
		}
		if !e.Canvas.Select(id) {
			return applied(false), nil
		}
		return nodeResult(e, id), nil
	})
}

// MoveNode positions a node directly
func (h *EditorHandlers) MoveNode(ctx context.Context, cmd commands.MoveNodeCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		id, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
		if err != nil {
			return nil, err
		}
		if !e.Canvas.MoveNode(id, valueobjects.NewPosition(cmd.X, cmd.Y)) {
			return applied(false), nil
		}
		return nodeResult(e, id), nil
	})
}

// UpdateNodeData merges a data patch into a node
func (h *EditorHandlers) UpdateNodeData(ctx context.Context, cmd commands.UpdateNodeDataCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		id, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
		if err != nil {
			return nil, err
		}
		patch := entities.DataPatch{Title: cmd.Title, Params: cmd.Params}
		if !e.Canvas.UpdateNodeData(id, patch) {
			return applied(false), nil
		}
		res := nodeResult(e, id)
		res.Patch = &patch
		return res, nil
	})
}

// DeleteNode removes a node and its connections
func (h *EditorHandlers) DeleteNode(ctx context.Context, cmd commands.DeleteNodeCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		id, err := valueobjects.NewNodeIDFromString(cmd.NodeID)
		if err != nil {
			return nil, err
		}
		return applied(e.Canvas.DeleteNode(id)), nil
	})
}

// Connect links two nodes
func (h *EditorHandlers) Connect(ctx context.Context, cmd commands.ConnectCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		source, err := valueobjects.NewNodeIDFromString(cmd.Source)
		if err != nil {
			return nil, err
		}
		target, err := valueobjects.NewNodeIDFromString(cmd.Target)
		if err != nil {
			return nil, err
		}
		conn := e.Canvas.Connect(source, target)
		if conn == nil {
			return applied(false), nil
		}
		return &commands.Result{Applied: true, Connection: conn}, nil
	})
}

// DeleteConnection removes a connection
func (h *EditorHandlers) DeleteConnection(ctx context.Context, cmd commands.DeleteConnectionCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		id, err := valueobjects.NewConnectionIDFromString(cmd.ConnectionID)
		if err != nil {
			return nil, err
		}
		return applied(e.Canvas.DeleteConnection(id)), nil
	})
}

// ApplyTemplate signals the canvas over the session's template bridge
func (h *EditorHandlers) ApplyTemplate(ctx context.Context, cmd commands.ApplyTemplateCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		wf := e.Canvas.Workflow()
		before, err := versioning.Capture(wf)
		if err != nil {
			return nil, err
		}

		if cmd.Template != nil {
			e.Bus.Publish(bridge.TemplateEvent{Template: *cmd.Template})
		} else if err := e.Catalog.RequestTemplate(e.Bus, cmd.Name); err != nil {
			return nil, err
		}

		after, err := versioning.Capture(wf)
		if err != nil {
			return nil, err
		}
		diff, err := versioning.Compare(before, after)
		if err != nil {
			return nil, err
		}
		return &commands.Result{Applied: after.Version != before.Version, Diff: diff}, nil
	})
}

// SetField stages an inspector field edit
func (h *EditorHandlers) SetField(ctx context.Context, cmd commands.SetFieldCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		if err := e.Panel.Set(cmd.Key, cmd.Value); err != nil {
			return nil, err
		}
		return applied(true), nil
	})
}

// SetTitle stages an inspector title edit
func (h *EditorHandlers) SetTitle(ctx context.Context, cmd commands.SetTitleCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		if err := e.Panel.SetTitle(cmd.Title); err != nil {
			return nil, err
		}
		return applied(true), nil
	})
}

// SaveConfig commits the inspector's staged edits
func (h *EditorHandlers) SaveConfig(ctx context.Context, cmd commands.SaveConfigCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		patch, err := e.Panel.Save()
		if err != nil {
			return nil, err
		}
		if patch.IsEmpty() {
			return applied(false), nil
		}
		res := &commands.Result{Applied: true, Patch: &patch}
		if id, ok := e.Canvas.Selected(); ok {
			res.Node = nodeResult(e, id).Node
		}
		return res, nil
	})
}

// DiscardConfig drops the inspector's staged edits
func (h *EditorHandlers) DiscardConfig(ctx context.Context, cmd commands.DiscardConfigCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		e.Panel.Discard()
		return applied(true), nil
	})
}

// DeleteSelected deletes the node shown in the inspector
func (h *EditorHandlers) DeleteSelected(ctx context.Context, cmd commands.DeleteSelectedCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		if err := e.Panel.Delete(); err != nil {
			return nil, err
		}
		return applied(true), nil
	})
}

// TestNode starts a simulated run of the selected node
func (h *EditorHandlers) TestNode(ctx context.Context, cmd commands.TestNodeCommand) (*commands.Result, error) {
	return h.edit(ctx, cmd.SessionID, func(e session.Editor) (*commands.Result, error) {
		if err := e.Panel.Test(); err != nil {
			return nil, err
		}
		return applied(true), nil
	})
}

func nodeResult(e session.Editor, id valueobjects.NodeID) *commands.Result {
	node, ok := e.Canvas.Workflow().Node(id)
	if !ok {
		return applied(true)
	}
	snap := node.Snapshot()
	return &commands.Result{Applied: true, Node: &snap}
}
