package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"workflowbuilder/application/commands"
)

// CanvasHandler maps canvas intents onto editor commands
type CanvasHandler struct {
	base
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(d Deps) *CanvasHandler {
	return &CanvasHandler{base: newBase(d)}
}

// DropNode handles POST /sessions/{sessionID}/nodes
func (h *CanvasHandler) DropNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.DropNodeCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// MoveNode handles PUT /sessions/{sessionID}/nodes/{nodeID}/position
func (h *CanvasHandler) MoveNode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.MoveNodeCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	cmd.NodeID = chi.URLParam(r, "nodeID")
	h.send(w, r, cmd, http.StatusOK)
}

// UpdateNodeData handles PATCH /sessions/{sessionID}/nodes/{nodeID}
func (h *CanvasHandler) UpdateNodeData(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpdateNodeDataCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	cmd.NodeID = chi.URLParam(r, "nodeID")
	h.send(w, r, cmd, http.StatusOK)
}

// DeleteNode handles DELETE /sessions/{sessionID}/nodes/{nodeID}
func (h *CanvasHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.DeleteNodeCommand{
		SessionID: sessionID(r),
		NodeID:    chi.URLParam(r, "nodeID"),
	}, http.StatusOK)
}

// Connect handles POST /sessions/{sessionID}/connections
func (h *CanvasHandler) Connect(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ConnectCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// DeleteConnection handles DELETE /sessions/{sessionID}/connections/{connectionID}
func (h *CanvasHandler) DeleteConnection(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.DeleteConnectionCommand{
		SessionID:    sessionID(r),
		ConnectionID: chi.URLParam(r, "connectionID"),
	}, http.StatusOK)
}

// Select handles PUT /sessions/{sessionID}/selection
func (h *CanvasHandler) Select(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SelectNodeCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// Pointer handles POST /sessions/{sessionID}/pointer
func (h *CanvasHandler) Pointer(w http.ResponseWriter, r *http.Request) {
	var cmd commands.PointerCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// SetMode handles PUT /sessions/{sessionID}/mode
func (h *CanvasHandler) SetMode(w http.ResponseWriter, r *http.Request) {
	var cmd commands.SetModeCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// Zoom handles POST /sessions/{sessionID}/zoom
func (h *CanvasHandler) Zoom(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ZoomCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// Wheel handles POST /sessions/{sessionID}/wheel
func (h *CanvasHandler) Wheel(w http.ResponseWriter, r *http.Request) {
	var cmd commands.WheelCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// ToggleGrid handles POST /sessions/{sessionID}/grid
func (h *CanvasHandler) ToggleGrid(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.ToggleGridCommand{SessionID: sessionID(r)}, http.StatusOK)
}

// ApplyTemplate handles POST /sessions/{sessionID}/template
func (h *CanvasHandler) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ApplyTemplateCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}
