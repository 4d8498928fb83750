package handlers

import (
	"fmt"
	"net/http"

	"workflowbuilder/application/commands"
	"workflowbuilder/application/queries"
	"workflowbuilder/pkg/common"
	pkgerrors "workflowbuilder/pkg/errors"
)

// StreamServer attaches a websocket client to a session
type StreamServer interface {
	Serve(w http.ResponseWriter, r *http.Request, sessionID string)
}

// SessionHandler handles the session lifecycle and whole-session reads
type SessionHandler struct {
	base
	streams StreamServer
}

// NewSessionHandler creates a new session handler. A nil streams disables /events.
func NewSessionHandler(d Deps, streams StreamServer) *SessionHandler {
	return &SessionHandler{base: newBase(d), streams: streams}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var cmd commands.CreateSessionCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	res, err := h.dispatch(r.Context(), cmd)
	if err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	w.Header().Set("Location", fmt.Sprintf("/api/v1/sessions/%s", res.SessionID))
	common.RespondWithMeta(w, http.StatusCreated, res, common.NewMeta(r))
}

// ListSessions handles GET /sessions
func (h *SessionHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListSessionsQuery{})
}

// GetSession handles GET /sessions/{sessionID}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetSessionQuery{SessionID: sessionID(r)})
}

// CloseSession handles DELETE /sessions/{sessionID}
func (h *SessionHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	if _, err := h.dispatch(r.Context(), commands.CloseSessionCommand{SessionID: sessionID(r)}); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RenameWorkflow handles PUT /sessions/{sessionID}/name
func (h *SessionHandler) RenameWorkflow(w http.ResponseWriter, r *http.Request) {
	var cmd commands.RenameWorkflowCommand
	if err := h.decode(r, &cmd); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	cmd.SessionID = sessionID(r)
	h.send(w, r, cmd, http.StatusOK)
}

// GetCanvas handles GET /sessions/{sessionID}/canvas
func (h *SessionHandler) GetCanvas(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetCanvasQuery{SessionID: sessionID(r)})
}

// GetWorkflow handles GET /sessions/{sessionID}/workflow. The checksum is
// the ETag so clients can poll cheaply.
func (h *SessionHandler) GetWorkflow(w http.ResponseWriter, r *http.Request) {
	out, err := h.QueryBus.Ask(r.Context(), queries.GetWorkflowQuery{SessionID: sessionID(r)})
	if err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	export, ok := out.(queries.WorkflowExport)
	if !ok {
		h.Errors.Handle(w, r, pkgerrors.NewInternalError("unexpected query result"))
		return
	}

	etag := fmt.Sprintf("%q", export.Checksum)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	common.RespondWithMeta(w, http.StatusOK, export, common.NewMeta(r))
}

// Events handles GET /sessions/{sessionID}/events
func (h *SessionHandler) Events(w http.ResponseWriter, r *http.Request) {
	if h.streams == nil {
		h.Errors.Handle(w, r, pkgerrors.NewUnavailableError("event stream"))
		return
	}
	id := sessionID(r)
	if _, err := h.QueryBus.Ask(r.Context(), queries.GetSessionQuery{SessionID: id}); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	h.streams.Serve(w, r, id)
}
