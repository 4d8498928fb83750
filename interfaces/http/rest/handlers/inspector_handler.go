package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"workflowbuilder/application/commands"
	"workflowbuilder/application/queries"
)

// InspectorHandler drives the config panel of the selected node
type InspectorHandler struct {
	base
}

// NewInspectorHandler creates a new inspector handler
func NewInspectorHandler(d Deps) *InspectorHandler {
	return &InspectorHandler{base: newBase(d)}
}

type fieldRequest struct {
	Value string `json:"value"`
}

type titleRequest struct {
	Title string `json:"title"`
}

// View handles GET /sessions/{sessionID}/inspector
func (h *InspectorHandler) View(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetInspectorQuery{SessionID: sessionID(r)})
}

// SetField handles PUT /sessions/{sessionID}/inspector/fields/{key}
func (h *InspectorHandler) SetField(w http.ResponseWriter, r *http.Request) {
	var req fieldRequest
	if err := h.decode(r, &req); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	h.send(w, r, commands.SetFieldCommand{
		SessionID: sessionID(r),
		Key:       chi.URLParam(r, "key"),
		Value:     req.Value,
	}, http.StatusOK)
}

// SetTitle handles PUT /sessions/{sessionID}/inspector/title
func (h *InspectorHandler) SetTitle(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if err := h.decode(r, &req); err != nil {
		h.Errors.Handle(w, r, err)
		return
	}
	h.send(w, r, commands.SetTitleCommand{SessionID: sessionID(r), Title: req.Title}, http.StatusOK)
}

// Save handles POST /sessions/{sessionID}/inspector/save
func (h *InspectorHandler) Save(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.SaveConfigCommand{SessionID: sessionID(r)}, http.StatusOK)
}

// Discard handles POST /sessions/{sessionID}/inspector/discard
func (h *InspectorHandler) Discard(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.DiscardConfigCommand{SessionID: sessionID(r)}, http.StatusOK)
}

// Delete handles POST /sessions/{sessionID}/inspector/delete
func (h *InspectorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.DeleteSelectedCommand{SessionID: sessionID(r)}, http.StatusOK)
}

// Test handles POST /sessions/{sessionID}/inspector/test
func (h *InspectorHandler) Test(w http.ResponseWriter, r *http.Request) {
	h.send(w, r, commands.TestNodeCommand{SessionID: sessionID(r)}, http.StatusAccepted)
}
