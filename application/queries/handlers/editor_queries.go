package handlers

import (
	"context"
	"fmt"
	"strings"

	"workflowbuilder/application/queries"
	"workflowbuilder/application/queries/bus"
	"workflowbuilder/application/services"
	"workflowbuilder/application/session"
	"workflowbuilder/domain/canvas"
	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
	"workflowbuilder/domain/versioning"
	pkgerrors "workflowbuilder/pkg/errors"
)

// EditorQueries answers read-only questions about sessions and the catalog
type EditorQueries struct {
	sessions *services.SessionService
	catalog  *palette.Catalog
	table    *inspector.Table
}

// NewEditorQueries creates the query handlers
func NewEditorQueries(sessions *services.SessionService, catalog *palette.Catalog, table *inspector.Table) *EditorQueries {
	return &EditorQueries{sessions: sessions, catalog: catalog, table: table}
}

func handle[Q bus.Query, R any](fn func(context.Context, Q) (R, error)) bus.QueryHandler {
	return bus.QueryHandlerFunc(func(ctx context.Context, query bus.Query) (interface{}, error) {
		q, ok := query.(Q)
		if !ok {
			return nil, fmt.Errorf("unexpected query type %T", query)
		}
		return fn(ctx, q)
	})
}

// Register wires every query into b
func (h *EditorQueries) Register(b *bus.QueryBus) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetCanvasQuery{}, handle(h.GetCanvas)},
		{queries.GetInspectorQuery{}, handle(h.GetInspector)},
		{queries.GetWorkflowQuery{}, handle(h.GetWorkflow)},
		{queries.GetSessionQuery{}, handle(h.GetSession)},
		{queries.ListSessionsQuery{}, handle(h.ListSessions)},
		{queries.ListCatalogQuery{}, handle(h.ListCatalog)},
		{queries.ListTemplatesQuery{}, handle(h.ListTemplates)},
		{queries.GetTemplateQuery{}, handle(h.GetTemplate)},
		{queries.GetSchemaQuery{}, handle(h.GetSchema)},
	}
	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

// GetCanvas renders a session's canvas
func (h *EditorQueries) GetCanvas(ctx context.Context, q queries.GetCanvasQuery) (canvas.Snapshot, error) {
	var snap canvas.Snapshot
	err := h.sessions.Do(ctx, q.SessionID, func(e session.Editor) error {
		snap = e.Canvas.Snapshot()
		return nil
	})
	return snap, err
}

// GetInspector renders a session's configuration panel
func (h *EditorQueries) GetInspector(ctx context.Context, q queries.GetInspectorQuery) (inspector.View, error) {
	var view inspector.View
	err := h.sessions.Do(ctx, q.SessionID, func(e session.Editor) error {
		view = e.Panel.View()
		return nil
	})
	return view, err
}

// GetWorkflow exports a session's graph with its checksum
func (h *EditorQueries) GetWorkflow(ctx context.Context, q queries.GetWorkflowQuery) (queries.WorkflowExport, error) {
	var out queries.WorkflowExport
	err := h.sessions.Do(ctx, q.SessionID, func(e session.Editor) error {
		wf := e.Canvas.Workflow()
		snap := wf.Snapshot()
		sum, err := versioning.Checksum(snap)
		if err != nil {
			return pkgerrors.Wrap(err, "checksum")
		}
		out = queries.WorkflowExport{Workflow: snap, Template: wf.AsTemplate(), Checksum: sum}
		return nil
	})
	return out, err
}

// GetSession summarises one session
func (h *EditorQueries) GetSession(ctx context.Context, q queries.GetSessionQuery) (session.Summary, error) {
	sess, err := h.sessions.Get(ctx, q.SessionID)
	if err != nil {
		return session.Summary{}, err
	}
	return sess.Summarize()
}

// ListSessions summarises every open session
func (h *EditorQueries) ListSessions(ctx context.Context, _ queries.ListSessionsQuery) ([]session.Summary, error) {
	return h.sessions.List(ctx)
}

// ListCatalog lists palette items
func (h *EditorQueries) ListCatalog(_ context.Context, q queries.ListCatalogQuery) (queries.CatalogListing, error) {
	tab := strings.TrimSpace(q.Tab)
	if tab == "" {
		tab = palette.TabAll
	}
	return queries.CatalogListing{
		Tabs:  h.catalog.Tabs(),
		Tab:   tab,
		Items: h.catalog.Filter(q.Search, tab),
	}, nil
}

// ListTemplates lists the pre-built templates
func (h *EditorQueries) ListTemplates(_ context.Context, _ queries.ListTemplatesQuery) ([]queries.TemplateSummary, error) {
	templates := h.catalog.Templates()
	out := make([]queries.TemplateSummary, 0, len(templates))
	for _, t := range templates {
		out = append(out, queries.TemplateSummary{
			Name:        t.Name,
			Description: t.Description,
			Nodes:       len(t.Nodes),
			Connections: len(t.Connections),
		})
	}
	return out, nil
}

// GetTemplate returns one template with its graph
func (h *EditorQueries) GetTemplate(_ context.Context, q queries.GetTemplateQuery) (interface{}, error) {
	t, ok := h.catalog.Template(q.Name)
	if !ok {
		return nil, pkgerrors.NewNotFoundError("template " + q.Name)
	}
	return t, nil
}

// GetSchema returns the inspector fields for a node type
func (h *EditorQueries) GetSchema(_ context.Context, q queries.GetSchemaQuery) (queries.SchemaView, error) {
	s := h.table.Lookup(valueobjects.NodeKind(q.Type))
	view := queries.SchemaView{
		Type:    q.Type,
		Generic: s.Generic(),
		Fields:  s.Fields,
	}
	if view.Fields == nil {
		view.Fields = []inspector.Field{}
	}
	if !s.Generic() {
		view.JSONSchema = s.JSONSchema()
	}
	return view, nil
}
