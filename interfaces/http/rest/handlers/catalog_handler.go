package handlers

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"workflowbuilder/application/queries"
)

// CatalogHandler serves the palette, the templates and the field schemas
type CatalogHandler struct {
	base
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(d Deps) *CatalogHandler {
	return &CatalogHandler{base: newBase(d)}
}

// ListCatalog handles GET /catalog?search=&tab=
func (h *CatalogHandler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.ask(w, r, queries.ListCatalogQuery{Search: q.Get("search"), Tab: q.Get("tab")})
}

// ListTemplates handles GET /templates
func (h *CatalogHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.ListTemplatesQuery{})
}

// GetTemplate handles GET /templates/{name}
func (h *CatalogHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		name = chi.URLParam(r, "name")
	}
	h.ask(w, r, queries.GetTemplateQuery{Name: name})
}

// GetSchema handles GET /schemas/{type}
func (h *CatalogHandler) GetSchema(w http.ResponseWriter, r *http.Request) {
	h.ask(w, r, queries.GetSchemaQuery{Type: chi.URLParam(r, "type")})
}
