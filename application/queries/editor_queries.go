package queries

import (
	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
	"workflowbuilder/pkg/utils"
)

// GetCanvasQuery renders a session's canvas
type GetCanvasQuery struct {
	SessionID string `validate:"required"`
}

func (q GetCanvasQuery) Validate() error { return utils.ValidateStruct(q) }

// GetInspectorQuery renders a session's configuration panel
type GetInspectorQuery struct {
	SessionID string `validate:"required"`
}

func (q GetInspectorQuery) Validate() error { return utils.ValidateStruct(q) }

// GetWorkflowQuery exports a session's graph
type GetWorkflowQuery struct {
	SessionID string `validate:"required"`
}

func (q GetWorkflowQuery) Validate() error { return utils.ValidateStruct(q) }

// WorkflowExport is the graph as data plus its content checksum
type WorkflowExport struct {
	Workflow aggregates.WorkflowSnapshot `json:"workflow"`
	Template aggregates.Template         `json:"template"`
	Checksum string                      `json:"checksum"`
}

// GetSessionQuery summarises one session
type GetSessionQuery struct {
	SessionID string `validate:"required"`
}

func (q GetSessionQuery) Validate() error { return utils.ValidateStruct(q) }

// ListSessionsQuery summarises every open session
type ListSessionsQuery struct{}

func (q ListSessionsQuery) Validate() error { return nil }

// ListCatalogQuery lists palette items for a search and tab
type ListCatalogQuery struct {
	Search string `validate:"max=100"`
	Tab    string
}

func (q ListCatalogQuery) Validate() error { return utils.ValidateStruct(q) }

// CatalogListing is the palette as shown for one search
type CatalogListing struct {
	Tabs  []string            `json:"tabs"`
	Tab   string              `json:"tab"`
	Items []palette.Archetype `json:"items"`
}

// ListTemplatesQuery lists the pre-built templates
type ListTemplatesQuery struct{}

func (q ListTemplatesQuery) Validate() error { return nil }

// TemplateSummary describes one template without its graph
type TemplateSummary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Nodes       int    `json:"nodes"`
	Connections int    `json:"connections"`
}

// GetTemplateQuery returns one template by name
type GetTemplateQuery struct {
	Name string `validate:"required"`
}

func (q GetTemplateQuery) Validate() error { return utils.ValidateStruct(q) }

// GetSchemaQuery returns the inspector fields for a node type
type GetSchemaQuery struct {
	Type string `validate:"required"`
}

func (q GetSchemaQuery) Validate() error { return utils.ValidateStruct(q) }

// SchemaView is the field table entry and its JSON Schema
type SchemaView struct {
	Type       string                 `json:"type"`
	Generic    bool                   `json:"generic"`
	Fields     []inspector.Field      `json:"fields"`
	JSONSchema map[string]interface{} `json:"jsonSchema,omitempty"`
}
