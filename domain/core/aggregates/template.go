package aggregates

import (
	"fmt"

	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

// TemplateNode is a node inside a template. Its id is local to the template.
type TemplateNode struct {
	ID       string                `json:"id" yaml:"id"`
	Type     string                `json:"type" yaml:"type"`
	Position valueobjects.Position `json:"position" yaml:"position"`
	Data     entities.NodeData     `json:"data" yaml:"data"`
}

// TemplateConnection links two template nodes by their template-local ids
type TemplateConnection struct {
	ID           string `json:"id,omitempty" yaml:"id,omitempty"`
	Source       string `json:"source" yaml:"source"`
	Target       string `json:"target" yaml:"target"`
	SourceHandle string `json:"sourceHandle,omitempty" yaml:"sourceHandle,omitempty"`
	TargetHandle string `json:"targetHandle,omitempty" yaml:"targetHandle,omitempty"`
}

// Template is a canned graph fragment that replaces the whole canvas when applied
type Template struct {
	Name        string               `json:"name" yaml:"name"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Nodes       []TemplateNode       `json:"nodes" yaml:"nodes"`
	Connections []TemplateConnection `json:"connections" yaml:"connections"`
}

// Validate checks the template is self-consistent. A template that fails
// validation must never be partially applied.
func (t Template) Validate() error {
	seen := make(map[string]bool, len(t.Nodes))
	for i, n := range t.Nodes {
		if n.ID == "" {
			return pkgerrors.NewValidationError(fmt.Sprintf("template node %d has no id", i))
		}
		if valueobjects.NodeKind(n.Type).IsZero() {
			return pkgerrors.NewValidationError(fmt.Sprintf("template node %q has no type", n.ID))
		}
		if seen[n.ID] {
			return pkgerrors.NewValidationError(fmt.Sprintf("duplicate template node id %q", n.ID))
		}
		seen[n.ID] = true
	}

	pairs := make(map[string]bool, len(t.Connections))
	for i, c := range t.Connections {
		if !seen[c.Source] {
			return pkgerrors.NewValidationError(fmt.Sprintf("template connection %d references unknown source %q", i, c.Source))
		}
		if !seen[c.Target] {
			return pkgerrors.NewValidationError(fmt.Sprintf("template connection %d references unknown target %q", i, c.Target))
		}
		if c.Source == c.Target {
			return pkgerrors.NewValidationError(fmt.Sprintf("template connection %d is a self-loop", i))
		}
		key := c.Source + "->" + c.Target
		if pairs[key] {
			return pkgerrors.NewValidationError(fmt.Sprintf("template connection %d duplicates %s", i, key))
		}
		pairs[key] = true
	}
	return nil
}
