package palette

import (
	"strings"

	"workflowbuilder/domain/bridge"
	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

// Drag payload keys carried by the drag-and-drop data transfer
const (
	PayloadKeyType  = "type"
	PayloadKeyTitle = "title"
	PayloadKeyID    = "id"
)

// DragPayload is what the palette hands to the canvas on drop
type DragPayload struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	ItemID string `json:"id"`
}

// Kind returns the payload's node type
func (p DragPayload) Kind() valueobjects.NodeKind {
	return valueobjects.NodeKind(strings.TrimSpace(p.Type))
}

// Map returns the payload as string key/value pairs
func (p DragPayload) Map() map[string]string {
	return map[string]string{
		PayloadKeyType:  p.Type,
		PayloadKeyTitle: p.Title,
		PayloadKeyID:    p.ItemID,
	}
}

// ParsePayload reads a payload back from key/value pairs. Missing keys are empty.
func ParsePayload(m map[string]string) DragPayload {
	return DragPayload{
		Type:   m[PayloadKeyType],
		Title:  m[PayloadKeyTitle],
		ItemID: m[PayloadKeyID],
	}
}

// Payload builds the drag payload for a palette item
func (c *Catalog) Payload(itemID string) (DragPayload, bool) {
	a, ok := c.byID[itemID]
	if !ok {
		return DragPayload{}, false
	}
	return DragPayload{Type: a.Type, Title: a.Name, ItemID: a.ID}, true
}

// ResolveTitle picks the title for a dropped payload: the payload's own
// title, then the dragged item's name, then the kind's canonical name.
func (c *Catalog) ResolveTitle(p DragPayload) (string, bool) {
	if _, ok := c.byKind[p.Kind()]; !ok {
		return "", false
	}
	if t := strings.TrimSpace(p.Title); t != "" {
		return t, true
	}
	if a, ok := c.byID[p.ItemID]; ok && a.Kind() == p.Kind() {
		return a.Name, true
	}
	return c.byKind[p.Kind()].Name, true
}

// RequestTemplate publishes an apply-template signal for a named template
func (c *Catalog) RequestTemplate(bus *bridge.Bus, name string) error {
	t, ok := c.Template(name)
	if !ok {
		return pkgerrors.NewNotFoundError("template " + name)
	}
	bus.Publish(bridge.TemplateEvent{Template: t})
	return nil
}
