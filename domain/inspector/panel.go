package inspector

import (
	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

// Editor is the canvas side the panel edits through
type Editor interface {
	Workflow() *aggregates.Workflow
	SelectedNode() (*entities.Node, bool)
	UpdateNodeData(id valueobjects.NodeID, patch entities.DataPatch) bool
	DeleteNode(id valueobjects.NodeID) bool
}

// Panel follows the editor's selection and keeps one form for the
// selected node. Selecting another node discards unsaved edits.
type Panel struct {
	table  *Table
	editor Editor
	tester *Tester
	mask   string
	form   *Form
}

// NewPanel creates a panel. A nil tester disables test runs.
func NewPanel(table *Table, editor Editor, tester *Tester, mask string) *Panel {
	if table == nil {
		table = DefaultTable()
	}
	return &Panel{table: table, editor: editor, tester: tester, mask: mask}
}

// Sync rebinds the form to the current selection
func (p *Panel) Sync() (*entities.Node, bool) {
	node, ok := p.editor.SelectedNode()
	if !ok {
		p.form = nil
		return nil, false
	}
	if p.form == nil || !p.form.NodeID().Equals(node.ID()) {
		p.form = NewForm(node.ID(), p.table.Lookup(node.Kind()))
	}
	return node, true
}

func (p *Panel) selected() (*entities.Node, error) {
	node, ok := p.Sync()
	if !ok {
		return nil, pkgerrors.NewValidationError("no node selected").WithCode("NO_SELECTION")
	}
	return node, nil
}

// View renders the panel
func (p *Panel) View() View {
	node, ok := p.Sync()
	if !ok {
		return Placeholder()
	}
	return p.form.Render(node.Snapshot(), p.mask)
}

// Set stages a field edit
func (p *Panel) Set(key, text string) error {
	if _, err := p.selected(); err != nil {
		return err
	}
	return p.form.Set(key, text)
}

// SetTitle stages a title edit
func (p *Panel) SetTitle(title string) error {
	if _, err := p.selected(); err != nil {
		return err
	}
	p.form.SetTitle(title)
	return nil
}

// Save commits the staged edits to the selected node
func (p *Panel) Save() (entities.DataPatch, error) {
	node, err := p.selected()
	if err != nil {
		return entities.DataPatch{}, err
	}
	patch, err := p.form.Save()
	if err != nil || patch.IsEmpty() {
		return patch, err
	}
	p.editor.UpdateNodeData(node.ID(), patch)
	return patch, nil
}

// Discard drops unsaved edits
func (p *Panel) Discard() {
	if p.form != nil {
		p.form.Discard()
	}
}

// Delete removes the selected node through the canvas
func (p *Panel) Delete() error {
	node, err := p.selected()
	if err != nil {
		return err
	}
	p.editor.DeleteNode(node.ID())
	p.form = nil
	return nil
}

// Test starts a simulated run of the selected node
func (p *Panel) Test() error {
	node, err := p.selected()
	if err != nil {
		return err
	}
	if p.tester == nil {
		return pkgerrors.NewUnavailableError("node tester")
	}
	if !p.tester.Run(p.editor.Workflow().ID().String(), node.Snapshot()) {
		return pkgerrors.NewConflictError("test already running").WithDetail("nodeId", node.ID().String())
	}
	return nil
}
