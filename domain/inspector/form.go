package inspector

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"workflowbuilder/domain/core/entities"
	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

// Form holds edits to one node that have not been saved yet. Number and
// JSON fields keep the typed text as pending until it parses; pending text
// is never saved.
type Form struct {
	nodeID valueobjects.NodeID
	schema *Schema

	title  *string
	staged map[string]interface{} // nil clears the key on save
	raw    map[string]string
	errs   map[string]string
}

// NewForm starts an empty form for one node
func NewForm(nodeID valueobjects.NodeID, schema *Schema) *Form {
	return &Form{
		nodeID: nodeID,
		schema: schema,
		staged: make(map[string]interface{}),
		raw:    make(map[string]string),
		errs:   make(map[string]string),
	}
}

// NodeID returns the node being edited
func (f *Form) NodeID() valueobjects.NodeID {
	return f.nodeID
}

// Schema returns the field table entry in use
func (f *Form) Schema() *Schema {
	return f.schema
}

// SetTitle stages a new title
func (f *Form) SetTitle(title string) {
	f.title = &title
}

// Set stages the text typed into a field
func (f *Form) Set(key, text string) error {
	field, ok := f.schema.Field(key)
	if !ok {
		return pkgerrors.NewValidationError("unknown field: " + key).WithDetail("field", key)
	}

	switch field.Kind {
	case FieldNumber:
		t := strings.TrimSpace(text)
		if t == "" {
			f.stage(key, nil)
			return nil
		}
		n, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			f.hold(key, text, "not a number")
			return nil
		}
		f.stage(key, n)

	case FieldJSON:
		t := strings.TrimSpace(text)
		if t == "" {
			f.stage(key, nil)
			return nil
		}
		var v interface{}
		if err := json.Unmarshal([]byte(t), &v); err != nil {
			f.hold(key, text, "invalid JSON")
			return nil
		}
		f.stage(key, v)

	default:
		if text == "" {
			f.stage(key, nil)
			return nil
		}
		f.stage(key, text)
	}
	return nil
}

func (f *Form) stage(key string, v interface{}) {
	delete(f.raw, key)
	delete(f.errs, key)
	f.staged[key] = v
}

func (f *Form) hold(key, text, reason string) {
	delete(f.staged, key)
	f.raw[key] = text
	f.errs[key] = reason
}

// Pending returns the field texts that do not parse yet
func (f *Form) Pending() map[string]string {
	out := make(map[string]string, len(f.raw))
	for k, v := range f.raw {
		out[k] = v
	}
	return out
}

// Dirty reports whether Save would change anything
func (f *Form) Dirty() bool {
	return f.title != nil || len(f.staged) > 0
}

// Patch builds the update Save would commit
func (f *Form) Patch() entities.DataPatch {
	var patch entities.DataPatch
	if f.title != nil {
		t := *f.title
		patch.Title = &t
	}
	if len(f.staged) > 0 {
		patch.Params = make(map[string]interface{}, len(f.staged))
		for k, v := range f.staged {
			patch.Params[k] = v
		}
	}
	return patch
}

// Save validates the staged edits and hands them back as one patch.
// On error nothing is cleared; pending text always stays in place.
func (f *Form) Save() (entities.DataPatch, error) {
	patch := f.Patch()
	if patch.IsEmpty() {
		return patch, nil
	}
	if err := f.schema.Validate(patch.Params); err != nil {
		return entities.DataPatch{}, err
	}
	f.title = nil
	f.staged = make(map[string]interface{})
	return patch, nil
}

// Discard drops every staged and pending edit
func (f *Form) Discard() {
	f.title = nil
	f.staged = make(map[string]interface{})
	f.raw = make(map[string]string)
	f.errs = make(map[string]string)
}

// merged overlays staged values on the node's saved params
func (f *Form) merged(base map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(f.staged))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range f.staged {
		if v == nil {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}
