package inspector

import (
	"encoding/json"
	"fmt"

	"workflowbuilder/domain/core/entities"
)

// PlaceholderMessage is shown when no node is selected
const PlaceholderMessage = "Select a node to configure"

// FieldView is one rendered form control
type FieldView struct {
	Field
	Value   string `json:"value"`
	Masked  bool   `json:"masked,omitempty"`
	Pending bool   `json:"pending,omitempty"`
	Error   string `json:"error,omitempty"`
}

// View is the rendered configuration panel
type View struct {
	Empty   bool        `json:"empty"`
	Message string      `json:"message,omitempty"`
	NodeID  string      `json:"nodeId,omitempty"`
	Type    string      `json:"type,omitempty"`
	Title   string      `json:"title,omitempty"`
	Generic bool        `json:"generic,omitempty"`
	Fields  []FieldView `json:"fields,omitempty"`
	Summary string      `json:"summary,omitempty"`
	Preview string      `json:"preview,omitempty"`
	Dirty   bool        `json:"dirty,omitempty"`
}

// Placeholder is the view with nothing selected
func Placeholder() View {
	return View{Empty: true, Message: PlaceholderMessage}
}

// Render shows node with the form's edits applied. Secret values are
// replaced by mask in both the fields and the preview.
func (f *Form) Render(node entities.NodeSnapshot, mask string) View {
	params := f.merged(node.Data.Params)

	title := node.Data.Title
	if f.title != nil {
		title = *f.title
	}

	v := View{
		NodeID:  node.ID.String(),
		Type:    node.Type.String(),
		Title:   title,
		Generic: f.schema.Generic(),
		Fields:  make([]FieldView, 0, len(f.schema.Fields)),
		Summary: Summary(DecodeParams(node.Type, params)),
		Dirty:   f.Dirty(),
	}

	preview := make(map[string]interface{}, len(params))
	for k, val := range params {
		preview[k] = val
	}

	for _, field := range f.schema.Fields {
		fv := FieldView{Field: field}
		if text, pending := f.raw[field.Key]; pending {
			fv.Value = text
			fv.Pending = true
			fv.Error = f.errs[field.Key]
		} else if val, ok := params[field.Key]; ok {
			fv.Value = display(val)
		}
		if field.Kind == FieldSecret && fv.Value != "" {
			fv.Value = mask
			fv.Masked = true
			preview[field.Key] = mask
		}
		v.Fields = append(v.Fields, fv)
	}

	out, err := json.MarshalIndent(preview, "", "  ")
	if err != nil {
		out = []byte("{}")
	}
	v.Preview = string(out)
	return v
}

func display(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatNumber(t)
	case map[string]interface{}, []interface{}:
		out, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(out)
	default:
		return fmt.Sprint(t)
	}
}
