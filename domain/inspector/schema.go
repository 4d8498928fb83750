// Package inspector is the configuration panel for the selected node: a
// per-type field table, a staged edit form, and the simulated test run.
package inspector

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

//go:embed schemas.yaml
var defaultSchemasYAML []byte

// FieldKind selects the editor control for a field
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldTextarea FieldKind = "textarea"
	FieldNumber   FieldKind = "number"
	FieldSelect   FieldKind = "select"
	FieldSecret   FieldKind = "secret"
	FieldJSON     FieldKind = "json"
)

func (k FieldKind) valid() bool {
	switch k {
	case FieldText, FieldTextarea, FieldNumber, FieldSelect, FieldSecret, FieldJSON:
		return true
	}
	return false
}

// Option is one choice of a select field
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Field describes one editable parameter
type Field struct {
	Key         string    `yaml:"key" json:"key"`
	Label       string    `yaml:"label" json:"label"`
	Kind        FieldKind `yaml:"kind" json:"kind"`
	Placeholder string    `yaml:"placeholder,omitempty" json:"placeholder,omitempty"`
	Help        string    `yaml:"help,omitempty" json:"help,omitempty"`
	Options     []Option  `yaml:"options,omitempty" json:"options,omitempty"`
	Pattern     string    `yaml:"pattern,omitempty" json:"pattern,omitempty"`
	Format      string    `yaml:"format,omitempty" json:"format,omitempty"`
	Minimum     *float64  `yaml:"minimum,omitempty" json:"minimum,omitempty"`
	Maximum     *float64  `yaml:"maximum,omitempty" json:"maximum,omitempty"`
}

// Schema is the field list for one node type. A generic schema has no
// fields and only the title is editable.
type Schema struct {
	Kind   valueobjects.NodeKind `json:"type"`
	Fields []Field               `json:"fields"`

	byKey     map[string]Field
	validator *gojsonschema.Schema
}

// Generic reports whether this is the title-only fallback
func (s *Schema) Generic() bool {
	return len(s.Fields) == 0
}

// Field looks up a field by key
func (s *Schema) Field(key string) (Field, bool) {
	f, ok := s.byKey[key]
	return f, ok
}

// JSONSchema returns the draft-07 document used to validate params
func (s *Schema) JSONSchema() map[string]interface{} {
	props := make(map[string]interface{}, len(s.Fields))
	for _, f := range s.Fields {
		props[f.Key] = f.jsonSchema()
	}
	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                string(s.Kind),
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
}

func (f Field) jsonSchema() map[string]interface{} {
	out := map[string]interface{}{"title": f.Label}
	switch f.Kind {
	case FieldNumber:
		out["type"] = "number"
		if f.Minimum != nil {
			out["minimum"] = *f.Minimum
		}
		if f.Maximum != nil {
			out["maximum"] = *f.Maximum
		}
	case FieldSelect:
		out["type"] = "string"
		enum := make([]interface{}, 0, len(f.Options))
		for _, o := range f.Options {
			enum = append(enum, o.Value)
		}
		out["enum"] = enum
	case FieldJSON:
		out["type"] = []string{"object", "array"}
	default:
		out["type"] = "string"
		if f.Pattern != "" {
			out["pattern"] = f.Pattern
		}
		if f.Format != "" {
			out["format"] = f.Format
		}
	}
	return out
}

// Validate checks params against the field table. Keys the table does not
// know are accepted as they are.
func (s *Schema) Validate(params map[string]interface{}) error {
	if s.validator == nil || len(params) == 0 {
		return nil
	}
	doc := make(map[string]interface{}, len(params))
	for k, v := range params {
		if v != nil {
			doc[k] = v
		}
	}
	result, err := s.validator.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return pkgerrors.NewInternalError("params validation failed").WithCause(err)
	}
	if result.Valid() {
		return nil
	}

	appErr := pkgerrors.NewValidationError("invalid configuration").WithCode("INVALID_PARAMS")
	for _, re := range result.Errors() {
		field := re.Field()
		if p, ok := re.Details()["property"].(string); ok && field == "(root)" {
			field = p
		}
		appErr = appErr.WithDetail(field, re.Description())
	}
	return appErr
}

// Table maps node types to their schemas
type Table struct {
	schemas map[valueobjects.NodeKind]*Schema
}

// DefaultTable returns the built-in field table
func DefaultTable() *Table {
	t, err := ParseTable(defaultSchemasYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in field table is invalid: %v", err))
	}
	return t
}

// LoadTable reads a field table from YAML. An empty path returns the built-in table.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return DefaultTable(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading field table: %w", err)
	}
	return ParseTable(data)
}

// ParseTable builds a field table from YAML
func ParseTable(data []byte) (*Table, error) {
	var raw map[string][]Field
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, pkgerrors.Wrap(err, "parsing field table")
	}

	t := &Table{schemas: make(map[valueobjects.NodeKind]*Schema, len(raw))}
	for kind, fields := range raw {
		s, err := newSchema(valueobjects.NodeKind(kind), fields)
		if err != nil {
			return nil, err
		}
		t.schemas[s.Kind] = s
	}
	return t, nil
}

func newSchema(kind valueobjects.NodeKind, fields []Field) (*Schema, error) {
	s := &Schema{Kind: kind, Fields: fields, byKey: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if f.Key == "" || f.Key == "title" {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s: invalid field key %q", kind, f.Key))
		}
		if !f.Kind.valid() {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s.%s: unknown field kind %q", kind, f.Key, f.Kind))
		}
		if f.Kind == FieldSelect && len(f.Options) == 0 {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s.%s: select needs options", kind, f.Key))
		}
		if _, dup := s.byKey[f.Key]; dup {
			return nil, pkgerrors.NewValidationError(fmt.Sprintf("%s: duplicate field %q", kind, f.Key))
		}
		s.byKey[f.Key] = f
	}
	if len(fields) == 0 {
		return s, nil
	}

	doc, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "encoding schema for %s", kind)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "compiling schema for %s", kind)
	}
	s.validator = compiled
	return s, nil
}

// Lookup returns the schema for kind, or the generic title-only schema
func (t *Table) Lookup(kind valueobjects.NodeKind) *Schema {
	if s, ok := t.schemas[kind]; ok {
		return s
	}
	return &Schema{Kind: kind, byKey: map[string]Field{}}
}

// Kinds lists the node types that have a dedicated editor
func (t *Table) Kinds() []valueobjects.NodeKind {
	out := make([]valueobjects.NodeKind, 0, len(t.schemas))
	for k := range t.schemas {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
