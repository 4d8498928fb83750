// Package palette holds the static catalog of draggable node archetypes and
// the pre-built workflow templates offered next to the canvas.
package palette

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"workflowbuilder/domain/core/aggregates"
	"workflowbuilder/domain/core/valueobjects"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// TabAll selects every category
const TabAll = "all"

// Archetype is a palette entry that can be dragged onto the canvas
type Archetype struct {
	ID          string `yaml:"id" json:"id"`
	Type        string `yaml:"type" json:"type"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Icon        string `yaml:"icon" json:"icon"`
	Color       string `yaml:"color" json:"color"`
	Category    string `yaml:"-" json:"category"`
}

// Kind returns the archetype's node type
func (a Archetype) Kind() valueobjects.NodeKind {
	return valueobjects.NodeKind(a.Type)
}

// Category groups archetypes under a palette tab
type Category struct {
	ID    string      `yaml:"id" json:"id"`
	Name  string      `yaml:"name" json:"name"`
	Items []Archetype `yaml:"items" json:"items"`
}

type catalogFile struct {
	Categories []Category            `yaml:"categories"`
	Templates  []aggregates.Template `yaml:"templates"`
}

// Catalog is the read-only palette content. It is safe for concurrent use.
type Catalog struct {
	categories []Category
	templates  []aggregates.Template
	byID       map[string]Archetype
	byKind     map[valueobjects.NodeKind]Archetype
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := Parse(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a YAML file. An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a catalog from YAML
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		byID:   make(map[string]Archetype),
		byKind: make(map[valueobjects.NodeKind]Archetype),
	}
	for _, cat := range f.Categories {
		if cat.ID == "" || strings.EqualFold(cat.ID, TabAll) {
			return nil, fmt.Errorf("invalid category id %q", cat.ID)
		}
		for i := range cat.Items {
			item := &cat.Items[i]
			item.Category = cat.ID
			if item.ID == "" || item.Type == "" {
				return nil, fmt.Errorf("category %s: item %d needs id and type", cat.ID, i)
			}
			if _, dup := c.byID[item.ID]; dup {
				return nil, fmt.Errorf("duplicate archetype id %q", item.ID)
			}
			c.byID[item.ID] = *item
			// first archetype of a kind is its canonical entry
			if _, ok := c.byKind[item.Kind()]; !ok {
				c.byKind[item.Kind()] = *item
			}
		}
		c.categories = append(c.categories, cat)
	}

	names := make(map[string]bool, len(f.Templates))
	for _, t := range f.Templates {
		if t.Name == "" || names[t.Name] {
			return nil, fmt.Errorf("template name %q is empty or duplicated", t.Name)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("template %s: %w", t.Name, err)
		}
		names[t.Name] = true
	}
	c.templates = f.Templates
	return c, nil
}

// Categories returns the categories in display order
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Tabs returns the tab ids, "all" first
func (c *Catalog) Tabs() []string {
	tabs := []string{TabAll}
	for _, cat := range c.categories {
		tabs = append(tabs, cat.ID)
	}
	return tabs
}

// Filter returns archetypes whose name contains search (case-insensitive)
// within the given tab. An empty tab means "all".
func (c *Catalog) Filter(search, tab string) []Archetype {
	search = strings.ToLower(strings.TrimSpace(search))
	if tab == "" {
		tab = TabAll
	}

	var out []Archetype
	for _, cat := range c.categories {
		if tab != TabAll && tab != cat.ID {
			continue
		}
		for _, item := range cat.Items {
			if strings.Contains(strings.ToLower(item.Name), search) {
				out = append(out, item)
			}
		}
	}
	return out
}

// Lookup resolves a node type to its canonical archetype
func (c *Catalog) Lookup(kind valueobjects.NodeKind) (Archetype, bool) {
	a, ok := c.byKind[kind]
	return a, ok
}

// Item returns an archetype by palette item id
func (c *Catalog) Item(id string) (Archetype, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// Templates returns the pre-built templates
func (c *Catalog) Templates() []aggregates.Template {
	out := make([]aggregates.Template, len(c.templates))
	copy(out, c.templates)
	return out
}

// Template returns a template by name (case-insensitive)
func (c *Catalog) Template(name string) (aggregates.Template, bool) {
	for _, t := range c.templates {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return aggregates.Template{}, false
}
