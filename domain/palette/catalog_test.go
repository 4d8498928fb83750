package palette

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workflowbuilder/domain/bridge"
	"workflowbuilder/domain/core/valueobjects"
	pkgerrors "workflowbuilder/pkg/errors"
)

func names(items []Archetype) []string {
	out := make([]string, 0, len(items))
	for _, a := range items {
		out = append(out, a.Name)
	}
	return out
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	assert.Equal(t, []string{"all", "triggers", "operations", "utilities"}, c.Tabs())
	assert.Len(t, c.Categories(), 3)
	assert.Len(t, c.Filter("", TabAll), 12)
	assert.NotEmpty(t, c.Templates())
}

func TestCatalog_Filter(t *testing.T) {
	c := Default()

	tests := []struct {
		name   string
		search string
		tab    string
		want   []string
	}{
		{name: "case insensitive across all", search: "SWAP", tab: TabAll, want: []string{"Token Swap"}},
		{name: "empty tab means all", search: "trigger", tab: "", want: []string{"Time Trigger"}},
		{name: "tab restricts", search: "", tab: "utilities", want: []string{"Conditional", "Delay", "Transform Data", "Notification"}},
		{name: "search within tab", search: "a", tab: "triggers", want: []string{"Blockchain Event", "Price Alert"}},
		{name: "no match", search: "nothing here", tab: TabAll, want: []string{}},
		{name: "unknown tab", search: "", tab: "nope", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, names(c.Filter(tt.search, tt.tab)))
		})
	}
}

func TestCatalog_Lookup(t *testing.T) {
	c := Default()

	a, ok := c.Lookup(valueobjects.KindDefi)
	require.True(t, ok)
	assert.Equal(t, "Token Swap", a.Name, "first archetype of a kind wins")
	assert.Equal(t, "operations", a.Category)

	_, ok = c.Lookup("unknown-kind")
	assert.False(t, ok)
}

func TestCatalog_Payload(t *testing.T) {
	c := Default()

	p, ok := c.Payload("bridge")
	require.True(t, ok)
	assert.Equal(t, DragPayload{Type: "web3-defi", Title: "Bridge Assets", ItemID: "bridge"}, p)
	assert.Equal(t, p, ParsePayload(p.Map()))

	_, ok = c.Payload("missing")
	assert.False(t, ok)
}

func TestCatalog_ResolveTitle(t *testing.T) {
	c := Default()

	tests := []struct {
		name    string
		payload DragPayload
		want    string
		ok      bool
	}{
		{name: "explicit title", payload: DragPayload{Type: "web3-defi", Title: "Swap Tokens"}, want: "Swap Tokens", ok: true},
		{name: "item name", payload: DragPayload{Type: "web3-defi", ItemID: "bridge"}, want: "Bridge Assets", ok: true},
		{name: "item of other kind ignored", payload: DragPayload{Type: "web3-defi", ItemID: "wallet"}, want: "Token Swap", ok: true},
		{name: "canonical name", payload: DragPayload{Type: "web2-time"}, want: "Time Trigger", ok: true},
		{name: "unknown type", payload: DragPayload{Type: "bogus", Title: "x"}, ok: false},
		{name: "missing type", payload: DragPayload{Title: "x"}, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.ResolveTitle(tt.payload)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_Templates(t *testing.T) {
	c := Default()

	tpl, ok := c.Template("defi yield optimizer")
	require.True(t, ok)
	assert.Equal(t, "DeFi Yield Optimizer", tpl.Name)
	assert.Len(t, tpl.Nodes, 3)
	assert.Len(t, tpl.Connections, 2)
	assert.Equal(t, "Daily Check", tpl.Nodes[0].Data.Title)
	assert.Equal(t, 100.0, tpl.Nodes[0].Position.X)
	require.NoError(t, tpl.Validate())

	_, ok = c.Template("missing")
	assert.False(t, ok)
}

func TestCatalog_RequestTemplate(t *testing.T) {
	c := Default()
	bus := bridge.NewBus()

	var got []string
	bus.Subscribe(func(e bridge.TemplateEvent) { got = append(got, e.Template.Name) })

	require.NoError(t, c.RequestTemplate(bus, "Price Alert Bot"))
	assert.Equal(t, []string{"Price Alert Bot"}, got)

	err := c.RequestTemplate(bus, "missing")
	assert.True(t, pkgerrors.IsNotFound(err))
	assert.Len(t, got, 1)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "bad yaml", yaml: "categories: ["},
		{name: "reserved tab id", yaml: "categories:\n  - id: all\n    name: All\n"},
		{name: "item without type", yaml: "categories:\n  - id: a\n    items:\n      - id: x\n"},
		{name: "duplicate item", yaml: "categories:\n  - id: a\n    items:\n      - {id: x, type: t}\n      - {id: x, type: t}\n"},
		{name: "broken template", yaml: "templates:\n  - name: T\n    nodes: [{id: '1', type: t}]\n    connections: [{source: '1', target: '2'}]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Categories())

	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - id: one\n    name: One\n    items:\n      - {id: a, type: web2-api, name: Call API}\n"), 0o600))

	c, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Call API"}, names(c.Filter("", "one")))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
