package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCatalogCmd(t *testing.T) {
	out, err := run(t, "catalog", "--search", "swap")
	require.NoError(t, err)
	assert.Contains(t, out, "web3-defi")
	assert.NotContains(t, out, "web2-api")

	out, err = run(t, "catalog", "--tab", "nope")
	require.NoError(t, err)
	assert.Contains(t, out, "No matching items.")
}

func TestTemplatesCmd(t *testing.T) {
	out, err := run(t, "templates")
	require.NoError(t, err)
	assert.Contains(t, out, "DeFi Yield Optimizer")
	assert.Contains(t, out, "Price Alert Bot")
}

func TestSchemaCmd(t *testing.T) {
	out, err := run(t, "schema", "web3-defi")
	require.NoError(t, err)
	assert.Contains(t, out, "slippage")

	out, err = run(t, "schema", "web3-defi", "--json")
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "object", doc["type"])

	out, err = run(t, "schema", "custom-thing")
	require.NoError(t, err)
	assert.Contains(t, out, "only the title is editable")

	_, err = run(t, "schema")
	assert.Error(t, err)
}

func TestSimulateCmd(t *testing.T) {
	out, err := run(t, "simulate", "defi yield optimizer")
	require.NoError(t, err)
	assert.Contains(t, out, "3 nodes · 2 connections")
	assert.Contains(t, out, "M ")

	out, err = run(t, "simulate", "Price Alert Bot", "--json")
	require.NoError(t, err)
	var snap struct {
		Nodes       []json.RawMessage `json:"nodes"`
		Connections []json.RawMessage `json:"connections"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.NotEmpty(t, snap.Nodes)

	_, err = run(t, "simulate", "Nope")
	assert.Error(t, err)
}
