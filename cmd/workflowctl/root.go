package main

import (
	"github.com/spf13/cobra"

	"workflowbuilder/domain/inspector"
	"workflowbuilder/domain/palette"
)

var version = "0.3.0"

type rootOptions struct {
	catalogPath string
	schemaPath  string
}

func (o *rootOptions) catalog() (*palette.Catalog, error) {
	if o.catalogPath == "" {
		return palette.Default(), nil
	}
	return palette.Load(o.catalogPath)
}

func (o *rootOptions) table() (*inspector.Table, error) {
	if o.schemaPath == "" {
		return inspector.DefaultTable(), nil
	}
	return inspector.LoadTable(o.schemaPath)
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "workflowctl",
		Short:         "Run and inspect the workflow builder",
		Version:       version,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "palette catalog YAML (defaults to the built-in one)")
	cmd.PersistentFlags().StringVar(&opts.schemaPath, "schemas", "", "inspector schema YAML (defaults to the built-in one)")

	cmd.AddCommand(
		serveCmd(),
		catalogCmd(opts),
		templatesCmd(opts),
		schemaCmd(opts),
		simulateCmd(opts),
	)
	return cmd
}
