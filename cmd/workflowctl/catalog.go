package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"workflowbuilder/domain/core/valueobjects"
	"workflowbuilder/domain/palette"
)

func catalogCmd(opts *rootOptions) *cobra.Command {
	var search, tab string
	cmd := &cobra.Command{
		Use:     "catalog",
		Aliases: []string{"palette"},
		Short:   "List the draggable node archetypes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			banner(out, "palette")

			items := cat.Filter(search, tab)
			if len(items) == 0 {
				fmt.Fprintln(out, "  No matching items.")
				return nil
			}
			rows := make([][]string, 0, len(items))
			for _, it := range items {
				rows = append(rows, []string{it.ID, it.Type, it.Name, it.Category})
			}
			table(out, []string{"ID", "Type", "Name", "Category"}, rows)
			fmt.Fprintf(out, "\n  %s\n", subtle.Sprintf("%d items · tabs: %s", len(items), strings.Join(cat.Tabs(), ", ")))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive name filter")
	cmd.Flags().StringVar(&tab, "tab", palette.TabAll, "category tab")
	return cmd
}

func templatesCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the pre-built workflow templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := opts.catalog()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			banner(out, "templates")

			var rows [][]string
			for _, t := range cat.Templates() {
				rows = append(rows, []string{
					t.Name,
					strconv.Itoa(len(t.Nodes)),
					strconv.Itoa(len(t.Connections)),
					t.Description,
				})
			}
			table(out, []string{"Name", "Nodes", "Links", "Description"}, rows)
			return nil
		},
	}
}

func schemaCmd(opts *rootOptions) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "schema <type>",
		Short: "Show the inspector fields for a node type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := opts.table()
			if err != nil {
				return err
			}
			schema := tbl.Lookup(valueobjects.NodeKind(args[0]))
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(schema.JSONSchema())
			}

			banner(out, "schema "+args[0])
			if schema.Generic() {
				fmt.Fprintln(out, "  "+accent.Sprint("Generic node: only the title is editable."))
				return nil
			}
			rows := make([][]string, 0, len(schema.Fields))
			for _, f := range schema.Fields {
				rows = append(rows, []string{f.Key, f.Label, string(f.Kind), f.Placeholder})
			}
			table(out, []string{"Key", "Label", "Kind", "Placeholder"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the JSON Schema document")
	return cmd
}
