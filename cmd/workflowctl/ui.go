package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	brand  = color.New(color.FgHiCyan, color.Bold)
	subtle = color.New(color.FgHiBlack)
	good   = color.New(color.FgGreen)
	bad    = color.New(color.FgRed)
	accent = color.New(color.FgYellow)
)

func banner(w io.Writer, subtitle string) {
	fmt.Fprintf(w, "%s %s\n\n", brand.Sprint("workflowctl"), subtle.Sprint("· "+subtitle))
}

// table prints rows aligned under headers
func table(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var head, sep strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&head, "  %-*s", widths[i], h)
		sep.WriteString("  " + strings.Repeat("─", widths[i]))
	}
	fmt.Fprintln(w, subtle.Sprint(head.String()))
	fmt.Fprintln(w, subtle.Sprint(sep.String()))
	for _, row := range rows {
		var line strings.Builder
		for i, cell := range row {
			if i < len(widths) {
				fmt.Fprintf(&line, "  %-*s", widths[i], cell)
			}
		}
		fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}
