package main

import (
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderTable(headers []string, rows [][]string, align []text.Align) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range headers {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, len(headers))
	for i := range headers {
		alignment := text.AlignLeft
		if i < len(align) {
			alignment = align[i]
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       alignment,
			AlignHeader: alignment,
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// displayPath shortens path to its album directory and file name.
func displayPath(path string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) {
		return filepath.Base(path)
	}
	return filepath.Join(dir, filepath.Base(path))
}
