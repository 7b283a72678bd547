package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"audiovert/internal/execute"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func renderSummary(s execute.Summary) string {
	rows := [][]string{
		{"Planned", strconv.Itoa(s.Planned)},
		{"Completed", strconv.Itoa(s.Completed)},
		{"Failed", strconv.Itoa(s.Failed)},
		{"Already existed", strconv.Itoa(s.Existing)},
		{"Trashed", strconv.Itoa(s.Trashed)},
		{"Empty dirs removed", strconv.Itoa(s.RemovedDirs)},
	}
	return renderTable([]string{"Tasks", "Count"}, rows, []columnAlignment{alignLeft, alignRight})
}
