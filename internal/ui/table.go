package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// MaxAutoWidth caps columns sized to their content.
const MaxAutoWidth = 60

// TableColumn is a printed table column. A zero Width sizes the column to
// its title and widest cell, up to MaxAutoWidth.
type TableColumn struct {
	Title string
	Width int
}

// NewTable builds an unfocused bubbles table tall enough for every row.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		w := c.Width
		if w <= 0 {
			w = autoWidth(c.Title, rows, i)
		}
		cols[i] = table.Column{Title: c.Title, Width: w}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Printed tables have no cursor, so the first row must not stand out.
	s.Selected = s.Selected.Foreground(ColorPrimary).Bold(false)
	t.SetStyles(s)
	return t
}

func autoWidth(title string, rows []table.Row, col int) int {
	w := lipgloss.Width(title)
	for _, r := range rows {
		if col < len(r) {
			w = max(w, lipgloss.Width(r[col]))
		}
	}
	return min(w, MaxAutoWidth)
}

// RenderSimpleTable renders rows as a printed table for command output,
// or "" when there are none.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(columns, tableRows).View()
}
