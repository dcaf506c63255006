package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderTable draws a fixed-width table with one selectable row. Widths are
// per column; overflowing cells are truncated with an ellipsis.
func renderTable(headers []string, widths []int, rows [][]string, selected int) string {
	var b strings.Builder

	head := make([]string, len(headers))
	for i, h := range headers {
		head[i] = pad(h, widths[i])
	}
	b.WriteString(tableHeaderStyle.Render(strings.Join(head, " ")))
	b.WriteString("\n")

	for ri, row := range rows {
		cells := make([]string, len(row))
		for ci, cell := range row {
			cells[ci] = pad(cell, widths[ci])
		}
		line := strings.Join(cells, " ")
		if ri == selected {
			b.WriteString(tableSelectedStyle.Render(line))
		} else {
			b.WriteString(tableCellStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(rows) == 0 {
		b.WriteString(helpStyle.Render("no rows"))
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if lipgloss.Width(s) > width {
		if width <= 1 {
			return s[:width]
		}
		return s[:width-1] + "…"
	}
	return s + strings.Repeat(" ", width-lipgloss.Width(s))
}

// clampCursor keeps a selection index inside the row range.
func clampCursor(cursor, rows int) int {
	if rows == 0 {
		return 0
	}
	if cursor < 0 {
		return 0
	}
	if cursor >= rows {
		return rows - 1
	}
	return cursor
}
