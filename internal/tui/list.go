package tui

import (
	"strings"

	"github.com/fatih/color"
)

// ListRow is one exercise in the list view.
type ListRow struct {
	Name    string
	Path    string
	Done    bool
	Current bool
}

const (
	listSelectWidth  = 2
	listCurrentWidth = 9
	listStateWidth   = 9
)

// RenderList renders the exercise table. selected is highlighted with a
// leading marker; -1 selects nothing.
func RenderList(rows []ListRow, selected, width int, styled bool) string {
	nameWidth := len("Name")
	for _, row := range rows {
		nameWidth = max(nameWidth, len(row.Name))
	}
	pathWidth := max(width-listSelectWidth-listCurrentWidth-listStateWidth-nameWidth-2, 4)

	bold := newColor(styled, color.Bold)
	green := newColor(styled, color.FgGreen)
	yellow := newColor(styled, color.FgYellow)

	var sb strings.Builder
	header := strings.Repeat(" ", listSelectWidth) +
		PadOrTruncate("Current", listCurrentWidth) +
		PadOrTruncate("State", listStateWidth) +
		PadOrTruncate("Name", nameWidth+2) +
		"Path"
	sb.WriteString(bold.Sprint(header))
	sb.WriteString("\n")

	for i, row := range rows {
		marker := "  "
		if i == selected {
			marker = bold.Sprint("> ")
		}
		sb.WriteString(marker)

		current := ""
		if row.Current {
			current = ">>>>>>>"
		}
		sb.WriteString(PadOrTruncate(current, listCurrentWidth))

		if row.Done {
			sb.WriteString(PadOrTruncate(green.Sprint("DONE"), listStateWidth))
		} else {
			sb.WriteString(PadOrTruncate(yellow.Sprint("PENDING"), listStateWidth))
		}

		sb.WriteString(PadOrTruncate(row.Name, nameWidth+2))
		sb.WriteString(Truncate(row.Path, pathWidth))
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	return sb.String()
}
