package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is one column of a plain-text report table.
type column struct {
	title string
	// numeric columns hold counts or millisecond values and align right.
	numeric bool
}

var sessionColumns = []column{
	{title: "ID", numeric: true},
	{title: "Ended"},
	{title: "Keys"},
	{title: "Threshold", numeric: true},
	{title: "Samples", numeric: true},
	{title: "Mean |offset|", numeric: true},
	{title: "Source"},
}

// layoutTable sizes each column to its widest cell. Missing cells render
// blank and cells beyond len(cols) are dropped.
func layoutTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
		widths[i] = displayWidth(c.title)
	}
	for _, row := range rows {
		for i := range cols {
			if w := displayWidth(cellAt(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, layoutRow(cols, widths, header))
	for _, row := range rows {
		lines = append(lines, layoutRow(cols, widths, row))
	}
	return lines
}

func layoutRow(cols []column, widths []int, row []string) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteString("  ")
		}
		value := cellAt(row, i)
		pad := strings.Repeat(" ", max(widths[i]-displayWidth(value), 0))
		if c.numeric {
			b.WriteString(pad + value)
		} else {
			b.WriteString(value + pad)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

// displayWidth counts terminal cells so arrows and wide key names line up.
func displayWidth(value string) int {
	return runewidth.StringWidth(value)
}
