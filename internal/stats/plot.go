// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/verte-zerg/strafetrakk/internal/model"
	"golang.org/x/term"
)

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisSeparator       = " │"
	earlyLabel          = "← Early"
	lateLabel           = "Late →"
	zeroMarker          = "┴"
	axisRune            = "─"
	terminalWidthBackup = 80
)

// eighths are the partial bar glyphs, index n is n/8 of a cell.
var eighths = []string{" ", "▁", "▂", "▃", "▄", "▅", "▆", "▇", "█"}

// HistogramOptions controls the terminal histogram.
type HistogramOptions struct {
	Title string
	// Width is the total width including the axis; 0 uses the terminal width.
	Width  int
	Height int
	// ForceColor colors bars even when w is not a terminal.
	ForceColor bool
	// NoColor disables bar colors.
	NoColor bool
}

type plotColumn struct {
	count  int
	color  string
	center float64
}

// RenderHistogram writes a vertical bar chart of bins to w.
func RenderHistogram(w io.Writer, bins []model.HistogramBin, opts HistogramOptions) error {
	useColor := !opts.NoColor && shouldUseColor(w, opts.ForceColor)
	lines := HistogramLines(bins, opts.Width, opts.Height, useColor)
	if opts.Title != "" {
		if _, err := fmt.Fprintln(w, opts.Title); err != nil {
			return err
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// HistogramLines renders bins into lines of at most totalWidth cells. Each bin
// gets one or more columns; when there are more bins than columns, adjacent
// bins are merged.
func HistogramLines(bins []model.HistogramBin, totalWidth, height int, useColor bool) []string {
	if len(bins) == 0 {
		return []string{"No samples yet."}
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	labelWidth := len(fmt.Sprint(maxCount))
	plotWidth := PlotWidthFor(totalWidth, labelWidth)
	cols, colWidth := layoutColumns(bins, plotWidth)

	lines := make([]string, 0, height+2)
	for row := height - 1; row >= 0; row-- {
		var b strings.Builder
		label := ""
		switch row {
		case height - 1:
			label = fmt.Sprint(maxCount)
		case 0:
			label = "0"
		}
		b.WriteString(fmt.Sprintf("%*s%s", labelWidth, label, axisSeparator))
		for _, c := range cols {
			glyph := barGlyph(c.count, maxCount, height, row)
			cell := strings.Repeat(glyph, colWidth)
			if useColor && glyph != " " {
				cell = lipgloss.NewStyle().Foreground(lipgloss.Color(c.color)).Render(cell)
			}
			b.WriteString(cell)
		}
		lines = append(lines, b.String())
	}

	pad := strings.Repeat(" ", labelWidth+len([]rune(axisSeparator)))
	var axis strings.Builder
	axis.WriteString(pad)
	for _, c := range cols {
		mark := strings.Repeat(axisRune, colWidth)
		if c.center == 0 {
			mid := colWidth / 2
			mark = strings.Repeat(axisRune, mid) + zeroMarker + strings.Repeat(axisRune, colWidth-mid-1)
		}
		axis.WriteString(mark)
	}
	lines = append(lines, axis.String())

	span := len(cols) * colWidth
	gap := span - len([]rune(earlyLabel)) - len([]rune(lateLabel))
	if gap < 1 {
		gap = 1
	}
	lines = append(lines, pad+earlyLabel+strings.Repeat(" ", gap)+lateLabel)
	return lines
}

func layoutColumns(bins []model.HistogramBin, plotWidth int) ([]plotColumn, int) {
	if len(bins) <= plotWidth {
		cols := make([]plotColumn, len(bins))
		for i, b := range bins {
			cols[i] = plotColumn{count: b.Count, color: b.Color, center: b.Center}
		}
		return cols, plotWidth / len(bins)
	}
	group := int(math.Ceil(float64(len(bins)) / float64(plotWidth)))
	cols := make([]plotColumn, 0, len(bins)/group+1)
	for start := 0; start < len(bins); start += group {
		end := start + group
		if end > len(bins) {
			end = len(bins)
		}
		c := plotColumn{color: bins[(start+end-1)/2].Color, center: math.NaN()}
		for _, b := range bins[start:end] {
			c.count += b.Count
			if b.Center == 0 {
				c.center = 0
				c.color = b.Color
			}
		}
		cols = append(cols, c)
	}
	return cols, 1
}

// barGlyph picks the glyph for row (0 is the bottom) of a bar.
func barGlyph(count, maxCount, height, row int) string {
	if count <= 0 || maxCount <= 0 {
		return " "
	}
	total := int(math.Round(float64(count) / float64(maxCount) * float64(height*8)))
	if total < 1 {
		total = 1
	}
	filled := total - row*8
	switch {
	case filled >= 8:
		return eighths[8]
	case filled <= 0:
		return " "
	default:
		return eighths[filled]
	}
}

// PlotWidthFor computes the plot area that fits within the total available
// width after the count axis.
func PlotWidthFor(totalWidth, labelWidth int) int {
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	plotWidth := totalWidth - labelWidth - len([]rune(axisSeparator))
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
