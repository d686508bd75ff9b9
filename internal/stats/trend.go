package stats

import (
	"fmt"
	"io"
	"strings"

	plot "github.com/chriskim06/drawille-go"
	"github.com/verte-zerg/strafetrakk/internal/model"
)

const defaultTrendWindow = 3

// TrendSeries returns the smoothed mean |offset| per session, oldest first.
func TrendSeries(sessions []model.SessionAggregate, window int) []float64 {
	values := make([]float64, 0, len(sessions))
	for _, s := range sessions {
		values = append(values, s.MeanAbsMs)
	}
	return MovingAverage(values, window)
}

// TrendLines draws the per-session mean |offset| as a braille line plot.
func TrendLines(sessions []model.SessionAggregate, width, height int) []string {
	if len(sessions) < 2 {
		return []string{"Need at least two sessions for a trend."}
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	series := TrendSeries(sessions, defaultTrendWindow)
	canvas := plot.NewCanvas(width, height)
	canvas.NumDataPoints = len(series)
	canvas.ShowAxis = true
	canvas.LineColors = []plot.Color{plot.Red}
	canvas.Fill([][]float64{series})

	first, last := series[0], series[len(series)-1]
	lines := strings.Split(strings.TrimRight(canvas.String(), "\n"), "\n")
	lines = append(lines, fmt.Sprintf("mean |offset|: %.1f ms → %.1f ms over %d sessions", first, last, len(sessions)))
	return lines
}

// RenderTrend writes the session trend plot to w.
func RenderTrend(w io.Writer, sessions []model.SessionAggregate, width, height int) error {
	if width <= 0 {
		width = terminalWidth()
	}
	if _, err := fmt.Fprintln(w, "Trend"); err != nil {
		return err
	}
	for _, line := range TrendLines(sessions, width, height) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
