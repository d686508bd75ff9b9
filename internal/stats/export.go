package stats

import (
	"errors"
	"fmt"
	"io"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/verte-zerg/strafetrakk/internal/model"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	exportWidth      = 1200
	exportHeight     = 500
	exportBarSpacing = 2
	exportLabelEvery = 5
)

// ErrNoBins is returned when exporting an empty histogram.
var ErrNoBins = errors.New("no bins to export")

// ExportPNG renders bins as a PNG bar chart. Bar colors match the bin colors.
func ExportPNG(w io.Writer, title string, bins []model.HistogramBin) error {
	if len(bins) == 0 {
		return ErrNoBins
	}
	barWidth := (exportWidth-80)/len(bins) - exportBarSpacing
	if barWidth < 2 {
		barWidth = 2
	}
	width := exportWidth
	if need := len(bins)*(barWidth+exportBarSpacing) + 80; need > width {
		width = need
	}

	maxCount := 0
	bars := make([]chart.Value, 0, len(bins))
	for i, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
		label := ""
		if b.Center == 0 || i%exportLabelEvery == 0 {
			label = fmt.Sprintf("%g", b.Center)
		}
		fill := binDrawingColor(b.Color)
		bars = append(bars, chart.Value{
			Value: float64(b.Count),
			Label: label,
			Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
		})
	}
	yMax := math.Max(1, float64(maxCount))

	ch := chart.BarChart{
		Title:      title,
		Width:      width,
		Height:     exportHeight,
		BarWidth:   barWidth,
		BarSpacing: exportBarSpacing,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 24}},
		YAxis: chart.YAxis{
			Name:  "samples",
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
		},
		Bars: bars,
	}
	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func binDrawingColor(hex string) drawing.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return drawing.ColorBlack
	}
	r, g, b := c.RGB255()
	return drawing.Color{R: r, G: g, B: b, A: 255}
}
