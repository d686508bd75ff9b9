package histogram

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// PerfectColor marks the zero-offset bin.
const PerfectColor = "#c9b458"

var (
	earlyFloor = rgb(180, 100, 100)
	earlyPeak  = rgb(255, 60, 60)
	lateFloor  = rgb(150, 180, 150)
	latePeak   = rgb(90, 235, 110)
)

// BinColor returns the hex color for a bin center. Early (negative) bins are
// red and late (positive) bins are green; both are most saturated next to
// zero and fade to their floor color at |center| == rng.
func BinColor(center, rng float64) string {
	if center == 0 {
		return PerfectColor
	}
	t := Intensity(center, rng)
	if center < 0 {
		return earlyFloor.BlendRgb(earlyPeak, t).Clamped().Hex()
	}
	return lateFloor.BlendRgb(latePeak, t).Clamped().Hex()
}

// Intensity is 1 next to zero and 0 at or beyond the range edge.
func Intensity(center, rng float64) float64 {
	if rng <= 0 {
		return 0
	}
	return 1 - math.Min(math.Abs(center)/rng, 1)
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}
