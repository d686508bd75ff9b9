package session

// Preset histogram parameters the interactive views cycle through.
var (
	BinSizeSteps = []float64{1, 2, 5, 10, 20, 25, 50, 100}
	RangeSteps   = []float64{50, 100, 150, 200, 300, 500, 1000}
)

// StepUp returns the first preset greater than cur, or the largest preset.
func StepUp(steps []float64, cur float64) float64 {
	for _, s := range steps {
		if s > cur {
			return s
		}
	}
	return steps[len(steps)-1]
}

// StepDown returns the last preset smaller than cur, or the smallest preset.
func StepDown(steps []float64, cur float64) float64 {
	for i := len(steps) - 1; i >= 0; i-- {
		if steps[i] < cur {
			return steps[i]
		}
	}
	return steps[0]
}
