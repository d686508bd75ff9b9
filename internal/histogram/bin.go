// Package histogram bins strafe timing samples into fixed-width buckets.
package histogram

import (
	"errors"
	"math"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

// MaxBins bounds the number of centers a single histogram may materialize.
const MaxBins = 10000

// epsilon absorbs float error when range is a multiple of binSize (0.3/0.1).
const epsilon = 1e-9

var (
	// ErrNoData is returned for an empty sample set so callers can show an
	// empty state instead of an all-zero chart.
	ErrNoData = errors.New("no samples")
	// ErrInvalidParams is returned for a non-positive bin size, a negative
	// range, or non-finite parameters.
	ErrInvalidParams = errors.New("invalid histogram parameters")
	// ErrTooManyBins is returned when range/binSize would exceed MaxBins.
	ErrTooManyBins = errors.New("too many histogram bins")
)

// Bin groups values into bins centered on every multiple of binSize within
// [-rng, rng]. Every center is present, including empty ones, in ascending
// order. A value belongs to the center floor(v/binSize+0.5)*binSize, so exact
// midpoints round up: with binSize 10, -5 lands on 0 and 5 lands on 10.
// Values whose center falls outside the range are not counted.
func Bin(values []float64, binSize, rng float64) ([]model.HistogramBin, error) {
	kMin, kMax, err := indexRange(binSize, rng)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, ErrNoData
	}

	bins := make([]model.HistogramBin, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		center := float64(k) * binSize
		bins = append(bins, model.HistogramBin{
			Center: center,
			Color:  BinColor(center, rng),
		})
	}
	for _, v := range values {
		idx, ok := nearestIndex(v, binSize)
		if !ok || idx < float64(kMin) || idx > float64(kMax) {
			continue
		}
		bins[int(idx)-kMin].Count++
	}
	return bins, nil
}

// Centers returns the ascending bin centers for the given parameters.
func Centers(binSize, rng float64) ([]float64, error) {
	kMin, kMax, err := indexRange(binSize, rng)
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, kMax-kMin+1)
	for k := kMin; k <= kMax; k++ {
		out = append(out, float64(k)*binSize)
	}
	return out, nil
}

// NearestCenter returns the center a value is assigned to.
func NearestCenter(v, binSize float64) float64 {
	return math.Floor(v/binSize+0.5) * binSize
}

// Total sums the counts of all bins.
func Total(bins []model.HistogramBin) int {
	total := 0
	for _, b := range bins {
		total += b.Count
	}
	return total
}

// MaxCount returns the largest bin count.
func MaxCount(bins []model.HistogramBin) int {
	maxCount := 0
	for _, b := range bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return maxCount
}

func indexRange(binSize, rng float64) (int, int, error) {
	if !isFinite(binSize) || !isFinite(rng) || binSize <= 0 || rng < 0 {
		return 0, 0, ErrInvalidParams
	}
	steps := math.Floor(rng/binSize + epsilon)
	if 2*steps+1 > MaxBins {
		return 0, 0, ErrTooManyBins
	}
	kMax := int(steps)
	return -kMax, kMax, nil
}

func nearestIndex(v, binSize float64) (float64, bool) {
	if !isFinite(v) {
		return 0, false
	}
	return math.Floor(v/binSize + 0.5), true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
