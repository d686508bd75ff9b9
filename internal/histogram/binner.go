package histogram

import "github.com/verte-zerg/strafetrakk/internal/model"

// Samples is a versioned sample set. The version must change whenever the
// contents change.
type Samples interface {
	Version() uint64
	View() []float64
}

// Binner caches the last histogram and recomputes it from scratch whenever
// the sample version, bin size, or range differs from the cached inputs.
type Binner struct {
	valid   bool
	version uint64
	binSize float64
	rng     float64

	bins       []model.HistogramBin
	err        error
	recomputes int
}

// Bins returns the histogram for the current samples and parameters.
func (b *Binner) Bins(s Samples, binSize, rng float64) ([]model.HistogramBin, error) {
	version := s.Version()
	if b.valid && b.version == version && b.binSize == binSize && b.rng == rng {
		return b.bins, b.err
	}
	b.bins, b.err = Bin(s.View(), binSize, rng)
	b.valid = true
	b.version = version
	b.binSize = binSize
	b.rng = rng
	b.recomputes++
	return b.bins, b.err
}

// Invalidate drops the cached histogram.
func (b *Binner) Invalidate() {
	b.valid = false
}

// Recomputes counts how many times the histogram was rebuilt.
func (b *Binner) Recomputes() int {
	return b.recomputes
}
