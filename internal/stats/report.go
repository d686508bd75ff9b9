package stats

import (
	"context"
	"errors"

	"github.com/verte-zerg/strafetrakk/internal/histogram"
	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Samples  []float64
	Summary  Summary
	// Bins is nil when there are no samples.
	Bins []model.HistogramBin
}

// BuildReport loads archived sessions and their samples for a filter.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	samples, err := st.ListSamples(ctx, sessionIDs(sessions))
	if err != nil {
		return Report{}, err
	}
	report := Report{
		Sessions: sessions,
		Samples:  samples,
		Summary:  Summarize(samples),
	}
	bins, err := BinReport(report, cfg.BinSize, cfg.Range)
	if err != nil {
		return Report{}, err
	}
	report.Bins = bins
	return report, nil
}

// BinReport bins the report samples. It returns nil bins when there are no
// samples.
func BinReport(report Report, binSize, rng float64) ([]model.HistogramBin, error) {
	bins, err := histogram.Bin(report.Samples, binSize, rng)
	if errors.Is(err, histogram.ErrNoData) {
		return nil, nil
	}
	return bins, err
}

func sessionIDs(sessions []model.SessionAggregate) []int64 {
	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.SessionID
	}
	return ids
}
