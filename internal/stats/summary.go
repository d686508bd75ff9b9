package stats

import (
	"math"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// PerfectWindowMs is the half-width around zero counted as a perfect strafe.
	PerfectWindowMs = 0.5

	// summaryMaxUs bounds recorded |delta| values (one minute in microseconds).
	summaryMaxUs   = 60_000_000
	summarySigFigs = 3
)

// Summary describes a sample set.
type Summary struct {
	Count      int
	Mean       float64
	StdDev     float64
	MeanAbs    float64
	Min        float64
	Max        float64
	EarlyPct   float64
	PerfectPct float64
	LatePct    float64
	// Percentiles of |delta| in milliseconds.
	P50 float64
	P90 float64
	P99 float64
}

// Summarize computes aggregate statistics for values. Percentiles of the
// absolute offset come from an HDR histogram at microsecond resolution.
func Summarize(values []float64) Summary {
	var s Summary
	if len(values) == 0 {
		return s
	}
	h := hdrhistogram.New(1, summaryMaxUs, summarySigFigs)
	s.Min = math.Inf(1)
	s.Max = math.Inf(-1)
	var sum, sumAbs float64
	early, perfect, late := 0, 0, 0
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s.Count++
		sum += v
		abs := math.Abs(v)
		sumAbs += abs
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		switch {
		case abs < PerfectWindowMs:
			perfect++
		case v < 0:
			early++
		default:
			late++
		}
		us := int64(math.Round(abs * 1000))
		if us > summaryMaxUs {
			us = summaryMaxUs
		}
		if err := h.RecordValue(us); err != nil {
			// Clamped above; nothing else can be out of range.
			_ = err
		}
	}
	if s.Count == 0 {
		return Summary{}
	}
	n := float64(s.Count)
	s.Mean = sum / n
	s.MeanAbs = sumAbs / n
	var sq float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		d := v - s.Mean
		sq += d * d
	}
	s.StdDev = math.Sqrt(sq / n)
	s.EarlyPct = float64(early) / n
	s.PerfectPct = float64(perfect) / n
	s.LatePct = float64(late) / n
	s.P50 = float64(h.ValueAtQuantile(50)) / 1000
	s.P90 = float64(h.ValueAtQuantile(90)) / 1000
	s.P99 = float64(h.ValueAtQuantile(99)) / 1000
	return s
}
