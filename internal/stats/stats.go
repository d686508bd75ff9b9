// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

const sparkChars = " .:-=+*#%@"

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints the timing summary of a sample set.
func RenderSummary(w io.Writer, title string, sum Summary) error {
	if sum.Count == 0 {
		_, err := fmt.Fprintln(w, "No samples found.")
		return err
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	lines := []string{
		fmt.Sprintf("Samples: %d", sum.Count),
		fmt.Sprintf("Mean: %+.1f ms (sd %.1f)", sum.Mean, sum.StdDev),
		fmt.Sprintf("Mean |offset|: %.1f ms", sum.MeanAbs),
		fmt.Sprintf("|offset| p50/p90/p99: %.1f / %.1f / %.1f ms", sum.P50, sum.P90, sum.P99),
		fmt.Sprintf("Early: %.1f%%  Perfect: %.1f%%  Late: %.1f%%", sum.EarlyPct*100, sum.PerfectPct*100, sum.LatePct*100),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}

// SummaryLine formats a one-line summary for status bars.
func SummaryLine(sum Summary) string {
	if sum.Count == 0 {
		return "no samples"
	}
	return fmt.Sprintf("n=%d  mean %+.1fms  |p50| %.1fms  |p90| %.1fms  early %.0f%%  perfect %.0f%%  late %.0f%%",
		sum.Count, sum.Mean, sum.P50, sum.P90, sum.EarlyPct*100, sum.PerfectPct*100, sum.LatePct*100)
}

// RenderSessionTable prints archived sessions, oldest first.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Sessions"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			fmt.Sprintf("%d", s.SessionID),
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.LeftKey + "/" + s.RightKey,
			fmt.Sprintf("%.0f ms", s.ThresholdMs),
			fmt.Sprintf("%d", s.Samples),
			fmt.Sprintf("%.1f ms", s.MeanAbsMs),
			s.Source,
		})
	}
	for _, line := range layoutTable(sessionColumns, rows) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, ""); err != nil {
		return err
	}
	return nil
}
