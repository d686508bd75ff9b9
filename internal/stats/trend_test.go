package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

func TestTrendSeriesSmooths(t *testing.T) {
	sessions := []model.SessionAggregate{{MeanAbsMs: 30}, {MeanAbsMs: 10}, {MeanAbsMs: 20}}
	got := TrendSeries(sessions, 2)
	want := []float64{30, 20, 15}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("point %d: expected %v, got %v", i, want[i], got[i])
		}
	}
}

func TestRenderTrend(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTrend(&buf, []model.SessionAggregate{{MeanAbsMs: 1}}, 40, 5); err != nil {
		t.Fatalf("RenderTrend failed: %v", err)
	}
	if !strings.Contains(buf.String(), "at least two sessions") {
		t.Fatalf("expected not-enough-data message, got %q", buf.String())
	}

	buf.Reset()
	sessions := []model.SessionAggregate{{MeanAbsMs: 40}, {MeanAbsMs: 25}, {MeanAbsMs: 12}, {MeanAbsMs: 8}}
	if err := RenderTrend(&buf, sessions, 40, 5); err != nil {
		t.Fatalf("RenderTrend failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "over 4 sessions") {
		t.Fatalf("expected trend caption, got %q", out)
	}
	if len(strings.Split(strings.TrimSpace(out), "\n")) < 4 {
		t.Fatalf("expected a multi-line plot, got %q", out)
	}
}
