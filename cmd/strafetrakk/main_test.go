package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/strafetrakk/internal/binding"
	"github.com/verte-zerg/strafetrakk/internal/config"
	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/settings"
	"github.com/verte-zerg/strafetrakk/internal/source"
	"github.com/verte-zerg/strafetrakk/internal/stats"
	"github.com/verte-zerg/strafetrakk/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "strafetrakk.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestValidateTrackConfig(t *testing.T) {
	ok := model.TrackConfig{BinSize: 20, Range: 200}
	if err := validateTrackConfig(ok); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	cases := map[string]model.TrackConfig{
		"--in and --simulate": {InputPath: "x.jsonl", Simulate: true, BinSize: 20, Range: 200},
		"--bin-size":          {BinSize: 0, Range: 200},
		"--range":             {BinSize: 20, Range: -1},
		"--pace":              {BinSize: 20, Range: 200, Pace: -time.Second},
		"--replay":            {BinSize: 20, Range: 200, Simulate: true, Replay: true},
	}
	for want, cfg := range cases {
		err := validateTrackConfig(cfg)
		if err == nil || !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error mentioning %s, got %v", want, err)
		}
	}
}

func TestBuildStatsConfig(t *testing.T) {
	cfg, err := buildStatsConfig("2024-03-02", 5, 10, 100)
	if err != nil {
		t.Fatalf("buildStatsConfig failed: %v", err)
	}
	if cfg.Since == nil || cfg.Since.Day() != 2 || cfg.Last != 5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if _, err := buildStatsConfig("03/02/2024", 0, 10, 100); err == nil {
		t.Fatalf("expected invalid --since error")
	}
	if _, err := buildStatsConfig("", -1, 10, 100); err == nil {
		t.Fatalf("expected invalid --last error")
	}
}

func TestApplyConfigRespectsChangedFlags(t *testing.T) {
	var binSize float64
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Float64Var(&binSize, "bin-size", 20, "")
	fromFile := 5.0
	applyFloatConfig(cmd, "bin-size", &binSize, &fromFile)
	if binSize != 5 {
		t.Fatalf("expected file value 5, got %v", binSize)
	}
	if err := cmd.Flags().Set("bin-size", "40"); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	applyFloatConfig(cmd, "bin-size", &binSize, &fromFile)
	if binSize != 40 {
		t.Fatalf("expected flag value 40, got %v", binSize)
	}

	var pace time.Duration
	cmd.Flags().DurationVar(&pace, "pace", 0, "")
	bad := "soon"
	if err := applyDurationConfig(cmd, "pace", &pace, &bad); err == nil {
		t.Fatalf("expected invalid duration error")
	}
	good := "150ms"
	if err := applyDurationConfig(cmd, "pace", &pace, &good); err != nil || pace != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %v (err=%v)", pace, err)
	}
}

func TestKeyboardKeyName(t *testing.T) {
	if _, err := keyboardKeyName(0, keyboard.KeyEsc); !errors.Is(err, errCaptureCancelled) {
		t.Fatalf("expected cancel on esc, got %v", err)
	}
	if got, _ := keyboardKeyName('j', 0); binding.KeyName(got) != "J" {
		t.Fatalf("expected J, got %q", got)
	}
	if got, _ := keyboardKeyName(0, keyboard.KeySpace); binding.KeyName(got) != "Space" {
		t.Fatalf("expected Space, got %q", got)
	}
	if got, _ := keyboardKeyName(0, keyboard.KeyArrowLeft); binding.KeyName(got) != "Left" {
		t.Fatalf("expected Left, got %q", got)
	}
	if _, err := keyboardKeyName(0, keyboard.KeyF1); err == nil {
		t.Fatalf("expected unsupported key error")
	}
}

func TestBindKeySavesAndSignals(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	surface := settings.New(st, st)
	if err := surface.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	var out bytes.Buffer
	if err := bindKey(ctx, &out, surface, binding.SlotRight, "l"); err != nil {
		t.Fatalf("bindKey failed: %v", err)
	}
	cfg, err := st.LoadSettings(ctx)
	if err != nil || cfg.RightKey != "L" {
		t.Fatalf("expected persisted right key L, got %+v (err=%v)", cfg, err)
	}
	rev, err := st.SettingsRevision(ctx)
	if err != nil || rev != 1 {
		t.Fatalf("expected revision 1, got %d (err=%v)", rev, err)
	}
	if !strings.Contains(out.String(), "right=L") {
		t.Fatalf("unexpected output: %s", out.String())
	}

	if err := bindKey(ctx, &out, surface, binding.SlotLeft, "L"); !errors.Is(err, binding.ErrSameKeys) {
		t.Fatalf("expected ErrSameKeys, got %v", err)
	}
	if rev, _ := st.SettingsRevision(ctx); rev != 1 {
		t.Fatalf("expected blocked save not to signal, got revision %d", rev)
	}
}

func TestWriteSimulationIsSeeded(t *testing.T) {
	cfg := source.DefaultSimulateConfig()
	cfg.Count = 5
	cfg.Seed = 42
	var a, b bytes.Buffer
	if err := writeSimulation(context.Background(), &a, cfg); err != nil {
		t.Fatalf("writeSimulation failed: %v", err)
	}
	if err := writeSimulation(context.Background(), &b, cfg); err != nil {
		t.Fatalf("writeSimulation failed: %v", err)
	}
	if a.String() != b.String() {
		t.Fatalf("expected identical output for the same seed")
	}
	lines := strings.Split(strings.TrimSpace(a.String()), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 records, got %d", len(lines))
	}
	for i, line := range lines {
		rec, err := source.DecodeRecord([]byte(line))
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if rec.TimestampMs == nil {
			t.Fatalf("line %d: expected timestamp_ms", i)
		}
	}
}

func TestValidateSimulateConfig(t *testing.T) {
	cfg := source.DefaultSimulateConfig()
	if err := validateSimulateConfig(cfg); err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
	cfg.MaxGapMs = -1
	if err := validateSimulateConfig(cfg); err == nil {
		t.Fatalf("expected --max-gap error")
	}
	cfg = source.DefaultSimulateConfig()
	cfg.EarlyPct = 1.5
	if err := validateSimulateConfig(cfg); err == nil {
		t.Fatalf("expected --early error")
	}
}

func TestWritePlainReport(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		start := time.Date(2024, 3, 1+i, 12, 0, 0, 0, time.UTC)
		if _, err := st.InsertSession(ctx, model.SessionStats{
			StartedAt: start, EndedAt: start.Add(time.Minute),
			LeftKey: "A", RightKey: "D", ThresholdMs: 300, Source: "simulate",
		}, []float64{-10, 0, 12}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	report, err := stats.BuildReport(ctx, st, model.StatsConfig{BinSize: 20, Range: 200})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	var out bytes.Buffer
	if err := writePlainReport(&out, report); err != nil {
		t.Fatalf("writePlainReport failed: %v", err)
	}
	for _, want := range []string{"Summary", "Histogram", "Trend", "simulate"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in report:\n%s", want, out.String())
		}
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "hist.png")
	bins := []model.HistogramBin{{Center: -20, Count: 1, Color: "#b46464"}, {Center: 0, Count: 3, Color: "#c9b458"}, {Center: 20, Count: 2, Color: "#96b496"}}
	if err := writePNG(path, "test", bins); err != nil {
		t.Fatalf("writePNG failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read png: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Fatalf("expected PNG header")
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(path), "histogram-*.png"))
	if len(matches) != 0 {
		t.Fatalf("expected temp files to be removed, got %v", matches)
	}
}

func TestDefaultConfigTemplateParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := config.LoadConfig(path); err != nil {
		t.Fatalf("expected template to parse, got %v", err)
	}
}

func TestBuildProducerNames(t *testing.T) {
	if _, name := buildProducer(model.TrackConfig{Simulate: true}, source.DefaultSimulateConfig()); name != "simulate" {
		t.Fatalf("expected simulate, got %s", name)
	}
	if _, name := buildProducer(model.TrackConfig{InputPath: "-"}, source.DefaultSimulateConfig()); name != "stdin" {
		t.Fatalf("expected stdin, got %s", name)
	}
	p, name := buildProducer(model.TrackConfig{InputPath: "/tmp/run.jsonl", Pace: time.Millisecond}, source.DefaultSimulateConfig())
	if name != "run.jsonl" {
		t.Fatalf("expected run.jsonl, got %s", name)
	}
	if j, ok := p.(*source.JSONLines); !ok || j.Pace != time.Millisecond {
		t.Fatalf("expected paced JSONLines producer, got %#v", p)
	}
}
