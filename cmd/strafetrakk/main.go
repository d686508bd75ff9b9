// Package main provides the CLI entrypoint for strafetrakk.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/strafetrakk/internal/binding"
	"github.com/verte-zerg/strafetrakk/internal/config"
	"github.com/verte-zerg/strafetrakk/internal/logging"
	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/session"
	"github.com/verte-zerg/strafetrakk/internal/settings"
	"github.com/verte-zerg/strafetrakk/internal/settingsui"
	"github.com/verte-zerg/strafetrakk/internal/source"
	"github.com/verte-zerg/strafetrakk/internal/stats"
	"github.com/verte-zerg/strafetrakk/internal/statsui"
	"github.com/verte-zerg/strafetrakk/internal/store"
	"github.com/verte-zerg/strafetrakk/internal/tui"
)

const (
	defaultBinSize        = session.DefaultBinSize
	defaultRange          = session.DefaultRange
	defaultReplayMaxSleep = 2 * time.Second
	defaultPlotHeight     = 12
)

var (
	debugLog bool
	closeLog = func() error { return nil }

	trackIn             string
	trackSimulate       bool
	trackPace           time.Duration
	trackReplay         bool
	trackReplayMaxSleep time.Duration
	trackBinSize        float64
	trackRange          float64
	trackRecord         bool

	statsSince   string
	statsLast    int
	statsBinSize float64
	statsRange   float64
	statsPlain   bool

	exportOut     string
	exportSince   string
	exportLast    int
	exportBinSize float64
	exportRange   float64

	simCount    int
	simSeed     int64
	simEarly    float64
	simMinGap   float64
	simMaxGap   float64
	simUnbound  float64
	simRealtime bool
)

func main() {
	rootCmd := newRootCmd()
	err := rootCmd.Execute()
	if cerr := closeLog(); cerr != nil {
		logErrf("failed to close log: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "strafetrakk",
		Short:             "Counter-strafe timing tracker",
		SilenceUsage:      true,
		SilenceErrors:     false,
		PersistentPreRunE: initLogging,
		RunE:              runTrackCmd,
	}

	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write debug diagnostics to the log file")

	rootCmd.Flags().StringVar(&trackIn, "in", "", "read wire-format events from a file (- for stdin)")
	rootCmd.Flags().BoolVar(&trackSimulate, "simulate", false, "track synthetic strafe events")
	rootCmd.Flags().DurationVar(&trackPace, "pace", 0, "delay between input records")
	rootCmd.Flags().BoolVar(&trackReplay, "replay", false, "replay input using timestamp_ms gaps")
	rootCmd.Flags().DurationVar(&trackReplayMaxSleep, "replay-max-sleep", defaultReplayMaxSleep, "cap for a single replay gap")
	rootCmd.Flags().Float64Var(&trackBinSize, "bin-size", defaultBinSize, "histogram bin size in ms")
	rootCmd.Flags().Float64Var(&trackRange, "range", defaultRange, "histogram range in ms (both sides of zero)")
	rootCmd.Flags().BoolVar(&trackRecord, "record", false, "archive the session on reload and exit")

	rootCmd.AddCommand(newSettingsCmd())
	rootCmd.AddCommand(newBindCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func initLogging(_ *cobra.Command, _ []string) error {
	closeFn, err := logging.Init(config.DefaultLogPath(), debugLog)
	if err != nil {
		logErrf("diagnostic logging disabled: %v\n", err)
		logging.Discard()
		return nil
	}
	closeLog = closeFn
	return nil
}

func runTrackCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "in", &trackIn, fileCfg.Track.Input)
	applyBoolConfig(cmd, "simulate", &trackSimulate, fileCfg.Track.Simulate)
	if err := applyDurationConfig(cmd, "pace", &trackPace, fileCfg.Track.Pace); err != nil {
		return err
	}
	applyBoolConfig(cmd, "replay", &trackReplay, fileCfg.Track.Replay)
	if err := applyDurationConfig(cmd, "replay-max-sleep", &trackReplayMaxSleep, fileCfg.Track.ReplayMaxSleep); err != nil {
		return err
	}
	applyFloatConfig(cmd, "bin-size", &trackBinSize, fileCfg.Histogram.BinSize)
	applyFloatConfig(cmd, "range", &trackRange, fileCfg.Histogram.Range)
	applyBoolConfig(cmd, "record", &trackRecord, fileCfg.Track.Record)

	cfg := model.TrackConfig{
		InputPath:      trackIn,
		Simulate:       trackSimulate,
		Pace:           trackPace,
		Replay:         trackReplay,
		ReplayMaxSleep: trackReplayMaxSleep,
		BinSize:        trackBinSize,
		Range:          trackRange,
		Record:         trackRecord,
	}
	if err := validateTrackConfig(cfg); err != nil {
		return err
	}

	simCfg := simulateConfigFromFile(fileCfg.Simulate)
	simCfg.Realtime = true
	producer, name := buildProducer(cfg, simCfg)
	slog.Info("tracking started", "source", name, "bin_size", cfg.BinSize, "range", cfg.Range)

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ready := make(chan struct{})
	feed := source.NewFeed(name, source.Gate(producer, ready))
	feed.Start(ctx)
	defer feed.Stop()

	m := tui.NewModel(ctx, feed, name, st, cfg)
	close(ready)
	defer m.Close()

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if !cfg.Simulate && (cfg.InputPath == "" || cfg.InputPath == "-") {
		// Events arrive on stdin, so keys come from the controlling terminal.
		opts = append(opts, tea.WithInputTTY())
	}
	program := tea.NewProgram(m, opts...)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	if err := feed.Err(); err != nil {
		slog.Warn("event source failed", "source", name, "err", err)
	}
	return nil
}

func buildProducer(cfg model.TrackConfig, simCfg model.SimulateConfig) (source.Producer, string) {
	if cfg.Simulate {
		return source.NewSimulator(simCfg), "simulate"
	}
	name := cfg.InputPath
	if name == "" || name == "-" {
		name = "stdin"
	} else {
		name = filepath.Base(name)
	}
	return &source.JSONLines{
		Path:           cfg.InputPath,
		Pace:           cfg.Pace,
		Replay:         cfg.Replay,
		ReplayMaxSleep: cfg.ReplayMaxSleep,
	}, name
}

func newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Edit strafe key bindings and threshold",
		Args:  cobra.NoArgs,
		RunE:  runSettingsCmd,
	}
}

func runSettingsCmd(_ *cobra.Command, _ []string) error {
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	m := settingsui.NewModel(context.Background(), settings.New(st, st))
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run settings TUI: %w", err)
	}
	return nil
}

func newBindCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "bind left|right",
		Short:     "Capture one key press for a strafe slot",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"left", "right"},
		RunE:      runBindCmd,
	}
}

func runBindCmd(cmd *cobra.Command, args []string) error {
	slot, ok := binding.ParseSlot(args[0])
	if !ok {
		return fmt.Errorf("slot must be left or right, got %q", args[0])
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	ctx := context.Background()
	surface := settings.New(st, st)
	if err := surface.Load(ctx); err != nil {
		logErrf("%v; starting from defaults\n", err)
	}
	logErrf("Press the key for the %s strafe slot (esc to cancel)\n", slot)
	raw, err := captureKey()
	if err != nil {
		return err
	}
	return bindKey(ctx, cmd.OutOrStdout(), surface, slot, raw)
}

func bindKey(ctx context.Context, w io.Writer, surface *settings.Surface, slot binding.Slot, raw string) error {
	surface.Arm(slot)
	if !surface.Observe(raw) {
		return fmt.Errorf("key %q cannot be bound", raw)
	}
	if err := surface.Save(ctx); err != nil {
		return err
	}
	cfg := surface.Saved()
	if _, err := fmt.Fprintf(w, "Bound %s key: left=%s right=%s threshold=%gms\n", slot, cfg.LeftKey, cfg.RightKey, cfg.ThresholdMs); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show archived sessions",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&statsSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&statsLast, "last", 0, "limit to last N sessions")
	cmd.Flags().Float64Var(&statsBinSize, "bin-size", defaultBinSize, "histogram bin size in ms")
	cmd.Flags().Float64Var(&statsRange, "range", defaultRange, "histogram range in ms")
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "bin-size", &statsBinSize, fileCfg.Histogram.BinSize)
	applyFloatConfig(cmd, "range", &statsRange, fileCfg.Histogram.Range)

	cfg, err := buildStatsConfig(statsSince, statsLast, statsBinSize, statsRange)
	if err != nil {
		return err
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	if statsPlain {
		report, err := stats.BuildReport(context.Background(), st, cfg)
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		return writePlainReport(cmd.OutOrStdout(), report)
	}

	m := statsui.NewModel(st, cfg)
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func writePlainReport(w io.Writer, report stats.Report) error {
	if err := stats.RenderSummary(w, "Summary", report.Summary); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderHistogram(w, report.Bins, stats.HistogramOptions{Title: "Histogram", Height: defaultPlotHeight}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderSessionTable(w, report.Sessions); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderTrend(w, report.Sessions, 0, defaultPlotHeight); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a PNG histogram of archived samples",
		Args:  cobra.NoArgs,
		RunE:  runExportCmd,
	}
	cmd.Flags().StringVar(&exportOut, "out", "", "output PNG path (default: data dir)")
	cmd.Flags().StringVar(&exportSince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&exportLast, "last", 0, "limit to last N sessions")
	cmd.Flags().Float64Var(&exportBinSize, "bin-size", defaultBinSize, "histogram bin size in ms")
	cmd.Flags().Float64Var(&exportRange, "range", defaultRange, "histogram range in ms")
	return cmd
}

func runExportCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "bin-size", &exportBinSize, fileCfg.Histogram.BinSize)
	applyFloatConfig(cmd, "range", &exportRange, fileCfg.Histogram.Range)

	cfg, err := buildStatsConfig(exportSince, exportLast, exportBinSize, exportRange)
	if err != nil {
		return err
	}
	out := exportOut
	if out == "" {
		out = config.DefaultExportPath()
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	report, err := stats.BuildReport(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}
	if len(report.Bins) == 0 {
		return fmt.Errorf("no archived samples to export (track with --record or press s in the tracker)")
	}
	title := fmt.Sprintf("Counter-strafe timing: %d samples, %d sessions", report.Summary.Count, len(report.Sessions))
	if err := writePNG(out, title, report.Bins); err != nil {
		return fmt.Errorf("failed to export %s: %w", out, err)
	}
	logErrf("Wrote %s\n", out)
	return nil
}

func writePNG(path, title string, bins []model.HistogramBin) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(path), "histogram-*.png")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	writer := bufio.NewWriter(tmpFile)
	if err := stats.ExportPNG(writer, title, bins); err != nil {
		return err
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close image: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	return nil
}

func newSimulateCmd() *cobra.Command {
	def := source.DefaultSimulateConfig()
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write synthetic wire-format events to stdout",
		Args:  cobra.NoArgs,
		RunE:  runSimulateCmd,
	}
	cmd.Flags().IntVar(&simCount, "count", def.Count, "number of strafe pairs")
	cmd.Flags().Int64Var(&simSeed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().Float64Var(&simEarly, "early", def.EarlyPct, "probability of an early overlap (0-1)")
	cmd.Flags().Float64Var(&simMinGap, "min-gap", def.MinGapMs, "minimum transition gap in ms")
	cmd.Flags().Float64Var(&simMaxGap, "max-gap", def.MaxGapMs, "maximum transition gap in ms")
	cmd.Flags().Float64Var(&simUnbound, "unbound", def.UnboundPct, "probability of an unbound key event (0-1)")
	cmd.Flags().BoolVar(&simRealtime, "realtime", false, "emit events at simulated speed")
	return cmd
}

func runSimulateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	file := fileCfg.Simulate
	applyIntConfig(cmd, "count", &simCount, file.Count)
	applyInt64Config(cmd, "seed", &simSeed, file.Seed)
	applyFloatConfig(cmd, "early", &simEarly, file.EarlyPct)
	applyFloatConfig(cmd, "min-gap", &simMinGap, file.MinGapMs)
	applyFloatConfig(cmd, "max-gap", &simMaxGap, file.MaxGapMs)
	applyFloatConfig(cmd, "unbound", &simUnbound, file.Unbound)
	applyBoolConfig(cmd, "realtime", &simRealtime, file.Realtime)

	cfg := simulateConfigFromFile(file)
	cfg.Count = simCount
	cfg.Seed = simSeed
	cfg.EarlyPct = simEarly
	cfg.MinGapMs = simMinGap
	cfg.MaxGapMs = simMaxGap
	cfg.UnboundPct = simUnbound
	cfg.Realtime = simRealtime
	if err := validateSimulateConfig(cfg); err != nil {
		return err
	}
	return writeSimulation(context.Background(), cmd.OutOrStdout(), cfg)
}

func writeSimulation(ctx context.Context, w io.Writer, cfg model.SimulateConfig) error {
	sim := source.NewSimulator(cfg)
	if cfg.Realtime {
		var writeErr error
		err := sim.Run(ctx, func(ev model.TimingEvent) bool {
			writeErr = source.WriteRecord(w, ev, nil)
			return writeErr == nil
		})
		if writeErr != nil {
			return writeErr
		}
		return err
	}
	out := bufio.NewWriter(w)
	for _, step := range sim.Generate() {
		at := step.AtMs
		if err := source.WriteRecord(out, step.Event, &at); err != nil {
			return err
		}
	}
	if err := out.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func simulateConfigFromFile(file config.SimulateConfig) model.SimulateConfig {
	cfg := source.DefaultSimulateConfig()
	if file.Count != nil {
		cfg.Count = *file.Count
	}
	if file.Seed != nil {
		cfg.Seed = *file.Seed
	}
	if file.MinGapMs != nil {
		cfg.MinGapMs = *file.MinGapMs
	}
	if file.MaxGapMs != nil {
		cfg.MaxGapMs = *file.MaxGapMs
	}
	if file.EarlyPct != nil {
		cfg.EarlyPct = *file.EarlyPct
	}
	if file.HoldMs != nil {
		cfg.HoldMs = *file.HoldMs
	}
	if file.PairGapMs != nil {
		cfg.PairGapMs = *file.PairGapMs
	}
	if file.Unbound != nil {
		cfg.UnboundPct = *file.Unbound
	}
	if file.Realtime != nil {
		cfg.Realtime = *file.Realtime
	}
	return cfg
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyInt64Config(cmd *cobra.Command, name string, target, value *int64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *string) error {
	if value == nil {
		return nil
	}
	if cmd.Flags().Changed(name) {
		return nil
	}
	d, err := time.ParseDuration(*value)
	if err != nil {
		return fmt.Errorf("invalid %s in config: %w", name, err)
	}
	*target = d
	return nil
}

func defaultConfigTemplate() string {
	def := source.DefaultSimulateConfig()
	return fmt.Sprintf(`# strafetrakk configuration
# Uncomment a value to enable it. CLI flags override config values.
# Key bindings and the threshold live in the database: use "strafetrakk settings".

[track]
# in = "-"                  # Wire-format event file, "-" for stdin
# simulate = false          # Track synthetic events instead of input
# pace = "0s"               # Delay between input records
# replay = false            # Replay input using timestamp_ms gaps
# replay-max-sleep = %q   # Cap for a single replay gap
# record = false            # Archive sessions on reload and exit

[histogram]
# bin-size = %d             # Bin size in ms
# range = %d               # Range in ms on both sides of zero

[simulate]
# count = %d                # Strafe pairs per run
# seed = 0                  # Random seed (0 uses the clock)
# min-gap = %g               # Minimum transition gap in ms
# max-gap = %g              # Maximum transition gap in ms
# early = %g                 # Probability of an early overlap (0-1)
# hold = %g                # Key hold time in ms
# pair-gap = %g            # Pause between pairs in ms
# unbound = %g               # Probability of an unbound key event (0-1)
# realtime = false          # Emit events at simulated speed
`,
		defaultReplayMaxSleep.String(),
		defaultBinSize,
		defaultRange,
		def.Count,
		def.MinGapMs,
		def.MaxGapMs,
		def.EarlyPct,
		def.HoldMs,
		def.PairGapMs,
		def.UnboundPct,
	)
}

func validateTrackConfig(cfg model.TrackConfig) error {
	if cfg.Simulate && cfg.InputPath != "" {
		return fmt.Errorf("--in and --simulate are mutually exclusive")
	}
	if err := validateBinning(cfg.BinSize, cfg.Range); err != nil {
		return err
	}
	if cfg.Pace < 0 {
		return fmt.Errorf("--pace must be >= 0")
	}
	if cfg.ReplayMaxSleep < 0 {
		return fmt.Errorf("--replay-max-sleep must be >= 0")
	}
	if cfg.Replay && cfg.Simulate {
		return fmt.Errorf("--replay needs --in")
	}
	return nil
}

func validateBinning(binSize, rng float64) error {
	if !(binSize > 0) || math.IsInf(binSize, 0) {
		return fmt.Errorf("--bin-size must be > 0")
	}
	if !(rng > 0) || math.IsInf(rng, 0) {
		return fmt.Errorf("--range must be > 0")
	}
	return nil
}

func validateSimulateConfig(cfg model.SimulateConfig) error {
	if cfg.Count <= 0 {
		return fmt.Errorf("--count must be > 0")
	}
	if cfg.EarlyPct < 0 || cfg.EarlyPct > 1 {
		return fmt.Errorf("--early must be between 0 and 1")
	}
	if cfg.UnboundPct < 0 || cfg.UnboundPct > 1 {
		return fmt.Errorf("--unbound must be between 0 and 1")
	}
	if cfg.MinGapMs < 0 {
		return fmt.Errorf("--min-gap must be >= 0")
	}
	if cfg.MaxGapMs < cfg.MinGapMs {
		return fmt.Errorf("--max-gap must be >= --min-gap")
	}
	if cfg.HoldMs < 0 || cfg.PairGapMs < 0 {
		return fmt.Errorf("hold and pair-gap must be >= 0")
	}
	return nil
}

func buildStatsConfig(since string, last int, binSize, rng float64) (model.StatsConfig, error) {
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.ParseInLocation("2006-01-02", since, time.Local)
		if err != nil {
			return model.StatsConfig{}, fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if last < 0 {
		return model.StatsConfig{}, fmt.Errorf("--last must be >= 0")
	}
	if err := validateBinning(binSize, rng); err != nil {
		return model.StatsConfig{}, err
	}
	return model.StatsConfig{
		Since:   sinceTime,
		Last:    last,
		BinSize: binSize,
		Range:   rng,
	}, nil
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
