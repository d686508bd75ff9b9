// Package model defines shared data structures.
package model

import "time"

// Default persisted settings.
const (
	DefaultThresholdMs = 300
	DefaultLeftKey     = "A"
	DefaultRightKey    = "D"
)

// TimingEvent is one key transition reported by the input-capture collaborator.
// A nil PairKey or DeltaMs means the value was null on the wire.
type TimingEvent struct {
	Key     string
	PairKey *string
	DeltaMs *float64
}

// StrafeConfig holds the key bindings and noise threshold for a session.
type StrafeConfig struct {
	LeftKey     string
	RightKey    string
	ThresholdMs float64
}

// DefaultStrafeConfig returns the settings used when nothing valid is persisted.
func DefaultStrafeConfig() StrafeConfig {
	return StrafeConfig{
		LeftKey:     DefaultLeftKey,
		RightKey:    DefaultRightKey,
		ThresholdMs: DefaultThresholdMs,
	}
}

// HistogramBin is one bucket of the timing histogram.
type HistogramBin struct {
	Center float64
	Count  int
	Color  string
}

// TrackConfig defines live tracking options.
type TrackConfig struct {
	InputPath      string
	Simulate       bool
	Pace           time.Duration
	Replay         bool
	ReplayMaxSleep time.Duration
	BinSize        float64
	Range          float64
	Record         bool
}

// SimulateConfig drives the synthetic event generator.
type SimulateConfig struct {
	Count      int
	Seed       int64
	MinGapMs   float64
	MaxGapMs   float64
	EarlyPct   float64
	HoldMs     float64
	PairGapMs  float64
	LeftKey    string
	RightKey   string
	Realtime   bool
	UnboundPct float64
}

// StatsConfig defines filters for history output.
type StatsConfig struct {
	Since   *time.Time
	Last    int
	BinSize float64
	Range   float64
}

// SessionStats captures a finished tracking session for the archive.
type SessionStats struct {
	StartedAt   time.Time
	EndedAt     time.Time
	LeftKey     string
	RightKey    string
	ThresholdMs float64
	Source      string
}

// SessionAggregate summarizes an archived session for reporting.
type SessionAggregate struct {
	SessionID   int64
	StartedAt   time.Time
	EndedAt     time.Time
	LeftKey     string
	RightKey    string
	ThresholdMs float64
	Source      string
	Samples     int
	MeanAbsMs   float64
}
