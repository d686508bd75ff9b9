package strafe

import (
	"math"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

// Reason explains why an event was or was not accepted.
type Reason int

const (
	Accepted Reason = iota
	RejectUnboundKey
	RejectUnboundPair
	RejectNoDelta
	RejectOverThreshold
)

func (r Reason) String() string {
	switch r {
	case Accepted:
		return "accepted"
	case RejectUnboundKey:
		return "unbound key"
	case RejectUnboundPair:
		return "unbound pair key"
	case RejectNoDelta:
		return "no delta"
	case RejectOverThreshold:
		return "over threshold"
	default:
		return "unknown"
	}
}

// Classify runs the acceptance checks in order and reports the first failure.
func Classify(ev model.TimingEvent, cfg model.StrafeConfig) Reason {
	if !isBound(ev.Key, cfg) {
		return RejectUnboundKey
	}
	if ev.PairKey != nil && !isBound(*ev.PairKey, cfg) {
		return RejectUnboundPair
	}
	if ev.DeltaMs == nil {
		return RejectNoDelta
	}
	// Strict: a delta equal to the threshold is noise. NaN fails the comparison.
	if !(math.Abs(*ev.DeltaMs) < cfg.ThresholdMs) {
		return RejectOverThreshold
	}
	return Accepted
}

// Accepts reports whether the event yields a strafe sample under cfg.
func Accepts(ev model.TimingEvent, cfg model.StrafeConfig) bool {
	return Classify(ev, cfg) == Accepted
}

// Accept appends the event's delta to log when it passes every check.
func Accept(ev model.TimingEvent, cfg model.StrafeConfig, log *SampleLog) bool {
	if !Accepts(ev, cfg) {
		return false
	}
	log.Append(*ev.DeltaMs)
	return true
}

func isBound(key string, cfg model.StrafeConfig) bool {
	return key == cfg.LeftKey || key == cfg.RightKey
}
