package source

import (
	"context"
	"math/rand"
	"time"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

// noiseKey is the unbound key used for cross-talk events.
const noiseKey = "W"

// DefaultSimulateConfig mirrors a relaxed A/D strafe drill.
func DefaultSimulateConfig() model.SimulateConfig {
	return model.SimulateConfig{
		Count:     50,
		MinGapMs:  0,
		MaxGapMs:  20,
		HoldMs:    200,
		PairGapMs: 400,
		LeftKey:   model.DefaultLeftKey,
		RightKey:  model.DefaultRightKey,
	}
}

// Step is one generated event and the simulated time it happens at.
type Step struct {
	Event model.TimingEvent
	AtMs  float64
}

// Simulator produces randomized strafe pairs.
type Simulator struct {
	cfg model.SimulateConfig
	rnd *rand.Rand
}

// NewSimulator returns a Simulator. A zero seed uses the current time.
func NewSimulator(cfg model.SimulateConfig) *Simulator {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{cfg: cfg, rnd: rand.New(rand.NewSource(seed))}
}

// Generate returns the events for cfg.Count strafe pairs. Each pair holds one
// key, releases it, and presses the other after a gap drawn uniformly from
// [MinGapMs, MaxGapMs]. With probability EarlyPct the second press overlaps
// the release instead and the delta is negative.
func (s *Simulator) Generate() []Step {
	cfg := s.cfg
	steps := make([]Step, 0, cfg.Count*2)
	now := 0.0
	var prev string
	for i := 0; i < cfg.Count; i++ {
		from, to := cfg.LeftKey, cfg.RightKey
		if s.rnd.Intn(2) == 1 {
			from, to = to, from
		}

		first := model.TimingEvent{Key: from}
		if prev != "" {
			pair := prev
			gap := cfg.PairGapMs
			first.PairKey = &pair
			first.DeltaMs = &gap
		}
		steps = append(steps, Step{Event: first, AtMs: now})

		gap := s.gap()
		delta := gap
		if cfg.EarlyPct > 0 && s.rnd.Float64() < cfg.EarlyPct {
			delta = -gap
		}
		release := now + cfg.HoldMs
		pressAt := release + delta
		if pressAt < now {
			pressAt = now
		}
		pair := from
		d := delta
		steps = append(steps, Step{
			Event: model.TimingEvent{Key: to, PairKey: &pair, DeltaMs: &d},
			AtMs:  pressAt,
		})

		if cfg.UnboundPct > 0 && s.rnd.Float64() < cfg.UnboundPct {
			noise := s.gap()
			steps = append(steps, Step{
				Event: model.TimingEvent{Key: noiseKey, DeltaMs: &noise},
				AtMs:  pressAt + noise,
			})
		}

		now = pressAt + cfg.HoldMs + cfg.PairGapMs
		prev = to
	}
	return steps
}

func (s *Simulator) gap() float64 {
	lo, hi := s.cfg.MinGapMs, s.cfg.MaxGapMs
	if hi <= lo {
		return lo
	}
	return float64(int(lo) + s.rnd.Intn(int(hi-lo)+1))
}

// Run emits the generated events, sleeping between them when Realtime is set.
func (s *Simulator) Run(ctx context.Context, emit func(model.TimingEvent) bool) error {
	prev := 0.0
	for _, step := range s.Generate() {
		if s.cfg.Realtime {
			wait := time.Duration((step.AtMs - prev) * float64(time.Millisecond))
			if !sleepCtx(ctx, wait) {
				return ctx.Err()
			}
			prev = step.AtMs
		}
		if !emit(step.Event) {
			return ctx.Err()
		}
	}
	return nil
}
