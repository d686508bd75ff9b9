// Package session ties one event subscription to one sample log and its
// histogram view. A config change is applied by closing the session and
// opening a new one.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/strafetrakk/internal/histogram"
	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/source"
	"github.com/verte-zerg/strafetrakk/internal/stats"
	"github.com/verte-zerg/strafetrakk/internal/strafe"
)

// Default histogram parameters.
const (
	DefaultBinSize = 20
	DefaultRange   = 200
)

// Options configures the histogram view of a session.
type Options struct {
	BinSize float64
	Range   float64
}

// DefaultOptions returns the default histogram parameters.
func DefaultOptions() Options {
	return Options{BinSize: DefaultBinSize, Range: DefaultRange}
}

// View is the presentation snapshot of a session.
type View struct {
	Bins    []model.HistogramBin
	NoData  bool
	Err     error
	Last    float64
	HasLast bool
	Count   int
	Summary stats.Summary
	BinSize float64
	Range   float64
}

// Session owns the sample log for one run of a StrafeConfig.
type Session struct {
	cfg  model.StrafeConfig
	opts Options

	sub      *source.Subscription
	degraded error

	log    *strafe.SampleLog
	binner histogram.Binner

	summaryVersion uint64
	summaryValid   bool
	summary        stats.Summary

	rejected  map[strafe.Reason]int
	startedAt time.Time
	closeOnce sync.Once
}

// Open subscribes to src and returns a session. A failed subscription does
// not fail Open: the session is degraded and its log never updates.
func Open(ctx context.Context, src source.Source, cfg model.StrafeConfig, opts Options) *Session {
	if opts.BinSize <= 0 || opts.Range < 0 {
		opts = DefaultOptions()
	}
	s := &Session{
		cfg:       cfg,
		opts:      opts,
		log:       strafe.NewSampleLog(),
		rejected:  map[strafe.Reason]int{},
		startedAt: time.Now(),
	}
	if src == nil {
		s.degraded = errors.New("no event source")
		return s
	}
	sub, err := src.Subscribe(ctx)
	if err != nil {
		s.degraded = fmt.Errorf("failed to subscribe: %w", err)
		slog.Warn("session degraded", "err", err)
		return s
	}
	s.sub = sub
	slog.Debug("session opened", "left", cfg.LeftKey, "right", cfg.RightKey, "threshold_ms", cfg.ThresholdMs)
	return s
}

// Events returns the subscription channel, or nil when degraded. Receiving
// from a nil channel blocks forever, which is the intended idle behavior.
func (s *Session) Events() <-chan model.TimingEvent {
	if s.sub == nil {
		return nil
	}
	return s.sub.Events()
}

// Done is closed when the session is closed. It is nil when degraded.
func (s *Session) Done() <-chan struct{} {
	if s.sub == nil {
		return nil
	}
	return s.sub.Done()
}

// Degraded returns the subscription failure, if any.
func (s *Session) Degraded() error {
	return s.degraded
}

// Config returns the bindings the session was opened with.
func (s *Session) Config() model.StrafeConfig {
	return s.cfg
}

// Options returns the current histogram parameters.
func (s *Session) Options() Options {
	return s.opts
}

// StartedAt returns the time the session was opened.
func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Handle filters one event into the log.
func (s *Session) Handle(ev model.TimingEvent) bool {
	reason := strafe.Classify(ev, s.cfg)
	if reason != strafe.Accepted {
		s.rejected[reason]++
		return false
	}
	s.log.Append(*ev.DeltaMs)
	return true
}

// Rejected returns how many events were dropped for reason.
func (s *Session) Rejected(reason strafe.Reason) int {
	return s.rejected[reason]
}

// Clear empties the sample log. Bindings are untouched.
func (s *Session) Clear() {
	s.log.Clear()
}

// Samples returns a copy of the accepted samples in arrival order.
func (s *Session) Samples() []float64 {
	return s.log.Values()
}

// SetOptions changes the histogram parameters after validating them.
func (s *Session) SetOptions(opts Options) error {
	if _, err := histogram.Centers(opts.BinSize, opts.Range); err != nil {
		return err
	}
	s.opts = opts
	return nil
}

// View returns the current presentation snapshot.
func (s *Session) View() View {
	v := View{
		Count:   s.log.Len(),
		BinSize: s.opts.BinSize,
		Range:   s.opts.Range,
	}
	v.Last, v.HasLast = s.log.Last()
	bins, err := s.binner.Bins(s.log, s.opts.BinSize, s.opts.Range)
	switch {
	case errors.Is(err, histogram.ErrNoData):
		v.NoData = true
	case err != nil:
		v.Err = err
	default:
		v.Bins = bins
	}
	if !s.summaryValid || s.summaryVersion != s.log.Version() {
		s.summary = stats.Summarize(s.log.View())
		s.summaryVersion = s.log.Version()
		s.summaryValid = true
	}
	v.Summary = s.summary
	return v
}

// Close releases the subscription. It is safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		if s.sub != nil {
			s.sub.Close()
		}
		slog.Debug("session closed", "samples", s.log.Len())
	})
}
