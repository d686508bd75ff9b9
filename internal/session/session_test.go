package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/verte-zerg/strafetrakk/internal/model"
	"github.com/verte-zerg/strafetrakk/internal/source"
	"github.com/verte-zerg/strafetrakk/internal/strafe"
)

type pushProducer struct {
	ch chan model.TimingEvent
}

func (p *pushProducer) Run(ctx context.Context, emit func(model.TimingEvent) bool) error {
	for {
		select {
		case ev, ok := <-p.ch:
			if !ok {
				return nil
			}
			if !emit(ev) {
				return ctx.Err()
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func floatPtr(f float64) *float64 { return &f }

func TestOpenDegradedOnSubscriptionFailure(t *testing.T) {
	s := Open(context.Background(), source.Failing{Err: errors.New("hook unavailable")}, model.DefaultStrafeConfig(), DefaultOptions())
	defer s.Close()
	if s.Degraded() == nil {
		t.Fatalf("expected degraded session")
	}
	if s.Events() != nil {
		t.Fatalf("expected nil event channel when degraded")
	}
	v := s.View()
	if !v.NoData || v.Count != 0 || v.HasLast {
		t.Fatalf("expected empty view, got %+v", v)
	}
}

func TestSessionReceivesAndFilters(t *testing.T) {
	p := &pushProducer{ch: make(chan model.TimingEvent)}
	feed := source.NewFeed("push", p)
	feed.Start(context.Background())
	defer feed.Stop()

	s := Open(context.Background(), feed, model.DefaultStrafeConfig(), Options{BinSize: 10, Range: 300})
	defer s.Close()
	if s.Degraded() != nil {
		t.Fatalf("unexpected degraded session: %v", s.Degraded())
	}

	go func() {
		for _, d := range []float64{-5, 0, 5, 310} {
			p.ch <- model.TimingEvent{Key: "A", DeltaMs: floatPtr(d)}
		}
		p.ch <- model.TimingEvent{Key: "W", DeltaMs: floatPtr(1)}
	}()
	for i := 0; i < 5; i++ {
		select {
		case ev := <-s.Events():
			s.Handle(ev)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	v := s.View()
	if v.Count != 3 {
		t.Fatalf("expected 3 accepted samples, got %d", v.Count)
	}
	if !v.HasLast || v.Last != 5 {
		t.Fatalf("expected last sample 5, got %v", v.Last)
	}
	if s.Rejected(strafe.RejectOverThreshold) != 1 || s.Rejected(strafe.RejectUnboundKey) != 1 {
		t.Fatalf("expected one threshold and one unbound reject")
	}
	if len(v.Bins) != 61 {
		t.Fatalf("expected 61 bins, got %d", len(v.Bins))
	}
	if v.Summary.Count != 3 {
		t.Fatalf("expected summary over 3 samples, got %d", v.Summary.Count)
	}
}

func TestReloadDoesNotDuplicateListeners(t *testing.T) {
	p := &pushProducer{ch: make(chan model.TimingEvent)}
	feed := source.NewFeed("push", p)
	feed.Start(context.Background())
	defer feed.Stop()

	cfg := model.DefaultStrafeConfig()
	s := Open(context.Background(), feed, cfg, DefaultOptions())
	for i := 0; i < 3; i++ {
		s.Close()
		cfg.ThresholdMs = float64(100 + i)
		s = Open(context.Background(), feed, cfg, DefaultOptions())
	}
	defer s.Close()
	if feed.Subscribers() != 1 {
		t.Fatalf("expected 1 listener after reloads, got %d", feed.Subscribers())
	}
	if s.Config().ThresholdMs != 102 {
		t.Fatalf("expected reloaded config, got %+v", s.Config())
	}
}

func TestClearAndOptions(t *testing.T) {
	s := Open(context.Background(), source.Failing{}, model.DefaultStrafeConfig(), DefaultOptions())
	defer s.Close()
	s.Handle(model.TimingEvent{Key: "D", DeltaMs: floatPtr(12)})
	s.Clear()
	s.Clear()
	if v := s.View(); v.Count != 0 || !v.NoData {
		t.Fatalf("expected empty view after clear, got %+v", v)
	}
	if err := s.SetOptions(Options{BinSize: 0, Range: 10}); err == nil {
		t.Fatalf("expected invalid options to be rejected")
	}
	if err := s.SetOptions(Options{BinSize: 5, Range: 50}); err != nil {
		t.Fatalf("SetOptions failed: %v", err)
	}
	s.Handle(model.TimingEvent{Key: "D", DeltaMs: floatPtr(12)})
	if v := s.View(); len(v.Bins) != 21 {
		t.Fatalf("expected 21 bins, got %d", len(v.Bins))
	}
	s.Close()
	s.Close()
}
