package source

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

type chanProducer struct {
	ch chan model.TimingEvent
}

func (p *chanProducer) Run(ctx context.Context, emit func(model.TimingEvent) bool) error {
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

type errProducer struct{ err error }

func (p errProducer) Run(context.Context, func(model.TimingEvent) bool) error {
	return p.err
}

func recv(t *testing.T, ch <-chan model.TimingEvent) (model.TimingEvent, bool) {
	t.Helper()
	select {
	case ev, ok := <-ch:
		return ev, ok
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return model.TimingEvent{}, false
}

func TestFeedDeliversInOrder(t *testing.T) {
	p := &chanProducer{ch: make(chan model.TimingEvent)}
	feed := NewFeed("test", p)
	feed.Start(context.Background())
	defer feed.Stop()

	sub, err := feed.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()

	for _, k := range []string{"A", "D", "A"} {
		p.ch <- model.TimingEvent{Key: k}
	}
	for _, want := range []string{"A", "D", "A"} {
		ev, ok := recv(t, sub.Events())
		if !ok || ev.Key != want {
			t.Fatalf("expected %s, got %+v (ok=%v)", want, ev, ok)
		}
	}
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	p := &chanProducer{ch: make(chan model.TimingEvent)}
	feed := NewFeed("test", p)
	feed.Start(context.Background())
	defer feed.Stop()

	sub, err := feed.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if feed.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", feed.Subscribers())
	}
	sub.Close()
	sub.Close()
	if feed.Subscribers() != 0 {
		t.Fatalf("expected no subscribers after close, got %d", feed.Subscribers())
	}
	if _, ok := <-sub.Events(); ok {
		t.Fatalf("expected closed event channel")
	}

	// A new listener does not see duplicates from the old one.
	next, err := feed.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer next.Close()
	p.ch <- model.TimingEvent{Key: "D"}
	if ev, _ := recv(t, next.Events()); ev.Key != "D" {
		t.Fatalf("expected D, got %+v", ev)
	}
	if feed.Subscribers() != 1 {
		t.Fatalf("expected exactly 1 subscriber, got %d", feed.Subscribers())
	}
}

func TestSubscriptionClosesWithContext(t *testing.T) {
	p := &chanProducer{ch: make(chan model.TimingEvent)}
	feed := NewFeed("test", p)
	feed.Start(context.Background())
	defer feed.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected subscription to close on cancel")
	}
}

func TestFeedEndClosesSubscriptions(t *testing.T) {
	p := &chanProducer{ch: make(chan model.TimingEvent)}
	feed := NewFeed("test", p)
	feed.Start(context.Background())
	sub, err := feed.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()
	close(p.ch)
	if _, ok := recv(t, sub.Events()); ok {
		t.Fatalf("expected closed channel after producer ends")
	}
	<-feed.Done()
	if err := sub.Err(); err != nil {
		t.Fatalf("expected clean end, got %v", err)
	}
}

func TestFailedFeedRejectsSubscribers(t *testing.T) {
	boom := errors.New("boom")
	feed := NewFeed("broken", errProducer{err: boom})
	if _, err := feed.Subscribe(context.Background()); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}
	feed.Start(context.Background())
	<-feed.Done()
	_, err := feed.Subscribe(context.Background())
	if !errors.Is(err, ErrFeedStopped) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped feed error, got %v", err)
	}
}

func TestFailingSource(t *testing.T) {
	boom := errors.New("unreachable")
	if _, err := (Failing{Err: boom}).Subscribe(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
}

func TestGateHoldsProducerUntilReady(t *testing.T) {
	ready := make(chan struct{})
	events := []model.TimingEvent{{Key: "A"}, {Key: "D"}}
	p := &JSONLines{In: strings.NewReader(`{"key":"A"}` + "\n" + `{"key":"D"}` + "\n")}
	feed := NewFeed("gated", Gate(p, ready))
	feed.Start(context.Background())
	defer feed.Stop()

	sub, err := feed.Subscribe(context.Background())
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	defer sub.Close()
	close(ready)
	for _, want := range events {
		ev, ok := recv(t, sub.Events())
		if !ok || ev.Key != want.Key {
			t.Fatalf("expected %s, got %+v (ok=%v)", want.Key, ev, ok)
		}
	}
}

func TestGateStopsOnCancel(t *testing.T) {
	feed := NewFeed("gated", Gate(errProducer{err: errors.New("never")}, make(chan struct{})))
	feed.Start(context.Background())
	feed.Stop()
	if err := feed.Err(); err != nil {
		t.Fatalf("expected clean stop, got %v", err)
	}
}
