// Package source delivers timing events from external producers to tracking
// sessions through scoped subscriptions.
package source

import (
	"context"
	"errors"
	"sync"

	"github.com/verte-zerg/strafetrakk/internal/model"
)

// subscriptionBuffer is the per-subscriber channel capacity.
const subscriptionBuffer = 256

var (
	// ErrFeedStopped is returned when subscribing to a feed whose producer failed.
	ErrFeedStopped = errors.New("event feed stopped")
	// ErrNotStarted is returned when subscribing to a feed that was never started.
	ErrNotStarted = errors.New("event feed not started")
)

// Source hands out subscriptions to a stream of timing events.
type Source interface {
	Subscribe(ctx context.Context) (*Subscription, error)
}

// Producer generates timing events until it runs dry, fails, or ctx is done.
// emit returns false once nothing should be produced anymore.
type Producer interface {
	Run(ctx context.Context, emit func(model.TimingEvent) bool) error
}

// Subscription is one listener on a Feed. Close must be called on every exit
// path; calling it more than once is safe.
type Subscription struct {
	feed   *Feed
	events chan model.TimingEvent
	done   chan struct{}

	closeOnce sync.Once
	// ended is set under feed.mu once events has been closed.
	ended bool
}

// Events returns the event channel. It is closed when the subscription is
// closed or the feed ends.
func (s *Subscription) Events() <-chan model.TimingEvent {
	return s.events
}

// Done is closed by Close.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Err reports why the feed stopped, if it failed.
func (s *Subscription) Err() error {
	if s.feed == nil {
		return nil
	}
	return s.feed.Err()
}

// Close detaches the subscription from its feed.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if s.feed != nil {
			s.feed.remove(s)
		}
	})
}

// Feed runs one Producer and fans its events out to the current subscribers
// in arrival order. Events emitted while nobody is subscribed are dropped.
type Feed struct {
	name     string
	producer Producer

	mu      sync.Mutex
	subs    []*Subscription
	started bool
	ended   bool
	err     error
	done    chan struct{}
	cancel  context.CancelFunc
}

// NewFeed wraps a producer. Start must be called before subscribing.
func NewFeed(name string, p Producer) *Feed {
	return &Feed{name: name, producer: p, done: make(chan struct{})}
}

// Name describes the producer for status lines and the archive.
func (f *Feed) Name() string {
	return f.name
}

// Start runs the producer in its own goroutine. Later calls are no-ops.
func (f *Feed) Start(ctx context.Context) {
	f.mu.Lock()
	if f.started {
		f.mu.Unlock()
		return
	}
	f.started = true
	ctx, f.cancel = context.WithCancel(ctx)
	f.mu.Unlock()

	go func() {
		defer close(f.done)
		err := f.producer.Run(ctx, func(ev model.TimingEvent) bool {
			return f.emit(ctx, ev)
		})
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		f.finish(err)
	}()
}

// Stop cancels the producer and waits for it to return.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-f.done
}

// Done is closed once the producer has returned.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

// Err returns the producer error, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

// Subscribe registers a new listener. A feed that already ended cleanly
// yields a subscription with a closed channel; a failed feed yields an error.
func (f *Feed) Subscribe(ctx context.Context) (*Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.started {
		return nil, ErrNotStarted
	}
	if f.err != nil {
		return nil, errors.Join(ErrFeedStopped, f.err)
	}
	sub := &Subscription{
		feed:   f,
		events: make(chan model.TimingEvent, subscriptionBuffer),
		done:   make(chan struct{}),
	}
	if f.ended {
		sub.ended = true
		close(sub.events)
		return sub, nil
	}
	f.subs = append(f.subs, sub)
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.done:
		}
	}()
	return sub, nil
}

// Subscribers returns the number of attached subscriptions.
func (f *Feed) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed) emit(ctx context.Context, ev model.TimingEvent) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		select {
		case sub.events <- ev:
		case <-sub.done:
		case <-ctx.Done():
			return false
		}
	}
	return ctx.Err() == nil
}

func (f *Feed) remove(sub *Subscription) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, s := range f.subs {
		if s == sub {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			break
		}
	}
	if !sub.ended {
		sub.ended = true
		close(sub.events)
	}
}

func (f *Feed) finish(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = true
	f.err = err
	for _, sub := range f.subs {
		if !sub.ended {
			sub.ended = true
			close(sub.events)
		}
	}
	f.subs = nil
}

// Failing is a source whose subscriptions always fail.
type Failing struct {
	Err error
}

// Subscribe returns the wrapped error.
func (f Failing) Subscribe(context.Context) (*Subscription, error) {
	if f.Err == nil {
		return nil, ErrFeedStopped
	}
	return nil, f.Err
}

// Gate delays p until ready is closed, so early events are not emitted before
// the first listener subscribes.
func Gate(p Producer, ready <-chan struct{}) Producer {
	return gated{p: p, ready: ready}
}

type gated struct {
	p     Producer
	ready <-chan struct{}
}

func (g gated) Run(ctx context.Context, emit func(model.TimingEvent) bool) error {
	select {
	case <-g.ready:
	case <-ctx.Done():
		return ctx.Err()
	}
	return g.p.Run(ctx, emit)
}
