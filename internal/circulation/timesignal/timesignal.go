// Package timesignal emits the current instant to subscribed trackers on a
// fixed interval. Dispatch is synchronous over an explicit subscriber list,
// so at most one sweep is ever in flight and a new tick cannot begin before
// the prior sweep fully completes.
package timesignal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"libris/internal/circulation/metrics"
)

// Subscriber receives each tick. Implementations must tolerate ticks
// arriving concurrently with their own mutation calls.
type Subscriber interface {
	OnTick(ctx context.Context, now time.Time)
}

// TimeSignal is the single producer of the tick timeline.
type TimeSignal struct {
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics

	mu   sync.Mutex
	subs []Subscriber

	stopCh   chan struct{}
	stopOnce sync.Once
}

type Option func(*TimeSignal)

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *TimeSignal) {
		t.metrics = m
	}
}

func New(clock clockwork.Clock, interval time.Duration, logger *slog.Logger, opts ...Option) *TimeSignal {
	t := &TimeSignal{
		clock:    clock,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Subscribe registers a tracker for tick delivery. Subscribers registered
// after Run has started receive subsequent ticks.
func (t *TimeSignal) Subscribe(sub Subscriber) {
	t.mu.Lock()
	t.subs = append(t.subs, sub)
	t.mu.Unlock()
}

// Run drives the tick loop until Stop is called or ctx is cancelled.
func (t *TimeSignal) Run(ctx context.Context) error {
	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			t.Broadcast(ctx, t.clock.Now())
		case <-t.stopCh:
			t.logger.Info("time signal stopped")
			return nil
		case <-ctx.Done():
			t.logger.Info("time signal context cancelled")
			return ctx.Err()
		}
	}
}

// Stop terminates the tick loop. Safe to call more than once.
func (t *TimeSignal) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopCh)
	})
}

// Broadcast delivers now to every subscriber in registration order. It is
// exported so tests and startup reconciliation can force a sweep without
// waiting out the interval.
func (t *TimeSignal) Broadcast(ctx context.Context, now time.Time) {
	t.mu.Lock()
	subs := make([]Subscriber, len(t.subs))
	copy(subs, t.subs)
	t.mu.Unlock()

	start := t.clock.Now()
	for _, sub := range subs {
		sub.OnTick(ctx, now)
	}
	if t.metrics != nil {
		t.metrics.SweepDuration.Observe(t.clock.Since(start).Seconds())
	}
}
