// Package poll contains the fixed-interval pollers that approximate
// real-time updates: unread count, new messages in an open conversation,
// and inbox list changes.
package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultInterval is the refresh interval the message pollers use.
// The standalone navbar unread check runs at BadgeInterval.
const (
	DefaultInterval = 2 * time.Second
	BadgeInterval   = 5 * time.Second
)

// Poller runs a tick function on a fixed interval. A tick is skipped
// when the previous one is still in flight, so a slow response never
// piles up overlapping requests. Suspend pauses ticks without queueing
// them; after Resume the next natural interval simply fires again.
type Poller struct {
	interval  time.Duration
	immediate bool
	tick      func(context.Context)

	suspended atomic.Bool
	inFlight  atomic.Bool

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	stopped bool
}

// New creates a poller. When immediate is set the first tick fires on
// Start rather than after the first interval.
func New(interval time.Duration, immediate bool, tick func(context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{interval: interval, immediate: immediate, tick: tick}
}

// Start launches the polling loop. Starting a stopped or running poller
// is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped || p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx)
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	if p.immediate {
		p.fire(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fire(ctx)
		}
	}
}

func (p *Poller) fire(ctx context.Context) {
	if p.suspended.Load() {
		return
	}
	if !p.inFlight.CompareAndSwap(false, true) {
		return // previous tick still running
	}
	go func() {
		defer p.inFlight.Store(false)
		p.tick(ctx)
	}()
}

// Suspend pauses ticks, matching the page losing visibility or focus.
func (p *Poller) Suspend() { p.suspended.Store(true) }

// Resume re-enables ticks. Ticks missed while suspended do not fire
// retroactively.
func (p *Poller) Resume() { p.suspended.Store(false) }

// Stop cancels the loop and releases the timer. Idempotent, and safe to
// call on a poller that was never started.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.stopped = true
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}
