// Package autosave coalesces a viewer's rapid slot edits into single
// persisted writes.
//
// Toggling a slot updates local pending state synchronously and arms a
// debounce timer; further toggles inside the quiet window re-arm it, so a
// burst of edits produces one write. Flush persists immediately, bypassing
// the window — that is what a drag gesture does on release. Cancel drops
// whatever is pending: a viewer who navigates away inside the window loses
// that last second of edits, which is the accepted behavior, not a queue to
// drain past teardown.
package autosave

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/mfreitag/meetsync/internal/domain"
)

// DefaultDelay is the coalescing quiet window.
const DefaultDelay = time.Second

// FlushFunc persists one coalesced batch of availability edits.
// There is no retry: an error is reported once through the error callback
// and the edits stay dropped until the user re-triggers them.
type FlushFunc func(ctx context.Context, entries []domain.AvailabilityEntry) error

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithDelay overrides the debounce window. Mostly for tests.
func WithDelay(d time.Duration) Option {
	return func(c *Coordinator) { c.delay = d }
}

// WithClock overrides the timestamp source. Mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// WithErrorHandler sets the callback invoked when a debounce-triggered flush
// fails. Without one, failures are silently dropped.
func WithErrorHandler(fn func(error)) Option {
	return func(c *Coordinator) { c.onError = fn }
}

// Coordinator batches slot toggles for one identity editing one event.
// It is safe for concurrent use.
type Coordinator struct {
	flush   FlushFunc
	delay   time.Duration
	now     func() time.Time
	onError func(error)

	mu      sync.Mutex
	pending map[slotKey]domain.AvailabilityEntry
	timer   *time.Timer
	closed  bool
}

type slotKey struct {
	date string
	time string
}

// New builds a Coordinator that persists batches through flush.
func New(flush FlushFunc, opts ...Option) *Coordinator {
	c := &Coordinator{
		flush:   flush,
		delay:   DefaultDelay,
		now:     time.Now,
		pending: make(map[slotKey]domain.AvailabilityEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Toggle records one slot edit and (re)arms the debounce timer. A later
// toggle of the same slot inside the window replaces the earlier one, so the
// flushed batch carries only final states.
func (c *Coordinator) Toggle(date, slot string, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.pending[slotKey{date: date, time: slot}] = domain.AvailabilityEntry{
		Date:      date,
		Time:      slot,
		Available: available,
		Timestamp: c.now(),
	}

	if c.timer == nil {
		c.timer = time.AfterFunc(c.delay, c.fire)
	} else {
		c.timer.Reset(c.delay)
	}
}

// Pending reports how many slot edits are waiting for the window to elapse.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Flush persists everything pending right now, bypassing the debounce
// window. A no-op when nothing is pending.
func (c *Coordinator) Flush(ctx context.Context) error {
	batch := c.take()
	if len(batch) == 0 {
		return nil
	}
	if err := c.flush(ctx, batch); err != nil {
		return fmt.Errorf("autosave.Coordinator.Flush: %w", err)
	}
	return nil
}

// Cancel drops all pending edits and disarms the timer. Call on teardown.
func (c *Coordinator) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drainLocked()
}

// Close cancels pending work and rejects all further toggles.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drainLocked()
	c.closed = true
}

// fire runs on the timer goroutine when the quiet window elapses.
func (c *Coordinator) fire() {
	batch := c.take()
	if len(batch) == 0 {
		return
	}
	if err := c.flush(context.Background(), batch); err != nil && c.onError != nil {
		c.onError(err)
	}
}

// take atomically removes and returns the pending batch in deterministic
// date-then-time order.
func (c *Coordinator) take() []domain.AvailabilityEntry {
	c.mu.Lock()
	pending := c.pending
	c.drainLocked()
	c.mu.Unlock()

	batch := make([]domain.AvailabilityEntry, 0, len(pending))
	for _, entry := range pending {
		batch = append(batch, entry)
	}
	sort.Slice(batch, func(i, j int) bool {
		if batch[i].Date != batch[j].Date {
			return batch[i].Date < batch[j].Date
		}
		return batch[i].Time < batch[j].Time
	})
	return batch
}

func (c *Coordinator) drainLocked() {
	c.pending = make(map[slotKey]domain.AvailabilityEntry)
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
