package watcher

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of raw change notifications into single settled
// events. The first notification arms a one-shot timer for the quiet
// interval; any further notification before it fires resets it. When the
// timer elapses undisturbed, onSettled runs exactly once and the debouncer
// returns to idle.
//
// Notify is safe to call from any goroutine. onSettled runs on the timer
// goroutine, outside the debouncer's lock, so it may block (e.g. on a
// network call) without delaying new notifications.
type Debouncer struct {
	quiet     time.Duration
	onSettled func()

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer with the given quiet interval.
func NewDebouncer(quiet time.Duration, onSettled func()) *Debouncer {
	return &Debouncer{
		quiet:     quiet,
		onSettled: onSettled,
	}
}

// Notify records one raw change notification, arming or resetting the timer.
func (d *Debouncer) Notify() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, d.fire)
}

// Stop releases any pending timer. After Stop, notifications are ignored and
// no further settled events fire.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	// Callback runs outside the lock so a new burst can arm the next timer
	// while this one is still being handled.
	d.onSettled()
}
