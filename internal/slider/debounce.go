package slider

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Debouncer coalesces rapid triggers into one trailing call.
// Every trigger restarts the quiet window; only the function passed to the
// last trigger in a window runs.
type Debouncer struct {
	clock clockz.Clock
	delay time.Duration

	mu     sync.Mutex
	timer  clockz.Timer
	cancel chan struct{}
}

// NewDebouncer creates a debouncer with the given quiet window.
func NewDebouncer(clock clockz.Clock, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger schedules fn after the quiet window, dropping any pending call.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()

	cancel := make(chan struct{})
	timer := d.clock.NewTimer(d.delay)
	d.timer = timer
	d.cancel = cancel

	go func() {
		select {
		case <-cancel:
			return
		case <-timer.C():
		}

		d.mu.Lock()
		if d.cancel != cancel {
			// Superseded while the timer was firing.
			d.mu.Unlock()
			return
		}
		d.cancel = nil
		d.timer = nil
		d.mu.Unlock()

		fn()
	}()
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancelLocked()
}

// Pending reports whether a call is waiting for its window to close.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel != nil
}

// cancelLocked drops the pending call. Caller must hold d.mu.
func (d *Debouncer) cancelLocked() {
	if d.cancel == nil {
		return
	}
	d.timer.Stop()
	close(d.cancel)
	d.timer = nil
	d.cancel = nil
}
