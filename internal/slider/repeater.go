package slider

import (
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// Repeater runs a task at a fixed interval until stopped.
// At most one schedule is active: Start replaces a running schedule
// instead of adding a second one.
type Repeater struct {
	clock    clockz.Clock
	interval time.Duration
	task     func()

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewRepeater creates a stopped repeater for task.
func NewRepeater(clock clockz.Clock, interval time.Duration, task func()) *Repeater {
	return &Repeater{
		clock:    clock,
		interval: interval,
		task:     task,
	}
}

// Start schedules the task every interval, replacing any running schedule.
// The first run happens one full interval after Start.
func (r *Repeater) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopLocked()

	stop := make(chan struct{})
	done := make(chan struct{})
	// Created before the goroutine so a clock advance right after Start is not lost.
	ticker := r.clock.NewTicker(r.interval)
	r.stop = stop
	r.done = done

	go r.run(ticker, stop, done)
}

// Stop cancels the schedule. When Stop returns the task is not running and
// will not run again until the next Start. Safe to call when stopped.
//
// Stop must not be called from inside the task.
func (r *Repeater) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLocked()
}

// Running reports whether a schedule is active.
func (r *Repeater) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// stopLocked cancels the active schedule. Caller must hold r.mu.
func (r *Repeater) stopLocked() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop = nil
	r.done = nil
}

// run fires the task on every tick until stop is closed.
func (r *Repeater) run(ticker clockz.Ticker, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			// A Stop that raced the tick wins.
			select {
			case <-stop:
				return
			default:
			}

			r.task()
		}
	}
}
