package slider

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestRepeater_RunsEveryInterval(t *testing.T) {
	clock := clockz.NewFakeClock()
	runs := make(chan struct{}, 8)
	r := NewRepeater(clock, time.Second, func() { runs <- struct{}{} })
	defer r.Stop()

	if r.Running() {
		t.Fatal("new repeater should be stopped")
	}
	r.Start()
	if !r.Running() {
		t.Fatal("expected running after Start")
	}

	for i := range 3 {
		advance(clock, time.Second+time.Millisecond)
		select {
		case <-runs:
		case <-time.After(2 * time.Second):
			t.Fatalf("run %d did not happen", i+1)
		}
	}
}

func TestRepeater_CountsOneRunPerTick(t *testing.T) {
	clock := clockz.NewFakeClock()
	var count atomic.Int32
	r := NewRepeater(clock, time.Second, func() { count.Add(1) })
	r.Start()
	defer r.Stop()

	for want := int32(1); want <= 3; want++ {
		advance(clock, time.Second+time.Millisecond)
		deadline := time.Now().Add(2 * time.Second)
		for count.Load() < want {
			if time.Now().After(deadline) {
				t.Fatalf("runs = %d, want %d", count.Load(), want)
			}
			time.Sleep(time.Millisecond)
		}
	}
	time.Sleep(20 * time.Millisecond)
	if got := count.Load(); got != 3 {
		t.Errorf("runs = %d, want 3", got)
	}
}

func TestRepeater_StopPreventsFurtherRuns(t *testing.T) {
	clock := clockz.NewFakeClock()
	var count atomic.Int32
	r := NewRepeater(clock, time.Second, func() { count.Add(1) })

	r.Start()
	r.Stop()
	r.Stop()
	if r.Running() {
		t.Fatal("expected stopped repeater")
	}

	advance(clock, 5*time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("task ran %d times after Stop", got)
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := clockz.NewFakeClock()
	var count atomic.Int32
	d := NewDebouncer(clock, 200*time.Millisecond)

	d.Trigger(func() { count.Add(1) })
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	d.Cancel()
	if d.Pending() {
		t.Fatal("expected no pending call after Cancel")
	}

	advance(clock, time.Second)
	time.Sleep(20 * time.Millisecond)
	if got := count.Load(); got != 0 {
		t.Errorf("cancelled call ran %d times", got)
	}
}
