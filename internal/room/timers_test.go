package room

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestTimerSetScheduleAndCancel(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32

	ts.Schedule("a", 10*time.Millisecond, func() { fired.Add(1) })
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatalf("fired = %d, want 1", fired.Load())
	}

	ts.Schedule("b", 10*time.Millisecond, func() { fired.Add(1) })
	ts.Cancel("b")
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 1 {
		t.Fatal("cancelled timer fired")
	}
}

func TestTimerSetRescheduleReplaces(t *testing.T) {
	ts := NewTimerSet()
	var first, second atomic.Int32

	ts.Schedule("k", 10*time.Millisecond, func() { first.Add(1) })
	ts.Schedule("k", 20*time.Millisecond, func() { second.Add(1) })
	time.Sleep(80 * time.Millisecond)
	if first.Load() != 0 {
		t.Fatal("replaced schedule still fired")
	}
	if second.Load() != 1 {
		t.Fatalf("replacement fired %d times, want 1", second.Load())
	}
}

func TestTimerSetCancelAll(t *testing.T) {
	ts := NewTimerSet()
	var fired atomic.Int32
	for _, key := range []string{"x", "y", "z"} {
		ts.Schedule(key, 10*time.Millisecond, func() { fired.Add(1) })
	}
	ts.CancelAll()
	time.Sleep(50 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("%d timers fired after CancelAll", fired.Load())
	}
}
