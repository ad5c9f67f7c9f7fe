package room

import (
	"sync"
	"time"
)

// TimerSet tracks named one-shot timers. Scheduling a key that is already
// armed replaces the old timer. Callbacks fire on their own goroutine, so
// anything touching room state must post back into the mailbox.
type TimerSet struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewTimerSet() *TimerSet {
	return &TimerSet{timers: make(map[string]*time.Timer)}
}

func (ts *TimerSet) Schedule(key string, d time.Duration, fn func()) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[key]; ok {
		t.Stop()
	}
	ts.timers[key] = time.AfterFunc(d, func() {
		ts.mu.Lock()
		delete(ts.timers, key)
		ts.mu.Unlock()
		fn()
	})
}

func (ts *TimerSet) Cancel(key string) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if t, ok := ts.timers[key]; ok {
		t.Stop()
		delete(ts.timers, key)
	}
}

func (ts *TimerSet) CancelAll() {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	for key, t := range ts.timers {
		t.Stop()
		delete(ts.timers, key)
	}
}
