// Package timer tracks total and per-stage durations of a deployctl command.
package timer

import (
	"sync"
	"time"
)

// Timer measures the elapsed time of a command and of its current stage.
type Timer interface {
	// Start resets the timer and begins measuring.
	Start()
	// NewStage marks the beginning of a new stage.
	NewStage()
	// GetTiming returns the total elapsed time and the time spent in the current stage.
	GetTiming() (time.Duration, time.Duration)
	// Stop freezes the timer.
	Stop()
}

type stageTimer struct {
	mu         sync.Mutex
	now        func() time.Time
	start      time.Time
	stageStart time.Time
	stopped    time.Time
}

// New returns a Timer backed by the wall clock.
func New() Timer {
	return NewWithClock(time.Now)
}

// NewWithClock returns a Timer reading time from now. Useful for deterministic tests.
func NewWithClock(now func() time.Time) Timer {
	return &stageTimer{now: now}
}

func (t *stageTimer) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.start = t.now()
	t.stageStart = t.start
	t.stopped = time.Time{}
}

func (t *stageTimer) NewStage() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		t.start = t.now()
	}

	t.stageStart = t.now()
}

func (t *stageTimer) GetTiming() (time.Duration, time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.start.IsZero() {
		return 0, 0
	}

	end := t.stopped
	if end.IsZero() {
		end = t.now()
	}

	return end.Sub(t.start), end.Sub(t.stageStart)
}

func (t *stageTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped.IsZero() {
		t.stopped = t.now()
	}
}
