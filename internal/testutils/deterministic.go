// Package testutils provides deterministic generators and utility functions for MindfulU testing.
// These utilities ensure consistent test output while keeping production formats.
package testutils

import (
	"fmt"
	"sync"
	"time"
)

// BaseTime is the first instant handed out by a StepClock: 2025-01-01T00:00:00Z.
var BaseTime = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// SequenceIDs generates deterministic IDs that keep the UUID v4 format.
// IDs look like 00000001-0000-4000-8000-000000000001, 00000002-0000-4000-8000-000000000002, ...
type SequenceIDs struct {
	mu      sync.Mutex
	counter uint64
}

// NewSequenceIDs creates a generator starting at 1.
func NewSequenceIDs() *SequenceIDs {
	return &SequenceIDs{}
}

// NewID returns the next deterministic UUID.
func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	return fmt.Sprintf("%08x-0000-4000-8000-%012x", s.counter, s.counter)
}

// StepClock is a deterministic clock.
// Each call to Now returns a time one Step later than the previous call.
// After fires immediately, so simulated delays cost nothing in tests.
type StepClock struct {
	mu      sync.Mutex
	current time.Time
	Step    time.Duration

	afterMu sync.Mutex
	waits   []time.Duration
}

// NewStepClock creates a clock that starts at BaseTime and advances one second per call.
func NewStepClock() *StepClock {
	return NewStepClockAt(BaseTime, time.Second)
}

// NewStepClockAt creates a clock that starts at start and advances by step per call.
func NewStepClockAt(start time.Time, step time.Duration) *StepClock {
	return &StepClock{current: start.Add(-step), Step: step}
}

// Now returns the next deterministic instant.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(c.Step)
	return c.current
}

// After records the requested delay and fires immediately.
func (c *StepClock) After(d time.Duration) <-chan time.Time {
	c.afterMu.Lock()
	c.waits = append(c.waits, d)
	c.afterMu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- BaseTime
	return ch
}

// Waits returns every delay requested through After, in call order.
func (c *StepClock) Waits() []time.Duration {
	c.afterMu.Lock()
	defer c.afterMu.Unlock()
	return append([]time.Duration(nil), c.waits...)
}

// ManualClock is a clock whose timers only fire when Release is called.
// It lets tests hold a task in its pending phase.
type ManualClock struct {
	StepClock

	mu      sync.Mutex
	pending []chan time.Time
	waiting chan struct{}
}

// NewManualClock creates a manual clock starting at BaseTime.
func NewManualClock() *ManualClock {
	return &ManualClock{
		StepClock: StepClock{current: BaseTime.Add(-time.Second), Step: time.Second},
		waiting:   make(chan struct{}, 64),
	}
}

// After returns a channel that fires on the next Release.
func (c *ManualClock) After(d time.Duration) <-chan time.Time {
	c.afterMu.Lock()
	c.waits = append(c.waits, d)
	c.afterMu.Unlock()

	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.pending = append(c.pending, ch)
	c.mu.Unlock()
	c.waiting <- struct{}{}
	return ch
}

// AwaitTimer blocks until some goroutine has asked for a timer, or the timeout elapses.
func (c *ManualClock) AwaitTimer(timeout time.Duration) bool {
	select {
	case <-c.waiting:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Release fires every timer handed out so far.
func (c *ManualClock) Release() {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, ch := range pending {
		ch <- BaseTime
	}
}
