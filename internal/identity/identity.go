// Package identity provides the production clock and identifier generator for MindfulU.
// Tests substitute the deterministic implementations from internal/testutils.
package identity

import (
	"time"

	"github.com/google/uuid"
)

// SystemClock reads the wall clock and uses real timers.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// After waits for the duration to elapse on a real timer.
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// UUIDGenerator produces random version 4 UUIDs.
type UUIDGenerator struct{}

// NewID returns a new random UUID string.
func (UUIDGenerator) NewID() string {
	return uuid.New().String()
}
