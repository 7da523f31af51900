package service

import (
	"sync"
	"time"
)

// Clock provides time operations. Install durations are measured through it
// so tests can pin them.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// StepClock starts at Start and advances by Step on every call after the first.
type StepClock struct {
	Start time.Time
	Step  time.Duration

	mu    sync.Mutex
	calls int
}

// Now returns Start plus Step for every previous call.
func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.Start.Add(time.Duration(c.calls) * c.Step)
	c.calls++
	return t
}
