// Package clock provides Clock implementations.
package clock

import (
	"sync"
	"time"

	"github.com/merchantkit/brickgate/ports"
)

// Real returns the actual current time.
type Real struct{}

// Now returns the current time.
func (Real) Now() time.Time {
	return time.Now()
}

// Frozen is a controllable clock for testing.
type Frozen struct {
	mu  sync.RWMutex
	now time.Time
}

// NewFrozen creates a frozen clock set to the given time.
func NewFrozen(t time.Time) *Frozen {
	return &Frozen{now: t}
}

// Now returns the frozen time.
func (f *Frozen) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Advance moves the frozen time forward by d.
func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// Ensure interface compliance.
var (
	_ ports.Clock = Real{}
	_ ports.Clock = (*Frozen)(nil)
)
