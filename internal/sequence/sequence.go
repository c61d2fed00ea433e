// Package sequence supplies the monotonic counter used for session timestamps.
//
// The engine only ever takes differences of heights or compares their order;
// it never assumes wall-clock semantics. Production deployments point Source
// at an external ledger; tests use a fixed or stepping source.
package sequence

import (
	"sync"
	"time"
)

// Source yields a monotonically non-decreasing height.
type Source interface {
	Height() uint64
}

// Func adapts a plain function to a Source.
type Func func() uint64

// Height implements Source.
func (f Func) Height() uint64 {
	return f()
}

// Clock derives heights from wall-clock seconds since a fixed epoch, clamped
// so observed heights never decrease even if the clock steps backwards.
type Clock struct {
	now   func() time.Time
	epoch time.Time

	mu   sync.Mutex
	last uint64
}

// NewClock creates a Clock source anchored at epoch.
func NewClock(epoch time.Time, now func() time.Time) *Clock {
	if now == nil {
		now = time.Now
	}
	return &Clock{now: now, epoch: epoch.UTC()}
}

// Height implements Source.
func (c *Clock) Height() uint64 {
	elapsed := c.now().UTC().Sub(c.epoch)
	var height uint64
	if elapsed > 0 {
		height = uint64(elapsed / time.Second)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if height < c.last {
		return c.last
	}
	c.last = height
	return height
}
