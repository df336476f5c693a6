// Simulated tick source for tests and hosted simulation
package core

import (
	"math"
	"sync/atomic"
)

// SimClock is a manually advanced tick source. Time passes only when
// Advance is called, which makes every timing scenario deterministic. The
// total tick count is kept in 64 bits; the raw 32-bit counter view wraps
// at the configured bound like real hardware.
//
// Advance may be called from a different goroutine than the one owning the
// TickCounter, which is how tests drive an in-flight wait.
type SimClock struct {
	rate   uint32
	maxRaw uint32
	total  atomic.Uint64
	wakes  WakeList
}

// NewSimClock creates a simulated counter with the given tick rate and
// inclusive raw bound. A bound of 0 means the full 32-bit range.
func NewSimClock(rate, maxRaw uint32) *SimClock {
	if maxRaw == 0 {
		maxRaw = math.MaxUint32
	}
	return &SimClock{rate: rate, maxRaw: maxRaw}
}

// Ticks returns the raw counter view, wrapped to the configured bound.
func (c *SimClock) Ticks() uint32 {
	return uint32(c.total.Load() % (uint64(c.maxRaw) + 1))
}

// MaxRaw returns the inclusive raw counter bound.
func (c *SimClock) MaxRaw() uint32 {
	return c.maxRaw
}

// Tickrate returns the configured ticks per second.
func (c *SimClock) Tickrate() uint32 {
	return c.rate
}

// Advance moves simulated time forward by the given number of ticks and
// fires any wakes that became due.
func (c *SimClock) Advance(ticks uint32) {
	now := c.total.Add(uint64(ticks))
	c.wakes.Dispatch(now)
}

// Total returns the total ticks ever advanced, without wrapping.
func (c *SimClock) Total() uint64 {
	return c.total.Load()
}

// Now implements Waker: the absolute tick position, identical to Total.
func (c *SimClock) Now() uint64 {
	return c.total.Load()
}

// NotifyAt implements Waker: the returned channel closes once the
// absolute tick position has reached at.
func (c *SimClock) NotifyAt(at uint64) <-chan struct{} {
	ch := c.wakes.Add(at)
	// An Advance may have landed before the insert; re-dispatch so the
	// wake cannot be stranded.
	if now := c.total.Load(); now >= at {
		c.wakes.Dispatch(now)
	}
	return ch
}
