//go:build !tinygo

// Host-side tick source backed by the Go runtime's monotonic clock
package core

import (
	"math"
	"time"
)

// HostClock presents the host's monotonic clock as a 32-bit tick counter,
// for running timer consumers unchanged on a development machine. The
// epoch reference is an arbitrary t0 taken at construction; only
// differences against it are meaningful.
type HostClock struct {
	rate  uint32
	epoch time.Time
}

// NewHostClock creates a host-backed source with the given tick rate.
func NewHostClock(rate uint32) *HostClock {
	return &HostClock{rate: rate, epoch: time.Now()}
}

// Ticks returns elapsed ticks since the arbitrary epoch, wrapped to 32
// bits.
func (c *HostClock) Ticks() uint32 {
	return uint32(c.Now())
}

// Now implements Waker: absolute ticks since the epoch, without wrapping.
func (c *HostClock) Now() uint64 {
	ns := uint64(time.Since(c.epoch))
	// Split the division so the product cannot wrap uint64: for
	// ns = q*1e9 + r, floor(ns*rate/1e9) == q*rate + floor(r*rate/1e9).
	sec := ns / uint64(time.Second)
	rem := ns % uint64(time.Second)
	return sec*uint64(c.rate) + rem*uint64(c.rate)/uint64(time.Second)
}

// MaxRaw returns the full 32-bit range.
func (c *HostClock) MaxRaw() uint32 {
	return math.MaxUint32
}

// Tickrate returns the configured ticks per second.
func (c *HostClock) Tickrate() uint32 {
	return c.rate
}

// NotifyAt implements Waker with a runtime timer, rounding the sleep up
// so the wake never lands short of the requested position.
func (c *HostClock) NotifyAt(at uint64) <-chan struct{} {
	ch := make(chan struct{})
	now := c.Now()
	if at <= now {
		close(ch)
		return ch
	}
	time.AfterFunc(ticksToDuration(at-now, c.rate), func() { close(ch) })
	return ch
}
