// Tick timer hardware abstraction layer
// Defines the capability interfaces a concrete timer backend can provide
package core

import (
	"context"
	"errors"
)

// ErrOverflow reports that the true elapsed or requested time exceeds what
// the counter or the requested unit can represent. It is never transient:
// only a fresh Start clears it for elapsed queries.
var ErrOverflow = errors.New("timer overflow")

// Timer is the minimal elapsed-time contract. A Timer runs from the moment
// Start is called and reports elapsed time rounded down, so the returned
// value never overstates how much time has passed.
type Timer interface {
	// Start resets the measurement epoch to tick 0. It always succeeds and
	// invalidates all previous elapsed-time readings.
	Start()

	// ElapsedMicros returns elapsed microseconds since Start, rounded down.
	ElapsedMicros() (uint32, error)
	// ElapsedMillis returns elapsed milliseconds since Start, rounded down.
	ElapsedMillis() (uint32, error)
	// ElapsedSecs returns elapsed seconds since Start, rounded down.
	ElapsedSecs() (uint32, error)
}

// TickTimer exposes raw tick access for callers that need full counter
// precision. Tickrate is fixed for the lifetime of the instance.
type TickTimer interface {
	Timer

	// Tickrate returns counter increments per second. Always positive.
	Tickrate() uint32
	// ElapsedTicks returns whole ticks since Start. A partial tick is never
	// counted.
	ElapsedTicks() (uint32, error)
}

// BoundedTimer exposes the inclusive maximum durations representable before
// the counter overflows. Drivers probe this to reject backends whose range
// is too small for their measurement window.
type BoundedTimer interface {
	Timer

	// MaxMicros returns the inclusive maximum elapsed microseconds before
	// overflow, clamped to the uint32 range.
	MaxMicros() uint32
	// MaxMillis returns the inclusive maximum elapsed milliseconds before
	// overflow, clamped to the uint32 range.
	MaxMillis() uint32
	// MaxSecs returns the inclusive maximum elapsed seconds before overflow,
	// clamped to the uint32 range.
	MaxSecs() uint32
}

// BoundedTickTimer combines raw tick access with bound introspection.
type BoundedTickTimer interface {
	TickTimer
	BoundedTimer

	// MaxTicks returns the inclusive maximum tick count before overflow.
	MaxTicks() uint32
}

// Alarm waits for a deadline expressed relative to the Timer's current
// epoch. Every Alarm is also a Timer: arming a wait never restarts the
// underlying counter, but restarting the counter re-bases an in-flight
// wait onto the new epoch.
//
// Deadlines given in time units are converted to ticks rounding up, so a
// wait never resolves before the requested time has truly elapsed. If the
// deadline is already reached when the wait is armed, the call returns
// immediately. If the deadline cannot be represented by the counter at all,
// the call fails with ErrOverflow without suspending.
//
// Cancelling the context abandons the wait and returns ctx.Err(). An
// abandoned wait leaves no state behind: subsequent Start and elapsed
// queries behave exactly as if the wait had never been armed.
type Alarm interface {
	Timer

	WaitUntilTicks(ctx context.Context, ticks uint32) error
	WaitUntilMicros(ctx context.Context, micros uint32) error
	WaitUntilMillis(ctx context.Context, millis uint32) error
	WaitUntilSecs(ctx context.Context, secs uint32) error
}

// Restarter is an optional capability closing the read-then-restart gap:
// a single counter read serves as both the final elapsed measurement of
// the old epoch and the start reference of the new one. Callers doing
// gapless periodic measurement (rate meters) should prefer it over an
// ElapsedTicks/Start pair.
type Restarter interface {
	// Restart begins a new epoch and returns the ticks the old epoch had
	// accumulated. On overflow it returns ErrOverflow but still restarts.
	Restart() (uint32, error)
}

// TickSource is the raw free-running counter a TickCounter measures
// against. Implementations are hardware timer peripherals, the host's
// monotonic clock, or a simulated counter for tests.
type TickSource interface {
	// Ticks returns the current raw counter value. The value wraps to 0
	// after passing MaxRaw().
	Ticks() uint32
	// MaxRaw returns the inclusive maximum raw counter value, 2^width - 1
	// for a width-bit counter; hardware that rolls over at an arbitrary
	// reload value reports that value instead.
	MaxRaw() uint32
	// Tickrate returns counter increments per second. Always positive and
	// fixed for the source's lifetime.
	Tickrate() uint32
}

// Resetter is implemented by sources whose hardware counter can be forced
// back to zero. On such sources a Start maps directly onto a counter
// reset, so a latched wrap flag corresponds one-to-one with epoch
// overflow.
type Resetter interface {
	// Reset forces the raw counter back to zero.
	Reset()
}

// WrapFlag is implemented by sources whose hardware latches a wrap event
// (an update/overflow interrupt flag). Only meaningful on sources that
// also implement Resetter; a free-running counter's wrap has no fixed
// relation to the epoch.
type WrapFlag interface {
	// Wrapped reports whether the counter wrapped since the last ClearWrap.
	Wrapped() bool
	// ClearWrap clears the latched wrap event.
	ClearWrap()
}

// Waker is implemented by sources that can schedule wake notifications,
// via a hardware compare match or a software timer. Wake positions are
// absolute, non-wrapping source ticks: a caller snapshots Now, reads the
// counter, and registers the deadline relative to the snapshot, so ticks
// landing between the two reads make the wake fire early, never late.
type Waker interface {
	// Now returns the source's absolute tick position. Unlike Ticks it
	// never wraps.
	Now() uint64
	// NotifyAt returns a channel closed once the absolute position has
	// reached at. A position already passed fires promptly. Abandoning
	// the channel is allowed and must not disturb the counter.
	NotifyAt(at uint64) <-chan struct{}
}
