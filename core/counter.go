// Epoch state machine over a raw wrapping tick source
package core

// TickCounter measures elapsed time against a TickSource, one epoch at a
// time. An epoch runs from one Start call to the next; within an epoch
// elapsed ticks are monotonically non-decreasing until overflow.
//
// Wrap handling disambiguates zero wraps: the full raw range of the source
// is usable, and the first wrap of the epoch is overflow. On free-running
// sources a wrap is detected when an elapsed reading comes out below an
// earlier one, which requires the owner to query at least once per wrap
// period; a whole wrap fitting between two queries goes unseen unless the
// source latches it via WrapFlag. Once detected, overflow is sticky until
// the next Start.
//
// A TickCounter is owned by a single logical task. It takes no locks;
// exclusive ownership of the hardware resource is the concurrency
// discipline.
type TickCounter struct {
	src       TickSource
	reset     Resetter // nil when the counter cannot be forced to zero
	wrap      WrapFlag // nil when the hardware has no wrap latch
	startRef  uint32
	lastDelta uint32
	overflow  bool
}

// NewTickCounter creates a counter over src and starts its first epoch
// immediately, so the counter is never in a "not started" state: queries
// before an explicit Start measure from construction.
func NewTickCounter(src TickSource) *TickCounter {
	tc := &TickCounter{src: src}
	tc.reset, _ = src.(Resetter)
	tc.wrap, _ = src.(WrapFlag)
	tc.Start()
	return tc
}

// Start begins a new epoch at tick 0. It never fails.
func (tc *TickCounter) Start() {
	if tc.reset != nil {
		tc.reset.Reset()
		tc.startRef = 0
	} else {
		tc.startRef = tc.src.Ticks()
	}
	if tc.wrap != nil {
		tc.wrap.ClearWrap()
	}
	tc.lastDelta = 0
	tc.overflow = false
}

// Tickrate returns the source's ticks per second.
func (tc *TickCounter) Tickrate() uint32 {
	return tc.src.Tickrate()
}

// ElapsedTicks returns whole ticks since Start, or ErrOverflow once the
// epoch has exceeded the counter's range. A wrapped reading is never
// reported as a small valid elapsed time.
func (tc *TickCounter) ElapsedTicks() (uint32, error) {
	if tc.overflow {
		return 0, ErrOverflow
	}
	delta, ok := tc.readDelta()
	if !ok {
		tc.overflow = true
		return 0, ErrOverflow
	}
	tc.lastDelta = delta
	return delta, nil
}

// readDelta reads the source and reports the epoch delta, or ok=false if a
// wrap was observed.
func (tc *TickCounter) readDelta() (delta uint32, ok bool) {
	return tc.readDeltaFrom(tc.src.Ticks())
}

// ElapsedMicros returns elapsed microseconds since Start, rounded down.
func (tc *TickCounter) ElapsedMicros() (uint32, error) {
	return tc.elapsedUnits(MicrosPerSec)
}

// ElapsedMillis returns elapsed milliseconds since Start, rounded down.
func (tc *TickCounter) ElapsedMillis() (uint32, error) {
	return tc.elapsedUnits(MillisPerSec)
}

// ElapsedSecs returns elapsed seconds since Start, rounded down.
func (tc *TickCounter) ElapsedSecs() (uint32, error) {
	return tc.elapsedUnits(SecsPerSec)
}

func (tc *TickCounter) elapsedUnits(unitsPerSec uint64) (uint32, error) {
	ticks, err := tc.ElapsedTicks()
	if err != nil {
		return 0, err
	}
	return TicksToUnits(ticks, tc.src.Tickrate(), unitsPerSec)
}

// MaxTicks returns the inclusive tick bound of one epoch.
func (tc *TickCounter) MaxTicks() uint32 {
	return tc.src.MaxRaw()
}

// MaxMicros returns the inclusive microsecond bound of one epoch, clamped
// to the uint32 range.
func (tc *TickCounter) MaxMicros() uint32 {
	return MaxUnits(tc.MaxTicks(), tc.src.Tickrate(), MicrosPerSec)
}

// MaxMillis returns the inclusive millisecond bound of one epoch, clamped
// to the uint32 range.
func (tc *TickCounter) MaxMillis() uint32 {
	return MaxUnits(tc.MaxTicks(), tc.src.Tickrate(), MillisPerSec)
}

// MaxSecs returns the inclusive second bound of one epoch, clamped to the
// uint32 range.
func (tc *TickCounter) MaxSecs() uint32 {
	return MaxUnits(tc.MaxTicks(), tc.src.Tickrate(), SecsPerSec)
}

// Restart begins a new epoch and returns the ticks the old epoch had
// accumulated, using a single counter read for both, so no ticks fall into
// the gap between the final query and the reset. On overflow it returns
// ErrOverflow but the new epoch still begins.
func (tc *TickCounter) Restart() (uint32, error) {
	raw := tc.src.Ticks()
	delta, ok := tc.readDeltaFrom(raw)

	if tc.reset != nil {
		tc.reset.Reset()
		tc.startRef = 0
	} else {
		tc.startRef = raw
	}
	if tc.wrap != nil {
		tc.wrap.ClearWrap()
	}
	tc.lastDelta = 0

	wasOverflowed := tc.overflow
	tc.overflow = false
	if wasOverflowed || !ok {
		return 0, ErrOverflow
	}
	return delta, nil
}

func (tc *TickCounter) readDeltaFrom(raw uint32) (delta uint32, ok bool) {
	span := uint64(tc.src.MaxRaw()) + 1
	delta = uint32((uint64(raw) + span - uint64(tc.startRef)) % span)
	if delta < tc.lastDelta {
		return 0, false
	}
	if tc.wrap != nil && tc.wrap.Wrapped() {
		return 0, false
	}
	return delta, true
}
