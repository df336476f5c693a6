// Tick/time-unit conversion
// All arithmetic widens to uint64 so no intermediate product can wrap
package core

import "math"

// Units per second for the three supported time units
const (
	MicrosPerSec = 1000000
	MillisPerSec = 1000
	SecsPerSec   = 1
)

// TicksToUnits converts a tick count to time units, rounded down. The unit
// value is range-checked independently of the tick count: a valid tick
// count can still overflow a fine-grained unit.
func TicksToUnits(ticks, rate uint32, unitsPerSec uint64) (uint32, error) {
	v := uint64(ticks) * unitsPerSec / uint64(rate)
	if v > math.MaxUint32 {
		return 0, ErrOverflow
	}
	return uint32(v), nil
}

// TicksToMicros converts ticks to microseconds, rounded down.
func TicksToMicros(ticks, rate uint32) (uint32, error) {
	return TicksToUnits(ticks, rate, MicrosPerSec)
}

// TicksToMillis converts ticks to milliseconds, rounded down.
func TicksToMillis(ticks, rate uint32) (uint32, error) {
	return TicksToUnits(ticks, rate, MillisPerSec)
}

// TicksToSecs converts ticks to seconds, rounded down.
func TicksToSecs(ticks, rate uint32) (uint32, error) {
	return TicksToUnits(ticks, rate, SecsPerSec)
}

// UnitsToTicks converts a time-unit value to ticks, rounded up, so a
// deadline built from it never fires early. The result is returned as
// uint64; the caller checks it against the counter's tick bound.
func UnitsToTicks(value, rate uint32, unitsPerSec uint64) uint64 {
	return (uint64(value)*uint64(rate) + unitsPerSec - 1) / unitsPerSec
}

// MaxUnits returns the largest unit value representable within maxTicks,
// rounded down and clamped to the uint32 range.
func MaxUnits(maxTicks, rate uint32, unitsPerSec uint64) uint32 {
	v := uint64(maxTicks) * unitsPerSec / uint64(rate)
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
