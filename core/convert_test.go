package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicksToUnitsFloorConsistency(t *testing.T) {
	// Converting ticks to a fine unit and truncating must agree with
	// converting directly to the coarse unit.
	rates := []uint32{1, 3, 1000, 32768, 1000000, 12000000}
	ticks := []uint32{0, 1, 2, 999, 1000, 1001, 32767, 2500000, 4294967295}

	for _, rate := range rates {
		for _, tk := range ticks {
			micros, errU := TicksToMicros(tk, rate)
			millis, errM := TicksToMillis(tk, rate)
			secs, errS := TicksToSecs(tk, rate)

			// Seconds always fit: ticks and rate are both 32-bit.
			require.NoError(t, errS, "rate=%d ticks=%d", rate, tk)

			// A representable fine unit implies a representable coarse one.
			if errU == nil {
				require.NoError(t, errM, "rate=%d ticks=%d", rate, tk)
				assert.Equal(t, millis, micros/1000, "rate=%d ticks=%d", rate, tk)
			}
			if errM == nil {
				assert.Equal(t, secs, millis/1000, "rate=%d ticks=%d", rate, tk)
			}
		}
	}
}

func TestTicksToUnitsRoundsDown(t *testing.T) {
	// 1500 ticks at 1kHz is 1.5s: reported as 1s, never 2.
	secs, err := TicksToSecs(1500, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), secs)

	// 999 ticks at 1kHz is just under a second.
	secs, err = TicksToSecs(999, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), secs)
}

func TestTicksToUnitsOverflow(t *testing.T) {
	// A tick count that is itself valid can still overflow a fine unit:
	// 5000 ticks at 1Hz is 5e9 microseconds, beyond uint32.
	_, err := TicksToMicros(5000, 1)
	assert.ErrorIs(t, err, ErrOverflow)

	// The same count fits coarser units.
	millis, err := TicksToMillis(5000, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(5000000), millis)
}

func TestUnitsToTicksRoundsUp(t *testing.T) {
	cases := []struct {
		value, rate uint32
		unitsPerSec uint64
		want        uint64
	}{
		{1000, 1000, MillisPerSec, 1000},  // exact
		{1, 999, MillisPerSec, 1},         // 0.999 ticks -> 1
		{3, 1000000, SecsPerSec, 3000000}, // 3s at 1MHz, exact
		{1, 1, MicrosPerSec, 1},           // far below resolution, still 1
		{0, 1000, MillisPerSec, 0},
		{math.MaxUint32, math.MaxUint32, SecsPerSec, math.MaxUint32 * uint64(math.MaxUint32)},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, UnitsToTicks(c.value, c.rate, c.unitsPerSec),
			"value=%d rate=%d per=%d", c.value, c.rate, c.unitsPerSec)
	}
}

func TestUnitsToTicksNeverEarly(t *testing.T) {
	// Round-tripping a deadline through ticks must never come out below
	// the requested value.
	rates := []uint32{1, 3, 999, 1000, 32768, 1000000}
	values := []uint32{0, 1, 2, 999, 1000, 123456}

	for _, rate := range rates {
		for _, v := range values {
			ticks := UnitsToTicks(v, rate, MillisPerSec)
			if ticks > math.MaxUint32 {
				continue
			}
			back, err := TicksToMillis(uint32(ticks), rate)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, back, v, "rate=%d value=%d", rate, v)
		}
	}
}

func TestMaxUnitsClamps(t *testing.T) {
	// 2^32-1 ticks at 1Hz is far more microseconds than uint32 holds.
	assert.Equal(t, uint32(math.MaxUint32), MaxUnits(math.MaxUint32, 1, MicrosPerSec))

	// In range: 999 ticks at 1kHz is 999ms.
	assert.Equal(t, uint32(999), MaxUnits(999, 1000, MillisPerSec))
	assert.Equal(t, uint32(0), MaxUnits(999, 1000, SecsPerSec))
}
