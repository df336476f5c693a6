package core

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// settle gives a blocked waiter goroutine time to park before the test
// advances simulated time.
const settle = 10 * time.Millisecond

func TestWaitAlreadyReachedReturnsImmediately(t *testing.T) {
	clk := NewSimClock(1000000, 0)
	a := NewTickAlarm(clk)
	clk.Advance(2500000)

	// 2s at 1MHz is 2M ticks, already passed. No suspension: simulated
	// time never advances during the call, so a suspended wait could not
	// return at all.
	require.NoError(t, a.WaitUntilSecs(context.Background(), 2))
	require.NoError(t, a.WaitUntilMicros(context.Background(), 2500000))
	require.NoError(t, a.WaitUntilTicks(context.Background(), 1))
}

func TestWaitSuspendsUntilDeadline(t *testing.T) {
	clk := NewSimClock(1000000, 0)
	a := NewTickAlarm(clk)
	clk.Advance(2500000)

	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilSecs(context.Background(), 3)
	}()

	// One tick short of the 3M-tick deadline: still suspended.
	clk.Advance(499999)
	select {
	case err := <-done:
		t.Fatalf("wait resolved early at %d ticks: %v", clk.Total(), err)
	case <-time.After(settle):
	}

	clk.Advance(1)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not resolve at deadline")
	}
	assert.Equal(t, uint64(3000000), clk.Total())
}

func TestWaitCeilingRoundsDeadlineUp(t *testing.T) {
	// 1ms at 999Hz is 0.999 ticks: the wait must not resolve until a
	// whole tick has passed.
	clk := NewSimClock(999, 0)
	a := NewTickAlarm(clk)

	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilMillis(context.Background(), 1)
	}()

	select {
	case err := <-done:
		t.Fatalf("wait resolved before any tick: %v", err)
	case <-time.After(settle):
	}

	clk.Advance(1)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait did not resolve")
	}
}

func TestWaitUnreachableDeadlineFailsWithoutSuspending(t *testing.T) {
	// max_ticks = 999 at 1kHz: one full second is out of range.
	clk := NewSimClock(1000, 999)
	a := NewTickAlarm(clk)

	err := a.WaitUntilMillis(context.Background(), 1000)
	assert.ErrorIs(t, err, ErrOverflow)

	err = a.WaitUntilTicks(context.Background(), 1000)
	assert.ErrorIs(t, err, ErrOverflow)

	// The boundary itself is reachable.
	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilMillis(context.Background(), 999)
	}()
	clk.Advance(999)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("boundary wait did not resolve")
	}
}

func TestWaitCancelLeavesEpochIntact(t *testing.T) {
	clk := NewSimClock(1000, 0)
	a := NewTickAlarm(clk)
	clk.Advance(100)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilTicks(ctx, 5000)
	}()

	time.Sleep(settle)
	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("cancelled wait did not return")
	}

	// The abandoned wait consumed nothing: queries behave as if it was
	// never armed.
	ticks, err := a.ElapsedTicks()
	require.NoError(t, err)
	assert.Equal(t, uint32(100), ticks)

	a.Start()
	clk.Advance(42)
	ticks, err = a.ElapsedTicks()
	require.NoError(t, err)
	assert.Equal(t, uint32(42), ticks)
}

// stepSource delegates to a SimClock but advances it by step ticks right
// after a raw read, modelling ticks that land between the wait loop's
// elapsed read and its wake registration.
type stepSource struct {
	*SimClock
	armed atomic.Bool
	step  uint32
}

func (s *stepSource) Ticks() uint32 {
	raw := s.SimClock.Ticks()
	if s.armed.CompareAndSwap(true, false) {
		s.Advance(s.step)
	}
	return raw
}

func TestWaitDeadlineReachedDuringArming(t *testing.T) {
	// The counter reaches the 500-tick deadline immediately after the
	// wait's first elapsed read and never moves again. The wake must be
	// registered against a position taken before that read, or it lands
	// past the deadline and the wait strands.
	src := &stepSource{SimClock: NewSimClock(1000, 0), step: 500}
	a := NewTickAlarm(src)
	src.armed.Store(true)

	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilTicks(context.Background(), 500)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("wait stranded at the deadline")
	}
	assert.Equal(t, uint64(500), src.Total())
}

// pollSource has no Waker, forcing the alarm onto its internal poll
// fallback. Fields are atomic because the test mutates them while the
// wait loop reads them.
type pollSource struct {
	ticks   atomic.Uint32
	wrapped atomic.Bool
}

func (s *pollSource) Ticks() uint32    { return s.ticks.Load() }
func (s *pollSource) MaxRaw() uint32   { return math.MaxUint32 }
func (s *pollSource) Tickrate() uint32 { return 1000 }
func (s *pollSource) Wrapped() bool    { return s.wrapped.Load() }
func (s *pollSource) ClearWrap()       {}
func (s *pollSource) Reset()           { s.ticks.Store(0) }

func TestWaitPollFallbackReachesDeadline(t *testing.T) {
	src := &pollSource{}
	a := NewTickAlarm(src)

	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilTicks(context.Background(), 500)
	}()

	time.Sleep(settle)
	src.ticks.Store(500)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("poll-fallback wait did not resolve")
	}
}

func TestWaitOverflowWhileSuspended(t *testing.T) {
	src := &pollSource{}
	a := NewTickAlarm(src)

	done := make(chan error, 1)
	go func() {
		done <- a.WaitUntilTicks(context.Background(), 500)
	}()

	time.Sleep(settle)
	src.wrapped.Store(true)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrOverflow)
	case <-time.After(time.Second):
		t.Fatal("overflowed wait did not resolve")
	}
}
