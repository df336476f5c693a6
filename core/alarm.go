// Wait-until-deadline primitive layered on TickCounter
package core

import (
	"context"
	"time"
)

// defaultPollInterval bounds how far ahead the poll fallback sleeps when
// the source cannot schedule wakes itself, so a Timer restart during a
// wait is picked up promptly.
const defaultPollInterval = time.Millisecond

// TickAlarm adds deadline waits to a TickCounter. The wait-until form is
// stateless: each call computes its tick target afresh from the current
// epoch and keeps no armed state between calls.
//
// Restarting the timer while a wait is in flight does not cancel it; the
// wait re-bases onto the new epoch and resolves once the new epoch reaches
// the target. Cancel via the context to abandon a wait outright.
type TickAlarm struct {
	*TickCounter
	waker Waker // nil when the source cannot schedule wakes
	poll  time.Duration
}

// NewTickAlarm creates an alarm over src and starts its first epoch. If
// src implements Waker, waits suspend on hardware or software wake events;
// otherwise they poll the counter internally.
func NewTickAlarm(src TickSource) *TickAlarm {
	a := &TickAlarm{
		TickCounter: NewTickCounter(src),
		poll:        defaultPollInterval,
	}
	a.waker, _ = src.(Waker)
	return a
}

// WaitUntilTicks suspends until the current epoch has accumulated target
// ticks. Returns immediately if the target is already reached, and fails
// with ErrOverflow without suspending if the target exceeds the counter's
// range.
func (a *TickAlarm) WaitUntilTicks(ctx context.Context, target uint32) error {
	if target > a.MaxTicks() {
		return ErrOverflow
	}
	for {
		// Snapshot the absolute position before the elapsed read. Ticks
		// landing between the two reads shrink the registered deadline,
		// so the wake fires early and the loop re-checks; a deadline
		// computed the other way around could land past the target and
		// strand the wait.
		var abs uint64
		if a.waker != nil {
			abs = a.waker.Now()
		}
		cur, err := a.ElapsedTicks()
		if err != nil {
			return err
		}
		if cur >= target {
			return nil
		}

		var wake <-chan struct{}
		if a.waker != nil {
			wake = a.waker.NotifyAt(abs + uint64(target-cur))
		} else {
			wake = a.pollWake(target - cur)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		}
	}
}

// WaitUntilMicros suspends until target microseconds have elapsed since
// Start. The deadline is converted to ticks rounding up, so the wait never
// resolves before the requested time has passed.
func (a *TickAlarm) WaitUntilMicros(ctx context.Context, target uint32) error {
	return a.waitUnits(ctx, target, MicrosPerSec)
}

// WaitUntilMillis suspends until target milliseconds have elapsed since
// Start, rounding the deadline up to whole ticks.
func (a *TickAlarm) WaitUntilMillis(ctx context.Context, target uint32) error {
	return a.waitUnits(ctx, target, MillisPerSec)
}

// WaitUntilSecs suspends until target seconds have elapsed since Start,
// rounding the deadline up to whole ticks.
func (a *TickAlarm) WaitUntilSecs(ctx context.Context, target uint32) error {
	return a.waitUnits(ctx, target, SecsPerSec)
}

func (a *TickAlarm) waitUnits(ctx context.Context, target uint32, unitsPerSec uint64) error {
	ticks := UnitsToTicks(target, a.Tickrate(), unitsPerSec)
	if ticks > uint64(a.MaxTicks()) {
		return ErrOverflow
	}
	return a.WaitUntilTicks(ctx, uint32(ticks))
}

// pollWake sleeps toward a deadline delta ticks ahead on sources that
// cannot schedule wakes. The sleep is bounded so the wait loop re-checks
// the counter promptly.
func (a *TickAlarm) pollWake(delta uint32) <-chan struct{} {
	d := ticksToDuration(uint64(delta), a.Tickrate())
	if d > a.poll {
		d = a.poll
	}
	ch := make(chan struct{})
	time.AfterFunc(d, func() { close(ch) })
	return ch
}

// ticksToDuration converts ticks to a time.Duration, rounded up.
func ticksToDuration(ticks uint64, rate uint32) time.Duration {
	ns := (ticks*uint64(time.Second) + uint64(rate) - 1) / uint64(rate)
	return time.Duration(ns)
}
