//go:build rp2040 || rp2350

package main

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	"device/rp"

	"tickhal/core"
)

// RP2040/RP2350 TIMER peripheral memory map
// The peripheral is a 64-bit microsecond counter with four 32-bit alarm
// compare registers; alarm N fires when the low word equals ALARMn.
const (
	timerBase     = 0x40054000
	timerALARM0   = timerBase + 0x10 // Alarm 0 compare value
	timerARMED    = timerBase + 0x20 // Alarm armed bits (write 1 to disarm)
	timerTIMERAWH = timerBase + 0x24 // Raw counter high word, no side effects
	timerTIMERAWL = timerBase + 0x28 // Raw counter low word, no side effects
	timerINTR     = timerBase + 0x34 // Raw interrupts (write 1 to clear)
	timerINTE     = timerBase + 0x38 // Interrupt enable
)

var (
	alarm0   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerALARM0)))
	armed    = (*volatile.Register32)(unsafe.Pointer(uintptr(timerARMED)))
	rawHigh  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWH)))
	rawLow   = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))
	timerINT = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTR)))
	timerIE  = (*volatile.Register32)(unsafe.Pointer(uintptr(timerINTE)))
)

// hwTicksPerSec is the TIMER peripheral rate; it counts microseconds.
const hwTicksPerSec = 1000000

// hwTimer exposes the free-running TIMER peripheral as a core.TickSource
// and schedules wakes on the ALARM0 compare match.
type hwTimer struct {
	wakes core.WakeList
}

var systemTimer hwTimer

// initSystemTimer enables the ALARM0 interrupt path.
func initSystemTimer() *hwTimer {
	timerIE.SetBits(1 << 0)
	intr := interrupt.New(rp.IRQ_TIMER_IRQ_0, alarmHandler)
	intr.Enable()
	return &systemTimer
}

// Ticks returns the low 32 bits of the microsecond counter.
func (t *hwTimer) Ticks() uint32 {
	return rawLow.Get()
}

// MaxRaw reports the full 32-bit range of the low word.
func (t *hwTimer) MaxRaw() uint32 {
	return ^uint32(0)
}

// Tickrate returns the fixed 1 MHz peripheral rate.
func (t *hwTimer) Tickrate() uint32 {
	return hwTicksPerSec
}

// Uptime reads the full 64-bit counter. High must be read on both sides of
// low to catch a rollover mid-read.
func (t *hwTimer) Uptime() uint64 {
	for {
		high1 := rawHigh.Get()
		low := rawLow.Get()
		high2 := rawHigh.Get()
		if high1 == high2 {
			return uint64(high1)<<32 | uint64(low)
		}
	}
}

// Now implements core.Waker: the absolute microsecond position.
func (t *hwTimer) Now() uint64 {
	return t.Uptime()
}

// NotifyAt implements core.Waker on the ALARM0 compare match. The wake
// list is touched from both task code and the alarm handler, so every
// task-side mutation runs with interrupts masked; the handler can never
// land in the middle of an insert or find the list's lock held.
func (t *hwTimer) NotifyAt(at uint64) <-chan struct{} {
	state := core.DisableInterrupts()
	ch := t.wakes.Add(at)
	t.armNext()
	core.RestoreInterrupts(state)
	return ch
}

// armNext programs ALARM0 for the earliest pending wake. The compare
// matches on the low word only: a target that slipped into the past
// before the compare was written would not match again for 2^32 µs, so
// re-read the counter after arming and fire any passed wake directly.
// Runs with interrupts masked, or from the alarm handler itself.
func (t *hwTimer) armNext() {
	for {
		next, ok := t.wakes.NextWake()
		if !ok {
			return
		}
		alarm0.Set(uint32(next))
		if t.Uptime() < next {
			return
		}
		armed.Set(1 << 0)
		t.wakes.Dispatch(t.Uptime())
	}
}

func alarmHandler(interrupt.Interrupt) {
	// Disarm and clear the edge before dispatching so a re-arm inside
	// Dispatch is not lost.
	armed.Set(1 << 0)
	timerINT.Set(1 << 0)
	systemTimer.wakes.Dispatch(systemTimer.Uptime())
	systemTimer.armNext()
}
