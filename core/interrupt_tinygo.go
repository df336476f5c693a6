//go:build tinygo

package core

import "runtime/interrupt"

// IrqState is the saved interrupt state on TinyGo targets
type IrqState = interrupt.State

// DisableInterrupts disables interrupts and returns the previous state.
// Hardware backends bracket compare-register updates with this so an alarm
// interrupt cannot observe a half-programmed wake.
func DisableInterrupts() IrqState {
	return interrupt.Disable()
}

// RestoreInterrupts restores the interrupt state
func RestoreInterrupts(state IrqState) {
	interrupt.Restore(state)
}
