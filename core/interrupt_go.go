//go:build !tinygo

package core

// IrqState is a placeholder for interrupt state on regular Go
type IrqState uintptr

// DisableInterrupts is a no-op on regular Go (for host builds and tests)
func DisableInterrupts() IrqState {
	return 0
}

// RestoreInterrupts restores the interrupt state; no-op on regular Go
func RestoreInterrupts(state IrqState) {
}
