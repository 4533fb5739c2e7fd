package kernel

import "errors"

var (
	// ErrCapacityExceeded : AddTask found no free slot. The table is unchanged.
	ErrCapacityExceeded = errors.New("process table full")

	ErrNotSetup      = errors.New("kernel not set up")
	ErrRunning       = errors.New("kernel already running")
	ErrInvalidConfig = errors.New("invalid kernel config")
	ErrNilEntry      = errors.New("nil task entry point")

	// ErrHalted : a fault stopped the machine, the kernel can't be used again
	ErrHalted = errors.New("kernel halted")
)
