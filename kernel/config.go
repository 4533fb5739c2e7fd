package kernel

import (
	"fmt"
	"rtos/cpu"
	"rtos/timer"
)

// MaxCapacity : the availability bitmap is one machine word of 64 bits
const MaxCapacity = 64

// FrameWords is the size of the frame a new task starts from: the return
// address into the termination handler (2 words), the interrupt return
// record (2 words) and the general registers.
const FrameWords = 2 + 2 + cpu.GeneralRegisters

// minOuterWords : the context calling Run only stacks its return address
const minOuterWords = 2

// Config holds the constants fixed at the kernel boundary
type Config struct {
	// MaxTasks : size of the process table
	MaxTasks int

	// StackWords : private memory of every slot, in words
	StackWords int

	// TickCycles : scheduler slice, loaded into CCR0
	TickCycles uint16

	// OuterWords : stack of the context that calls Run
	OuterWords int
}

// DefaultConfig returns the table size and slice the demo board runs with
func DefaultConfig() Config {
	return Config{
		MaxTasks:   8,
		StackWords: 64,
		TickCycles: timer.DefaultPeriod,
		OuterWords: 32,
	}
}

// Validate checks the configuration against what the machine can hold
func (c Config) Validate() error {
	switch {
	case c.MaxTasks < 1 || c.MaxTasks > MaxCapacity:
		return fmt.Errorf("%w: MaxTasks %d not in 1..%d", ErrInvalidConfig, c.MaxTasks, MaxCapacity)
	case c.StackWords < FrameWords+8:
		return fmt.Errorf("%w: StackWords %d, need at least %d", ErrInvalidConfig, c.StackWords, FrameWords+8)
	case c.TickCycles == 0:
		return fmt.Errorf("%w: TickCycles must not be 0", ErrInvalidConfig)
	case c.OuterWords < minOuterWords:
		return fmt.Errorf("%w: OuterWords %d, need at least %d", ErrInvalidConfig, c.OuterWords, minOuterWords)
	}
	return nil
}

// RAMWords returns the memory the kernel lays its stacks out in
func (c Config) RAMWords() int {
	return c.MaxTasks*c.StackWords + c.OuterWords
}
