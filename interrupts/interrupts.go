package interrupts

import "fmt"

/**
 * Separate package exists mainly in order to avoid cyclic imports
 */

// interrupt vectors, numbered as the vector table slots of the FR6989:

// Reset : power up / brown out / watchdog
const Reset = 63

// SysNMI : vacant memory access, illegal fetch and other system faults
const SysNMI = 62

// TimerA0 : Timer0_A3 CCR0 - the scheduler tick
const TimerA0 = 44

// TimerA1 : Timer0_A3 CCR1, CCR2, TA
const TimerA1 = 43

// Timer1A0, Timer2A0, Timer3A0 : CCR0 of the timers the demo tasks poll
const (
	Timer1A0 = 40
	Timer2A0 = 37
	Timer3A0 = 34
)

// VectorCount : size of the vector table
const VectorCount = 64

// Fault is raised (as a panic value) when the machine or the kernel reaches
// a state it can't continue from. Nothing between the faulting instruction and
// the kernel's Run recovers it.
type Fault struct {
	Vector uint16
	Msg    string
}

func (f Fault) Error() string {
	return fmt.Sprintf("fault (vector %d): %s", f.Vector, f.Msg)
}

// Raise panics with a Fault
func Raise(vector uint16, format string, args ...any) {
	panic(Fault{Vector: vector, Msg: fmt.Sprintf(format, args...)})
}
