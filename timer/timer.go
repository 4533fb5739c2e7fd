package timer

import (
	"rtos/interrupts"
	"sync/atomic"
)

// Timer_A mode control (MC field of TAxCTL)
const (
	ModeStop = 0
	ModeUp   = 1
)

// DefaultPeriod is the scheduler slice in SMCLK cycles. Too short and the
// switch overhead eats the slice, too long and tasks respond slowly.
const DefaultPeriod = 900

// Timer is a Timer_A instance driving a CCR0 interrupt in UP mode.
type Timer struct {
	// CCR0 : capture/compare 0, the period in UP mode
	CCR0 uint16

	// TAR : the counter
	TAR uint16

	// Divider : input clock cycles per count (ID and source select). 0 or 1
	// counts every cycle.
	Divider int
	pre     int

	mode int
	ccie bool

	// CCIFG latch. Level triggered: setting it twice is the same as once.
	ccifg atomic.Bool

	expirations uint64
	vector      uint16
}

// New returns a stopped Timer0_A
func New() *Timer {
	return &Timer{vector: interrupts.TimerA0}
}

// NewDivided returns a stopped timer counting once every div cycles. The
// demo tasks poll these for their flag and never enable the interrupt.
func NewDivided(vector uint16, div int) *Timer {
	return &Timer{vector: vector, Divider: div}
}

// Configure loads the period and clears the counter
func (t *Timer) Configure(period uint16) {
	t.CCR0 = period
	t.TAR = 0
	t.pre = 0
}

// Restart is TAxCTL = TACLR | MC_UP with interrupts left off: clear the
// counter and the flag, count up to CCR0.
func (t *Timer) Restart(period uint16) {
	t.Configure(period)
	t.ccifg.Store(false)
	t.mode = ModeUp
}

// Start sets UP mode and enables the CCR0 interrupt
func (t *Timer) Start() {
	t.mode = ModeUp
	t.ccie = true
}

// Stop halts counting and masks the CCR0 interrupt
func (t *Timer) Stop() {
	t.mode = ModeStop
	t.ccie = false
	t.ccifg.Store(false)
}

// Running reports whether the timer counts
func (t *Timer) Running() bool {
	return t.mode == ModeUp
}

// Advance counts cycles of the timer clock. Reaching CCR0 wraps the counter
// and latches CCIFG.
func (t *Timer) Advance(cycles int) {
	if t.mode != ModeUp || t.CCR0 == 0 {
		return
	}
	for ; cycles > 0; cycles-- {
		if t.Divider > 1 {
			t.pre++
			if t.pre < t.Divider {
				continue
			}
			t.pre = 0
		}
		t.TAR++
		if t.TAR >= t.CCR0 {
			t.TAR = 0
			t.expirations++
			t.ccifg.Store(true)
		}
	}
}

// Trigger forces CCIFG, requesting the interrupt as if the period expired.
// The counter is left alone.
func (t *Timer) Trigger() {
	t.ccifg.Store(true)
}

// Flagged returns the raw CCIFG latch
func (t *Timer) Flagged() bool {
	return t.ccifg.Load()
}

// Pending reports an interrupt request: CCIFG latched and CCIE set
func (t *Timer) Pending() bool {
	return t.ccie && t.ccifg.Load()
}

// Acknowledge clears CCIFG. CCR0 flags reset when the interrupt is accepted.
func (t *Timer) Acknowledge() {
	t.ccifg.Store(false)
}

// Vector returns the interrupt vector slot
func (t *Timer) Vector() uint16 {
	return t.vector
}

// Expirations counts natural period expiries (not triggers)
func (t *Timer) Expirations() uint64 {
	return t.expirations
}
