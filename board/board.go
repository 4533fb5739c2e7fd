package board

import (
	"sync/atomic"
)

// DefaultHold : seconds the green LED is held on every 3 seconds at power up
const DefaultHold = 3

// Display is where the LCD mirrors what it shows. console.Console is one.
type Display interface {
	WriteConsole(msg string) error
}

// Board groups the peripherals of the demo board. Tasks drive them, the
// monitor reads them and presses the button from other goroutines.
type Board struct {
	Red    *LED // P1.0
	Green  *LED // P9.7
	LCD    *LCD
	Button *Button // P1.1

	// HoldGreenLED, shared between the blinker and the random task
	hold atomic.Uint32

	halted atomic.Bool
}

// New returns a board with every output off. LCD updates are mirrored to d
// when it's not nil.
func New(d Display) *Board {
	b := &Board{
		Red:    &LED{name: "red"},
		Green:  &LED{name: "green"},
		LCD:    NewLCD(d),
		Button: &Button{},
	}
	b.hold.Store(DefaultHold)
	return b
}

// Hold returns HoldGreenLED
func (b *Board) Hold() uint32 {
	return b.hold.Load()
}

// SetHold stores HoldGreenLED
func (b *Board) SetHold(s uint32) {
	b.hold.Store(s)
}

// Halt asks every task to finish. The tasks poll it, so the kernel winds
// down through normal termination.
func (b *Board) Halt() {
	b.halted.Store(true)
}

func (b *Board) Halted() bool {
	return b.halted.Load()
}

// LED is a single output pin driving a LED
type LED struct {
	name    string
	on      atomic.Bool
	toggles atomic.Uint64
}

func (l *LED) Name() string {
	return l.name
}

func (l *LED) On() bool {
	return l.on.Load()
}

// Set drives the pin. A change of state counts as a toggle.
func (l *LED) Set(on bool) {
	if l.on.Swap(on) != on {
		l.toggles.Add(1)
	}
}

// Toggle is P1OUT ^= BIT
func (l *LED) Toggle() {
	l.Set(!l.On())
}

// Toggles returns how many times the LED changed state
func (l *LED) Toggles() uint64 {
	return l.toggles.Load()
}

// Button is an active low push button. A press is latched until a task
// reads it.
type Button struct {
	pressed atomic.Bool
	presses atomic.Uint64
}

// Press pushes the button
func (b *Button) Press() {
	b.pressed.Store(true)
	b.presses.Add(1)
}

// Pressed reads and releases a latched press
func (b *Button) Pressed() bool {
	return b.pressed.Swap(false)
}

// Presses returns the number of presses so far
func (b *Button) Presses() uint64 {
	return b.presses.Load()
}
