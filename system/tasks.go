package system

import (
	"rtos/board"
	"rtos/kernel"
)

// pollCycles : work a task does between two looks at its peripherals
const pollCycles = 64

// counterTask every second increments the number on the LCD. A push of the
// button scrolls START OVER and restarts the count.
func (sys *System) counterTask(p *kernel.Proc) {
	if id, err := p.Spawn(sys.randomTask); err != nil {
		sys.log.Printf("counter: can't start the random task: %v", err)
	} else {
		sys.log.Printf("counter: started the random task in slot %d", id)
	}

	count := uint(0)
	sys.ta1.Restart(ACLK)
	for !sys.Board.Halted() {
		if sys.ta1.Flagged() {
			sys.ta1.Acknowledge()
			count++
			sys.Board.LCD.ShowNumber(count)
		}
		if sys.Board.Button.Pressed() {
			sys.scrollWords(p, "START OVER")
			count = 0
		}
		p.Step(pollCycles)
		p.Yield()
	}
}

// blinkerTask drives the green LED. It never yields, the tick takes the cpu
// away from it.
func (sys *System) blinkerTask(p *kernel.Proc) {
	green := sys.Board.Green
	green.Set(false)
	count := uint32(0)

	sys.ta2.Restart(ACLK / 2)
	for !sys.Board.Halted() {
		if sys.ta2.Flagged() {
			sys.ta2.Acknowledge()
			green.Toggle()
			count++
		}

		if count >= 6 {
			sys.ta2.Restart(ACLK)
			green.Set(true)
			count = sys.Board.Hold()
			for count > 0 && !sys.Board.Halted() {
				if sys.ta2.Flagged() {
					sys.ta2.Acknowledge()
					count--
				}
				p.Step(pollCycles)
			}
			sys.ta2.Restart(ACLK / 2)
			green.Toggle()
		}
		p.Step(pollCycles)
	}
}

// randomTask every 10 seconds assigns a random value to HoldGreenLED and
// toggles the red LED
func (sys *System) randomTask(p *kernel.Proc) {
	// ACLK/8 counts to 40960 in 10 seconds
	sys.ta3.Restart(40960)
	for !sys.Board.Halted() {
		if sys.ta3.Flagged() {
			sys.Board.SetHold(uint32(sys.rng.Intn(26)))
			sys.ta3.Acknowledge()
			sys.Board.Red.Toggle()
		}
		p.Step(pollCycles)
		p.Yield()
	}
}

// scrollWords moves words across the LCD from right to left, one position
// every 1/8 s
func (sys *System) scrollWords(p *kernel.Proc, words string) {
	delay := sys.cfg.Hz / 8
	for _, frame := range board.Frames(words) {
		for i := 0; i < len(frame); i++ {
			sys.Board.LCD.ShowChar(frame[i], i+1)
		}
		sys.Board.LCD.Commit()
		for waited := 0; waited < delay; waited += pollCycles {
			if sys.Board.Halted() {
				return
			}
			p.Step(pollCycles)
		}
	}
}
