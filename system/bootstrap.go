package system

import (
	"rtos/kernel"
)

/*
	Demo application, as shipped on the board:
	- counter task: counts seconds on the LCD, scrolls START OVER when the
	  button is pushed. Starts the random task from its own body.
	- blinker task: 1 Hz 50% duty cycle on the green LED, every three seconds
	  holds it on for HoldGreenLED seconds.
	- random task: every 10 seconds picks a new HoldGreenLED and toggles the
	  red LED.
*/

// Boot sets the kernel up, registers the demo tasks and runs them
func (sys *System) Boot() (uint16, error) {
	if err := sys.Kernel.Setup(); err != nil {
		return 0, err
	}
	for _, t := range []kernel.Func{sys.counterTask, sys.blinkerTask} {
		if _, err := sys.Kernel.AddTask(t); err != nil {
			return 0, err
		}
	}
	_ = sys.console.WriteConsole("Starting RTOS..")
	return sys.Kernel.Run()
}
