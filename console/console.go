package console

/*
group all Status console related functions here
The idea is to run the console in a goroutine

requested functionality:
	- autoscroll buffer
	- display kernel status messages and the LCD of the demo board
	- requested commands (see command.go):
	  - PS - show the process table
	  - REGS - show the cpu registers
	  - PRESS - push the board button
	  - TRACE [n] - show the last n dispatches
	  - HOLD <s> - set the green LED hold time
	  - HALT - ask every task to finish, which makes Run return
	  - HELP

	- other elements of the system should be able to log information to console
	  using string channel
*/

// Console is where the system writes its status lines
type Console interface {
	WriteConsole(msg string) error
}
