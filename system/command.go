package system

import (
	"fmt"
	"rtos/console"
	"strconv"
	"strings"
)

// defaultTraceLines : dispatches shown by a bare "trace"
const defaultTraceLines = 16

// Exec runs a monitor command and returns its output. It only reads kernel
// snapshots and touches the board, so any goroutine may call it.
func (sys *System) Exec(cmd console.Command) (string, error) {
	switch cmd.Name {
	case "":
		return "", nil
	case "ps":
		return sys.ProcessTable(), nil
	case "regs":
		s := sys.Kernel.Snapshot()
		return s.CPU.DumpRegisters() + "\n", nil
	case "press":
		sys.Board.Button.Press()
		return "button pressed\n", nil
	case "trace":
		n := defaultTraceLines
		if len(cmd.Args) == 1 {
			v, err := strconv.Atoi(cmd.Args[0])
			if err != nil || v < 1 {
				return "", fmt.Errorf("%w: trace [n], n a positive number", console.ErrUsage)
			}
			n = v
		}
		return sys.traceTail(n), nil
	case "hold":
		v, err := strconv.ParseUint(cmd.Args[0], 10, 8)
		if err != nil {
			return "", fmt.Errorf("%w: hold <seconds>, 0..255", console.ErrUsage)
		}
		sys.Board.SetHold(uint32(v))
		return fmt.Sprintf("HoldGreenLED = %d\n", v), nil
	case "lcd":
		return strings.Join(sys.Board.LCD.History(), "\n") + "\n", nil
	case "halt":
		sys.Halt()
		return "halting, waiting for the tasks to finish\n", nil
	case "help":
		return console.Help(), nil
	}
	return "", fmt.Errorf("%w: %s", console.ErrUnknownCommand, cmd.Name)
}

// ProcessTable renders the process table for "ps" and the tasks view
func (sys *System) ProcessTable() string {
	s := sys.Kernel.Snapshot()
	rows := make([][]string, 0, len(s.Procs))
	for _, p := range s.Procs {
		state := "free"
		switch {
		case p.Live && p.ID == s.Current && s.Running:
			state = "running"
		case p.Live:
			state = "ready"
		}
		entry, sp := "-", "-"
		if p.Live {
			entry = fmt.Sprintf("%05x", p.Entry)
			sp = fmt.Sprintf("%05x", p.SP)
		}
		rows = append(rows, []string{strconv.Itoa(p.ID), state, entry, sp, p.Region.String()})
	}
	table := console.FormatTable([]string{"ID", "STATE", "ENTRY", "SP", "STACK"}, rows)
	return table + fmt.Sprintf("%d live, %d switches, %d terminated\n", s.Live, s.Switches, s.Terminated)
}

// Status is the one line summary of the board
func (sys *System) Status() string {
	s := sys.Kernel.Snapshot()
	onOff := func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}
	state := "idle"
	switch {
	case s.Halted:
		state = "halted"
	case s.Running:
		state = "running"
	}
	return fmt.Sprintf("kernel %s | cycles %d | red %s | green %s | hold %ds | LCD [%s]",
		state, s.CPU.Cycles, onOff(sys.Board.Red.On()), onOff(sys.Board.Green.On()),
		sys.Board.Hold(), sys.Board.LCD.Text())
}

func (sys *System) traceTail(n int) string {
	ev := sys.Trace.Events()
	if len(ev) > n {
		ev = ev[len(ev)-n:]
	}
	rows := make([][]string, 0, len(ev))
	for _, e := range ev {
		from := "run"
		if e.From >= 0 {
			from = strconv.Itoa(e.From)
		}
		note := ""
		if e.Exit {
			note = "exit"
		}
		rows = append(rows, []string{strconv.FormatUint(e.Seq, 10), strconv.FormatUint(e.Cycle, 10), from, strconv.Itoa(e.To), note})
	}
	return console.FormatTable([]string{"SEQ", "CYCLE", "FROM", "TO", ""}, rows)
}
