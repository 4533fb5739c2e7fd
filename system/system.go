package system

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"rtos/board"
	"rtos/console"
	"rtos/cpu"
	"rtos/interrupts"
	"rtos/kernel"
	"rtos/memory"
	"rtos/timer"
	"rtos/trace"
	"sync/atomic"
	"time"
)

// ACLK : the crystal clock the demo tasks time themselves with
const ACLK = 32768

// DefaultHz : SMCLK of the emulated board
const DefaultHz = 1000000

// Config holds everything the board is built from
type Config struct {
	Kernel kernel.Config

	// Hz : emulated SMCLK. Peripheral timers divide it down to ACLK.
	Hz int

	// Paced runs the cpu in real time instead of as fast as the host can
	Paced bool

	// Budget : cycles after which the board is halted, 0 for no limit
	Budget uint64

	// TraceLimit : dispatch events kept by the recorder
	TraceLimit int

	// Seed for the random task, 0 picks one from the clock
	Seed int64
}

// DefaultConfig returns the configuration of the demo board
func DefaultConfig() Config {
	return Config{
		Kernel:     kernel.DefaultConfig(),
		Hz:         DefaultHz,
		Paced:      true,
		TraceLimit: trace.DefaultLimit,
	}
}

// System definition.
type System struct {
	CPU    *cpu.CPU
	Kernel *kernel.Kernel
	Board  *board.Board
	Trace  *trace.Recorder
	RAM    *memory.RAM

	// TA1: counter task, TA2: blinker, TA3: random task
	ta1, ta2, ta3 *timer.Timer

	cfg     Config
	console console.Console
	log     *log.Logger
	rng     *rand.Rand
	budget  *watchdog

	running atomic.Bool
}

// InitializeSystem builds the emulated board and the kernel on top of it
func InitializeSystem(c console.Console, cfg Config, log *log.Logger) (*System, error) {
	if cfg.Hz <= 0 {
		cfg.Hz = DefaultHz
	}
	sys := new(System)
	sys.cfg = cfg
	sys.console = c
	sys.log = log

	sys.RAM = memory.New(memory.RAMBase, cfg.Kernel.RAMWords())
	sys.CPU = cpu.New(sys.RAM)
	if cfg.Paced {
		sys.CPU.Hz = cfg.Hz
	}

	k, err := kernel.New(sys.CPU, timer.New(), sys.RAM, cfg.Kernel, log)
	if err != nil {
		return nil, fmt.Errorf("initializing kernel: %w", err)
	}
	sys.Kernel = k
	sys.Trace = trace.NewRecorder(cfg.TraceLimit)
	k.Trace(sys.Trace)

	sys.Board = board.New(c)

	div := cfg.Hz / ACLK
	if div < 1 {
		div = 1
	}
	sys.ta1 = timer.NewDivided(interrupts.Timer1A0, div)
	sys.ta2 = timer.NewDivided(interrupts.Timer2A0, div)
	// ID = /8
	sys.ta3 = timer.NewDivided(interrupts.Timer3A0, div*8)
	for _, t := range []*timer.Timer{sys.ta1, sys.ta2, sys.ta3} {
		sys.CPU.Attach(t)
	}

	sys.budget = &watchdog{limit: cfg.Budget, board: sys.Board}
	sys.CPU.Attach(sys.budget)

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	sys.rng = rand.New(rand.NewSource(seed))

	_ = sys.console.WriteConsole(fmt.Sprintf("Initializing MSP430 board: %d Hz, %d task slots of %d words.",
		cfg.Hz, cfg.Kernel.MaxTasks, cfg.Kernel.StackWords))
	return sys, nil
}

// Run boots the demo application and blocks until every task terminated.
// Cancelling ctx halts the board, which lets the tasks finish.
func (sys *System) Run(ctx context.Context) (uint16, error) {
	if !sys.running.CompareAndSwap(false, true) {
		return 0, kernel.ErrRunning
	}
	defer sys.running.Store(false)

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			sys.log.Printf("context done: %v, halting board", ctx.Err())
			sys.Board.Halt()
		case <-stop:
		}
	}()

	status, err := sys.Boot()
	if err != nil {
		_ = sys.console.WriteConsole(fmt.Sprintf("kernel stopped: %v", err))
		return status, err
	}
	_ = sys.console.WriteConsole(fmt.Sprintf("All tasks terminated, status %d.", status))
	return status, nil
}

// Halt asks the tasks to finish
func (sys *System) Halt() {
	sys.Board.Halt()
}

// Running reports whether the kernel is dispatching tasks
func (sys *System) Running() bool {
	return sys.running.Load()
}

// Config returns the configuration the system was built with
func (sys *System) Config() Config {
	return sys.cfg
}

// watchdog halts the board after a number of cycles
type watchdog struct {
	limit uint64
	used  uint64
	board *board.Board
}

func (w *watchdog) Advance(cycles int) {
	if w.limit == 0 || w.used >= w.limit {
		return
	}
	w.used += uint64(cycles)
	if w.used >= w.limit {
		w.board.Halt()
	}
}
