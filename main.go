package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"rtos/console"
	"rtos/logger"
	"rtos/system"
	"rtos/trace"
	"syscall"

	"github.com/jroimartin/gocui"
	"github.com/mattn/go-tty"
	"golang.org/x/sync/errgroup"
)

type options struct {
	logPath  string
	headless bool
	tracePNG string
	cfg      system.Config
}

func parseFlags() options {
	var o options
	o.cfg = system.DefaultConfig()
	unpaced := false
	tick := uint(o.cfg.Kernel.TickCycles)

	flag.StringVar(&o.logPath, "log", "", "log file, stdout in headless mode when empty")
	flag.BoolVar(&o.headless, "headless", false, "no monitor, read commands from the terminal")
	flag.StringVar(&o.tracePNG, "trace-png", "", "render the dispatch timeline to this PNG at exit")
	flag.IntVar(&o.cfg.Kernel.MaxTasks, "tasks", o.cfg.Kernel.MaxTasks, "process table size")
	flag.IntVar(&o.cfg.Kernel.StackWords, "stack", o.cfg.Kernel.StackWords, "private memory per task, in words")
	flag.UintVar(&tick, "tick", tick, "scheduler slice in cycles")
	flag.IntVar(&o.cfg.Hz, "hz", o.cfg.Hz, "emulated SMCLK")
	flag.BoolVar(&unpaced, "unpaced", false, "run as fast as the host can")
	flag.Uint64Var(&o.cfg.Budget, "budget", 0, "halt the board after this many cycles, 0 runs until halted")
	flag.IntVar(&o.cfg.TraceLimit, "trace-limit", o.cfg.TraceLimit, "dispatch events kept for the trace")
	flag.Int64Var(&o.cfg.Seed, "seed", 0, "seed of the random task")
	flag.Parse()

	o.cfg.Paced = !unpaced
	o.cfg.Kernel.TickCycles = uint16(tick)
	return o
}

func main() {
	o := parseFlags()
	if err := o.cfg.Kernel.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		sys *system.System
		err error
	)
	if o.headless {
		sys, err = runHeadless(ctx, o)
	} else {
		sys, err = runMonitor(ctx, o)
	}
	if sys != nil && o.tracePNG != "" {
		snap := sys.Kernel.Snapshot()
		if rerr := trace.Render(o.tracePNG, sys.Trace.Events(), o.cfg.Kernel.MaxTasks, snap.CPU.Cycles); rerr != nil {
			log.Printf("trace: %v", rerr)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(o options) *log.Logger {
	if o.logPath == "" && !o.headless {
		// stdout belongs to the monitor
		return logger.Discard()
	}
	return logger.New(o.logPath)
}

// runHeadless writes the console to stdout and reads monitor commands from
// the controlling terminal
func runHeadless(ctx context.Context, o options) (*system.System, error) {
	cons := console.NewSimple(os.Stdout)
	defer cons.Close()

	sys, err := system.InitializeSystem(cons, o.cfg, newLogger(o))
	if err != nil {
		return nil, err
	}

	// the reader can't be interrupted; it goes away with the process
	go readCommands(sys, cons)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		status, err := sys.Run(ctx)
		if err != nil {
			return err
		}
		if status != 0 {
			return fmt.Errorf("run returned status %d", status)
		}
		return nil
	})
	return sys, g.Wait()
}

func readCommands(sys *system.System, cons console.Console) {
	t, err := tty.Open()
	if err != nil {
		_ = cons.WriteConsole(fmt.Sprintf("no terminal, commands disabled: %v", err))
		return
	}
	defer t.Close()

	for {
		line, err := t.ReadString()
		if err != nil {
			return
		}
		reply, err := execLine(sys, line)
		if err != nil {
			reply = err.Error()
		}
		_ = cons.WriteConsole(reply)
	}
}

func execLine(sys *system.System, line string) (string, error) {
	cmd, err := console.ParseCommand(line)
	if err != nil {
		return "", err
	}
	return sys.Exec(cmd)
}

// runMonitor runs the kernel under the gocui monitor. The kernel keeps
// running after its tasks finish being displayed until the user quits.
func runMonitor(ctx context.Context, o options) (*system.System, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, fmt.Errorf("couldn't create gui: %w", err)
	}
	defer g.Close()

	g.Cursor = true
	g.SetManagerFunc(layout)

	cons := console.NewGui(g, "console")
	status := console.NewGui(g, "status")
	sys, err := system.InitializeSystem(cons, o.cfg, newLogger(o))
	if err != nil {
		return nil, err
	}

	m := &monitor{sys: sys, status: status}
	if err := m.bind(g); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	grp, ctx := errgroup.WithContext(ctx)
	done := make(chan struct{})
	grp.Go(func() error {
		defer close(done)
		code, err := sys.Run(ctx)
		if err != nil {
			_ = status.WriteConsole(err.Error())
			return err
		}
		_ = status.WriteConsole(fmt.Sprintf("kernel returned %d, ctrl-c to quit", code))
		return nil
	})
	grp.Go(func() error {
		m.refresh(ctx, g, done)
		return nil
	})
	grp.Go(func() error {
		// a signal ends the monitor too
		select {
		case <-ctx.Done():
			g.Update(quit)
		case <-done:
		}
		return nil
	})

	loopErr := g.MainLoop()
	cancel()
	err = grp.Wait()
	if loopErr != nil && loopErr != gocui.ErrQuit {
		return sys, loopErr
	}
	return sys, err
}

func quit(g *gocui.Gui) error {
	return gocui.ErrQuit
}
