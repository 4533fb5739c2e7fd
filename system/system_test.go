package system

import (
	"context"
	"errors"
	"rtos/console"
	"rtos/kernel"
	"rtos/logger"
	"slices"
	"strings"
	"sync"
	"testing"
)

type recordingConsole struct {
	mu    sync.Mutex
	lines []string
}

func (c *recordingConsole) WriteConsole(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, msg)
	return nil
}

func (c *recordingConsole) contains(s string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, l := range c.lines {
		if strings.Contains(l, s) {
			return true
		}
	}
	return false
}

// testConfig runs an unpaced board at 2 x ACLK for the given emulated seconds
func testConfig(seconds int) Config {
	cfg := DefaultConfig()
	cfg.Hz = 2 * ACLK
	cfg.Paced = false
	cfg.Budget = uint64(seconds * cfg.Hz)
	cfg.Seed = 1
	return cfg
}

func newTestSystem(t *testing.T, cfg Config) (*System, *recordingConsole) {
	t.Helper()
	out := &recordingConsole{}
	sys, err := InitializeSystem(out, cfg, logger.Discard())
	if err != nil {
		t.Fatalf("InitializeSystem() error = %v", err)
	}
	return sys, out
}

func TestInitializeSystem_InvalidConfig(t *testing.T) {
	cfg := testConfig(1)
	cfg.Kernel.MaxTasks = 0
	if _, err := InitializeSystem(&recordingConsole{}, cfg, logger.Discard()); !errors.Is(err, kernel.ErrInvalidConfig) {
		t.Errorf("InitializeSystem() error = %v, want ErrInvalidConfig", err)
	}
}

func TestSystem_RunUntilBudget(t *testing.T) {
	sys, out := newTestSystem(t, testConfig(4))

	status, err := sys.Run(context.Background())
	if status != 0 || err != nil {
		t.Fatalf("Run() = %d, %v, want 0, nil", status, err)
	}

	history := sys.Board.LCD.History()
	for _, want := range []string{"     1", "     2", "     3"} {
		if !slices.Contains(history, want) {
			t.Errorf("LCD never showed %q, history %q", want, history)
		}
	}
	if n := sys.Board.Green.Toggles(); n < 6 {
		t.Errorf("green LED toggled %d times in 4 s, want at least 6", n)
	}

	seen := map[int]bool{}
	for _, id := range sys.Trace.Sequence() {
		seen[id] = true
	}
	// the random task is started by the counter and lands in slot 2
	for id := 0; id < 3; id++ {
		if !seen[id] {
			t.Errorf("slot %d never dispatched", id)
		}
	}

	s := sys.Kernel.Snapshot()
	if s.Live != 0 || s.Terminated != 3 || s.Running {
		t.Errorf("after Run(): live %d, terminated %d, running %v", s.Live, s.Terminated, s.Running)
	}
	if !out.contains("All tasks terminated, status 0.") {
		t.Error("console didn't report the end of the run")
	}
	if sys.Running() {
		t.Error("Running() = true after Run() returned")
	}
}

func TestSystem_ButtonScrolls(t *testing.T) {
	// the counter only waits on its own slices, give it room for the scroll
	sys, _ := newTestSystem(t, testConfig(6))
	sys.Board.Button.Press()

	if _, err := sys.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	history := sys.Board.LCD.History()
	for _, want := range []string{"START ", "OVER  "} {
		if !slices.Contains(history, want) {
			t.Errorf("LCD never showed %q, history %q", want, history)
		}
	}
}

func TestSystem_CancelledContext(t *testing.T) {
	cfg := testConfig(0)
	sys, _ := newTestSystem(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	status, err := sys.Run(ctx)
	if status != 0 || err != nil {
		t.Errorf("Run() = %d, %v, want 0, nil", status, err)
	}
	if !sys.Board.Halted() {
		t.Error("cancelled context didn't halt the board")
	}
}

func TestSystem_Exec(t *testing.T) {
	sys, _ := newTestSystem(t, testConfig(1))
	tests := []struct {
		line    string
		want    string
		wantErr error
	}{
		{"", "", nil},
		{"ps", "free", nil},
		{"regs", "R0 ", nil},
		{"press", "button pressed", nil},
		{"hold 7", "HoldGreenLED = 7", nil},
		{"hold seven", "", console.ErrUsage},
		{"trace 0", "", console.ErrUsage},
		{"trace 5", "SEQ", nil},
		{"help", "trace [n]", nil},
		{"halt", "halting", nil},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := console.ParseCommand(tt.line)
			if err != nil {
				t.Fatalf("ParseCommand(%q) error = %v", tt.line, err)
			}
			got, err := sys.Exec(cmd)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Exec(%q) error = %v, want %v", tt.line, err, tt.wantErr)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Exec(%q) = %q, want it to contain %q", tt.line, got, tt.want)
			}
		})
	}

	if sys.Board.Button.Presses() != 1 {
		t.Errorf("Presses() = %d, want 1", sys.Board.Button.Presses())
	}
	if sys.Board.Hold() != 7 {
		t.Errorf("Hold() = %d, want 7", sys.Board.Hold())
	}
	if !sys.Board.Halted() {
		t.Error("halt didn't halt the board")
	}
	if _, err := sys.Exec(console.Command{Name: "reboot"}); !errors.Is(err, console.ErrUnknownCommand) {
		t.Errorf("Exec(reboot) error = %v, want ErrUnknownCommand", err)
	}
}

func TestSystem_ProcessTable(t *testing.T) {
	sys, _ := newTestSystem(t, testConfig(1))
	if err := sys.Kernel.Setup(); err != nil {
		t.Fatal(err)
	}
	if _, err := sys.Kernel.AddTask(func(p *kernel.Proc) {}); err != nil {
		t.Fatal(err)
	}
	table := sys.ProcessTable()
	lines := strings.Split(table, "\n")
	if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[1], "ready") || !strings.Contains(lines[2], "free") {
		t.Errorf("ProcessTable() =\n%s", table)
	}
	if !strings.Contains(table, "1 live") {
		t.Errorf("ProcessTable() summary missing: %q", table)
	}
}
