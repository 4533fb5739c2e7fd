package cpu

import (
	"rtos/interrupts"
	"rtos/memory"
	"rtos/psw"
	"testing"
)

const stackTop = memory.RAMBase + 0x80

func newTestCPU() *CPU {
	c := New(memory.New(memory.RAMBase, 64))
	c.SetSP(stackTop)
	return c
}

// line is an interrupt source the test raises by hand
type line struct {
	pending bool
	acked   int
}

func (l *line) Pending() bool  { return l.pending }
func (l *line) Vector() uint16 { return interrupts.TimerA0 }
func (l *line) Acknowledge()   { l.pending = false; l.acked++ }

func TestCPU_PushPop(t *testing.T) {
	c := newTestCPU()
	c.Push(0x1234)
	c.Push(0xabcd)
	if c.SP() != stackTop-4 {
		t.Errorf("SP = %05x, want %05x", c.SP(), stackTop-4)
	}
	if v := c.Pop(); v != 0xabcd {
		t.Errorf("Pop() = %#x, want 0xabcd", v)
	}
	if v := c.Pop(); v != 0x1234 {
		t.Errorf("Pop() = %#x, want 0x1234", v)
	}
	if c.SP() != stackTop {
		t.Errorf("SP = %05x, want %05x", c.SP(), stackTop)
	}
}

func TestCPU_PushAddr(t *testing.T) {
	c := newTestCPU()
	c.PushAddr(0x2a5c4)

	if lo := c.Memory().ReadWord(c.SP()); lo != 0xa5c4 {
		t.Errorf("low word on top = %#x, want 0xa5c4", lo)
	}
	if hi := c.Memory().ReadWord(c.SP() + 2); hi != 0x2 {
		t.Errorf("high word = %#x, want 0x2", hi)
	}
	if a := c.PopAddr(); a != 0x2a5c4 {
		t.Errorf("PopAddr() = %05x, want 2a5c4", a)
	}
}

func TestCPU_PushMPopM(t *testing.T) {
	c := newTestCPU()
	for r := R4; r <= R15; r++ {
		c.Registers[r] = uint32(0x100 + r)
	}
	c.PushM(R4, R15)
	if c.SP() != stackTop-2*GeneralRegisters {
		t.Fatalf("SP = %05x after PushM, want %05x", c.SP(), stackTop-2*GeneralRegisters)
	}
	// R15 is pushed last, so it sits on top
	if top := c.Memory().ReadWord(c.SP()); top != 0x10f {
		t.Errorf("top of stack = %#x, want R15 (0x10f)", top)
	}
	for r := R4; r <= R15; r++ {
		c.Registers[r] = 0
	}
	c.PopM(R4, R15)
	for r := R4; r <= R15; r++ {
		if c.Registers[r] != uint32(0x100+r) {
			t.Errorf("R%d = %#x after PopM, want %#x", r, c.Registers[r], 0x100+r)
		}
	}
}

func TestCPU_InterruptState(t *testing.T) {
	tests := []struct {
		name string
		gie  bool
	}{
		{"enabled before", true},
		{"disabled before", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCPU()
			c.Psw.SetGIE(tt.gie)
			s := c.DisableInterrupts()
			if c.Psw.GIE() {
				t.Error("GIE still set inside the critical section")
			}
			c.RestoreInterrupts(s)
			if c.Psw.GIE() != tt.gie {
				t.Errorf("GIE = %v after restore, want %v", c.Psw.GIE(), tt.gie)
			}
		})
	}
}

func TestCPU_Reti(t *testing.T) {
	c := newTestCPU()
	var landed memory.Addr
	var gie bool
	target := c.Program.Link(func(c *CPU) {
		landed = c.PC()
		gie = c.Psw.GIE()
	})

	c.Push(uint16(target))
	c.Push(uint16(target>>16)<<12 | psw.GIE)
	c.Reti()

	if landed != target {
		t.Errorf("Reti() landed at %05x, want %05x", landed, target)
	}
	if !gie {
		t.Error("Reti() didn't restore GIE from the frame")
	}
	if c.SP() != stackTop {
		t.Errorf("SP = %05x after Reti(), want %05x", c.SP(), stackTop)
	}
}

func TestCPU_JumpUnlinkedFaults(t *testing.T) {
	c := newTestCPU()
	defer func() {
		if _, ok := recover().(interrupts.Fault); !ok {
			t.Error("Jump() to an unlinked address didn't fault")
		}
		if c.State != HALT {
			t.Errorf("State = %d after fault, want HALT", c.State)
		}
	}()
	c.Jump(0x7ff00)
}

func TestCPU_InterruptEntry(t *testing.T) {
	c := newTestCPU()
	l := &line{}
	c.Connect(l)

	var frameSR, frameLo uint16
	var gieInside bool
	calls := 0
	c.Vectors[interrupts.TimerA0] = c.Program.Link(func(c *CPU) {
		calls++
		gieInside = c.Psw.GIE()
		frameSR = c.Memory().ReadWord(c.SP())
		frameLo = c.Memory().ReadWord(c.SP() + 2)
		c.Reti()
	})

	c.Psw.SetGIE(true)
	c.Step(3)
	if calls != 0 {
		t.Fatalf("ISR ran %d times with nothing pending", calls)
	}

	l.pending = true
	c.Psw.SetGIE(false)
	c.Step(3)
	if calls != 0 {
		t.Fatal("ISR ran with GIE clear")
	}

	c.Psw.SetGIE(true)
	c.Step(1)
	if calls != 1 || l.acked != 1 {
		t.Fatalf("ISR calls = %d, acks = %d, want 1 and 1", calls, l.acked)
	}
	if gieInside {
		t.Error("GIE set inside the ISR")
	}
	ret := c.Continuation()
	if frameLo != uint16(ret) {
		t.Errorf("frame PC[15:0] = %#x, want %#x", frameLo, uint16(ret))
	}
	if frameSR>>12 != uint16(ret>>16) {
		t.Errorf("frame PC[19:16] = %#x, want %#x", frameSR>>12, ret>>16)
	}
	if frameSR&psw.GIE == 0 {
		t.Error("frame SR lost GIE")
	}
	if !c.Psw.GIE() || c.SP() != stackTop {
		t.Errorf("after RETI: GIE %v, SP %05x", c.Psw.GIE(), c.SP())
	}
	if c.Cycles() != 7 {
		t.Errorf("Cycles() = %d, want 7", c.Cycles())
	}
}

func TestCPU_SpawnAndReturn(t *testing.T) {
	c := newTestCPU()
	linked := c.Program.Len()
	home := c.Continuation()

	ran := false
	c.Spawn(func() {
		ran = true
		c.Retire()
		c.Jump(home)
	})

	if !ran {
		t.Fatal("spawned body didn't run")
	}
	if c.Continuation() != home {
		t.Errorf("cpu owned by %05x after return, want boot context %05x", c.Continuation(), home)
	}
	if c.Program.Len() != linked {
		t.Errorf("Program.Len() = %d, want %d: retired continuation still linked", c.Program.Len(), linked)
	}
}

func TestCPU_FaultInFiberHaltsBoot(t *testing.T) {
	c := newTestCPU()
	defer func() {
		f, ok := recover().(interrupts.Fault)
		if !ok {
			t.Fatal("fault in a fiber didn't reach the boot context")
		}
		if f.Msg != "bad stack" {
			t.Errorf("Fault.Msg = %q, want %q", f.Msg, "bad stack")
		}
		if c.State != HALT {
			t.Errorf("State = %d, want HALT", c.State)
		}
	}()
	c.Spawn(func() {
		c.Fault("bad stack")
	})
}

func TestCPU_IdleOnLiveContextFaults(t *testing.T) {
	c := newTestCPU()
	defer func() {
		if _, ok := recover().(interrupts.Fault); !ok {
			t.Error("Idle() on the boot context didn't fault")
		}
	}()
	c.Idle()
}

func TestSnapshot_DumpRegisters(t *testing.T) {
	c := newTestCPU()
	c.Registers[R4] = 0x2a
	c.Psw.SetGIE(true)
	s := c.Snapshot().DumpRegisters()
	want := "R0 00000 R1 01c80 R2 00008 R3 00000 R4 0002a R5 00000 R6 00000 R7 00000 " +
		"R8 00000 R9 00000 R10 00000 R11 00000 R12 00000 R13 00000 R14 00000 R15 00000 [G     ]"
	if s != want {
		t.Errorf("DumpRegisters() = %q, want %q", s, want)
	}
}
