package cpu

import (
	"fmt"
	"rtos/interrupts"
	"rtos/memory"
	"rtos/psw"
	"strings"
	"time"
)

// register file layout
const (
	PC  = 0 // R0, program counter
	SP  = 1 // R1, stack pointer
	SR  = 2 // R2, status register (kept in Psw)
	CG  = 3 // R3, constant generator
	R4  = 4
	R12 = 12 // return value register of the calling convention
	R15 = 15

	NumRegisters = 16

	// GeneralRegisters : R4 - R15, the set a context switch saves
	GeneralRegisters = R15 - R4 + 1
)

// CPU state: Run / Halt
const (
	HALT   = 0
	CPURUN = 1
)

// pace the host every paceEvery cycles
const paceEvery = 1024

// Device is a peripheral clocked by the cpu
type Device interface {
	Advance(cycles int)
}

// Line is a maskable interrupt request line
type Line interface {
	Pending() bool
	Vector() uint16
	Acknowledge()
}

// CPU type:
type CPU struct {
	// 20 bit registers. R2 lives in Psw.
	Registers [NumRegisters]uint32
	Psw       psw.PSW
	State     int

	// Vectors maps interrupt vector slots to routine addresses
	Vectors [interrupts.VectorCount]memory.Addr

	Program *Program

	mem     memory.MemoryManager
	devices []Device
	lines   []Line

	cycles uint64

	// Hz paces execution to a clock rate. 0 runs as fast as the host can.
	Hz         int
	paceStart  time.Time
	paceCycles uint64

	boot    *fiber
	current *fiber
	halted  chan interrupts.Fault
}

// Snapshot is a copy of the register file
type Snapshot struct {
	Registers [NumRegisters]uint32
	Psw       psw.PSW
	State     int
	Cycles    uint64
}

// New returns a cpu attached to mem. The calling goroutine owns it.
func New(mem memory.MemoryManager) *CPU {
	c := &CPU{
		mem:     mem,
		Program: NewProgram(),
		State:   CPURUN,
		halted:  make(chan interrupts.Fault, 1),
	}
	c.boot = c.newFiber()
	c.current = c.boot
	return c
}

// Attach adds a clocked device
func (c *CPU) Attach(d Device) {
	c.devices = append(c.devices, d)
}

// Connect adds an interrupt line. Earlier lines win when several are pending.
func (c *CPU) Connect(l Line) {
	c.lines = append(c.lines, l)
}

// Memory returns the memory the cpu is attached to
func (c *CPU) Memory() memory.MemoryManager {
	return c.mem
}

// PC returns the program counter
func (c *CPU) PC() memory.Addr {
	return memory.Addr(c.Registers[PC]) & memory.AddrMask
}

// SP returns the stack pointer
func (c *CPU) SP() memory.Addr {
	return memory.Addr(c.Registers[SP]) & memory.AddrMask
}

// SetSP loads the stack pointer
func (c *CPU) SetSP(a memory.Addr) {
	c.Registers[SP] = uint32(a & memory.AddrMask)
}

// Cycles returns the number of executed cycles
func (c *CPU) Cycles() uint64 {
	return c.cycles
}

// Push to processor stack
func (c *CPU) Push(v uint16) {
	c.SetSP(c.SP() - 2)
	c.mem.WriteWord(c.SP(), v)
}

// Pop from CPU stack
func (c *CPU) Pop() uint16 {
	val := c.mem.ReadWord(c.SP())
	c.SetSP(c.SP() + 2)
	return val
}

// PushAddr pushes a 20 bit address the way CALLA does: two words, the low
// word ends up on top.
func (c *CPU) PushAddr(a memory.Addr) {
	c.SetSP(c.SP() - 4)
	memory.WriteAddr(c.mem, c.SP(), a)
}

// PopAddr pops a 20 bit address pushed by PushAddr
func (c *CPU) PopAddr() memory.Addr {
	a := memory.ReadAddr(c.mem, c.SP())
	c.SetSP(c.SP() + 4)
	return a
}

// PushM pushes the low words of registers from..to, lowest register first
func (c *CPU) PushM(from, to int) {
	for r := from; r <= to; r++ {
		c.Push(uint16(c.Registers[r]))
	}
}

// PopM restores registers from..to pushed by PushM
func (c *CPU) PopM(from, to int) {
	for r := to; r >= from; r-- {
		c.Registers[r] = uint32(c.Pop())
	}
}

// InterruptState is the GIE value saved by DisableInterrupts
type InterruptState bool

// DisableInterrupts clears GIE and returns its previous value
func (c *CPU) DisableInterrupts() InterruptState {
	prev := c.Psw.GIE()
	c.Psw.SetGIE(false)
	return InterruptState(prev)
}

// RestoreInterrupts puts GIE back the way DisableInterrupts found it
func (c *CPU) RestoreInterrupts(s InterruptState) {
	c.Psw.SetGIE(bool(s))
}

// EnableInterrupts sets GIE
func (c *CPU) EnableInterrupts() {
	c.Psw.SetGIE(true)
}

// Jump loads PC and runs the routine linked there
func (c *CPU) Jump(a memory.Addr) {
	r, ok := c.Program.At(a)
	if !ok {
		c.Fault("fetch from unlinked address %05x", a)
	}
	c.Registers[PC] = uint32(a)
	r(c)
}

// Ret pops a 20 bit return address and jumps to it (RETA)
func (c *CPU) Ret() {
	c.Jump(c.PopAddr())
}

// Reti returns from interrupt: the first word holds PC[19:16] in its upper
// nibble and SR below, the second word is PC[15:0].
func (c *CPU) Reti() {
	w := c.Pop()
	lo := c.Pop()
	c.Psw.Set(w & 0x0fff)
	c.Jump(memory.Addr(w>>12)<<16 | memory.Addr(lo))
}

// Step executes n instruction cycles. A pending interrupt is taken between
// cycles when GIE is set. If the interrupt hands the cpu to another context,
// Step returns once the cpu comes back, or right away if this context
// has been retired.
func (c *CPU) Step(n int) {
	f := c.current
	for ; n > 0; n-- {
		c.cycle()
		if !c.Psw.GIE() {
			continue
		}
		if l := c.pendingLine(); l != nil {
			c.interrupt(l)
			if f.gone {
				return
			}
		}
	}
}

func (c *CPU) cycle() {
	c.cycles++
	for _, d := range c.devices {
		d.Advance(1)
	}
	if c.Hz > 0 && c.cycles%paceEvery == 0 {
		c.pace()
	}
}

// pace sleeps off the time the host ran ahead of the emulated clock
func (c *CPU) pace() {
	if c.paceStart.IsZero() {
		c.paceStart = time.Now()
		c.paceCycles = c.cycles
		return
	}
	want := time.Duration(c.cycles-c.paceCycles) * time.Second / time.Duration(c.Hz)
	if ahead := want - time.Since(c.paceStart); ahead > 0 {
		time.Sleep(ahead)
	}
}

func (c *CPU) pendingLine() Line {
	for _, l := range c.lines {
		if l.Pending() {
			return l
		}
	}
	return nil
}

// interrupt accepts a request:
//  1. push PC[15:0]
//  2. push PC[19:16] and SR packed in one word
//  3. clear SR (GIE and low power bits)
//  4. jump through the vector
//
// The ISR finishes with Reti, which may resume a different context.
func (c *CPU) interrupt(l Line) {
	l.Acknowledge()
	vec := c.Vectors[l.Vector()]
	if vec == 0 {
		c.Fault("no handler for vector %d", l.Vector())
	}

	pc := c.current.pc
	c.Push(uint16(pc))
	c.Push(uint16(pc>>16)<<12 | c.Psw.Get()&0x0fff)
	c.Psw.Set(0)
	c.Jump(vec)
}

// Fault halts the cpu and raises an unrecoverable fault
func (c *CPU) Fault(format string, args ...any) {
	c.State = HALT
	interrupts.Raise(interrupts.SysNMI, format, args...)
}

// Snapshot copies the register file
func (c *CPU) Snapshot() Snapshot {
	return Snapshot{
		Registers: c.Registers,
		Psw:       c.Psw,
		State:     c.State,
		Cycles:    c.cycles,
	}
}

// Reg returns general register r
func (c *CPU) Reg(r int) uint16 {
	checkGeneral(r)
	return uint16(c.Registers[r])
}

// SetReg loads general register r
func (c *CPU) SetReg(r int, v uint16) {
	checkGeneral(r)
	c.Registers[r] = uint32(v)
}

func checkGeneral(r int) {
	if r < R4 || r > R15 {
		panic(fmt.Sprintf("R%d is not a general purpose register", r))
	}
}

// DumpRegisters displays register values
func (s Snapshot) DumpRegisters() string {
	var res strings.Builder
	for i, reg := range s.Registers {
		if i == SR {
			reg = uint32(s.Psw.Get())
		}
		fmt.Fprintf(&res, "R%d %05x ", i, reg)
	}
	fmt.Fprintf(&res, "%s", s.Psw.GetFlags())
	return res.String()
}
