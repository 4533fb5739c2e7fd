package memory

import (
	"fmt"
	"rtos/interrupts"
)

// Addr is a 20 bit MSP430X address
type Addr uint32

// AddrMask keeps the implemented address bits
const AddrMask Addr = 0xfffff

// RAMBase is where the FR6989 maps its SRAM
const RAMBase Addr = 0x1c00

// MemoryManager is the interface the cpu uses to reach memory.
type MemoryManager interface {

	// ReadWord returns the word stored at the even address "addr"
	ReadWord(addr Addr) uint16

	// WriteWord writes "data" to the even address "addr"
	WriteWord(addr Addr, data uint16)
}

// RAM is a word organised, byte addressed block of memory.
type RAM struct {
	base  Addr
	words []uint16
}

// New returns size words of zeroed memory mapped at base.
func New(base Addr, size int) *RAM {
	if base&1 != 0 {
		panic("RAM base must be word aligned")
	}
	return &RAM{base: base & AddrMask, words: make([]uint16, size)}
}

// Base returns the lowest mapped address
func (r *RAM) Base() Addr {
	return r.base
}

// Limit returns the first address past the mapped block
func (r *RAM) Limit() Addr {
	return r.base + Addr(2*len(r.words))
}

func (r *RAM) index(a Addr) int {
	if a&1 != 0 {
		interrupts.Raise(interrupts.SysNMI, "odd word access at %05x", a)
	}
	if a < r.base || a >= r.Limit() {
		interrupts.Raise(interrupts.SysNMI, "vacant memory access at %05x", a)
	}
	return int(a-r.base) >> 1
}

// ReadWord returns content of the word at address a
func (r *RAM) ReadWord(a Addr) uint16 {
	return r.words[r.index(a)]
}

// WriteWord stores data at address a
func (r *RAM) WriteWord(a Addr, data uint16) {
	r.words[r.index(a)] = data
}

// ReadAddr reads a 20 bit address stored as two words, low word first.
func ReadAddr(m MemoryManager, a Addr) Addr {
	lo := m.ReadWord(a)
	hi := m.ReadWord(a + 2)
	return (Addr(hi)<<16 | Addr(lo)) & AddrMask
}

// WriteAddr stores a 20 bit address as two words, low word first.
func WriteAddr(m MemoryManager, a Addr, v Addr) {
	v &= AddrMask
	m.WriteWord(a, uint16(v))
	m.WriteWord(a+2, uint16(v>>16))
}

// Region is a contiguous block of words inside the RAM.
type Region struct {
	Base  Addr
	Words int
}

// Top returns the address just above the region. An empty full-descending
// stack points here.
func (g Region) Top() Addr {
	return g.Base + Addr(2*g.Words)
}

// Contains reports whether a is a valid stack cursor for the region
func (g Region) Contains(a Addr) bool {
	return a >= g.Base && a <= g.Top()
}

// Overlaps reports whether two regions share at least one word
func (g Region) Overlaps(o Region) bool {
	return g.Base < o.Top() && o.Base < g.Top()
}

func (g Region) String() string {
	return fmt.Sprintf("%05x-%05x", g.Base, g.Top())
}

// Dump copies the words of a region out of memory
func Dump(m MemoryManager, g Region) []uint16 {
	out := make([]uint16, g.Words)
	for i := range out {
		out[i] = m.ReadWord(g.Base + Addr(2*i))
	}
	return out
}
