package cpu

import (
	"rtos/memory"
)

// CodeBase is where host routines are linked. It sits above 64K so that a
// routine address needs all 20 bits and the frame packing of PC[19:16]
// is exercised by every jump.
const CodeBase memory.Addr = 0x10000

// codeStride keeps linked routines apart, like functions in flash
const codeStride memory.Addr = 0x100

// Routine is host code linked into the code space. It runs on whichever
// goroutine owns the cpu at the moment of the jump.
type Routine func(c *CPU)

// Program is the code space: a map from 20 bit addresses to routines.
type Program struct {
	routines map[memory.Addr]Routine
	free     []memory.Addr
	next     memory.Addr
}

// NewProgram returns an empty code space
func NewProgram() *Program {
	return &Program{
		routines: make(map[memory.Addr]Routine),
		next:     CodeBase,
	}
}

// Link places r in the code space and returns its address.
// Freed addresses are reused before the space grows.
func (p *Program) Link(r Routine) memory.Addr {
	var a memory.Addr
	if n := len(p.free); n > 0 {
		a = p.free[n-1]
		p.free = p.free[:n-1]
	} else {
		if p.next > memory.AddrMask-codeStride {
			panic("code space exhausted")
		}
		a = p.next
		p.next += codeStride
	}
	p.routines[a] = r
	return a
}

// Unlink removes the routine at a
func (p *Program) Unlink(a memory.Addr) {
	if _, ok := p.routines[a]; !ok {
		return
	}
	delete(p.routines, a)
	p.free = append(p.free, a)
}

// At returns the routine linked at a
func (p *Program) At(a memory.Addr) (Routine, bool) {
	r, ok := p.routines[a]
	return r, ok
}

// Len returns the number of linked routines
func (p *Program) Len() int {
	return len(p.routines)
}
