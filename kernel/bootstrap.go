package kernel

import (
	"rtos/cpu"
	"rtos/memory"
	"rtos/psw"
)

// bootstrap writes the frame a new task is first dispatched from, at the top
// of the slot's private memory. Going down:
//
//	Top-4  return address into terminate, low word first
//	Top-6  PC[15:0] of the entry routine
//	Top-8  PC[19:16]<<12 | GIE
//	       R4..R15, zeroed
//
// The cursor left in the record points at the last register word, the
// same shape the tick handler leaves when it saves a running task.
func (k *Kernel) bootstrap(p *PCB) {
	m := k.cpu.Memory()
	a := p.region.Top()

	a -= 4
	memory.WriteAddr(m, a, k.exit)

	a -= 2
	m.WriteWord(a, uint16(p.entry))
	a -= 2
	m.WriteWord(a, uint16(p.entry>>16)<<12|psw.GIE)

	for i := 0; i < cpu.GeneralRegisters; i++ {
		a -= 2
		m.WriteWord(a, 0)
	}
	p.sp = a
}
