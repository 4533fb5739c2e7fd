package kernel

import (
	"rtos/cpu"
)

// terminate is entered when a task body returns, through the return address
// bootstrap left at the top of its stack.
func (k *Kernel) terminate(c *cpu.CPU) {
	c.DisableInterrupts()
	k.procEnded = true
	k.removeSlot(k.current)
	c.Program.Unlink(k.procs[k.current].entry)
	k.procs[k.current].fn = nil
	k.terminated++
	k.log.Printf("task %d terminated", k.current)
	c.Retire()
	k.publish()

	if k.avail.Empty() {
		k.timer.Stop()
		c.Registers[cpu.R12] = 0
		c.SetSP(k.outerSP)
		c.Ret()
		return
	}

	// the next tick picks a replacement and drops this context
	c.EnableInterrupts()
	k.timer.Trigger()
	c.Idle()
}
