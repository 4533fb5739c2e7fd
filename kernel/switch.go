package kernel

import (
	"rtos/cpu"
)

// timerISR is the tick handler. It runs on top of the interrupted task's
// stack, so all of its state lives in the kernel and the cpu registers.
func (k *Kernel) timerISR(c *cpu.CPU) {
	if !k.procEnded {
		c.PushM(cpu.R4, cpu.R15)
		if !k.procs[k.current].region.Contains(c.SP()) {
			c.Fault("task %d overflowed its stack: sp %05x outside %s",
				k.current, c.SP(), k.procs[k.current].region)
		}
		k.procs[k.current].sp = c.SP()
	}

	k.prev = k.current
	k.current = next(k.current, k.avail.Word(), k.cfg.MaxTasks)
	k.record(k.prev, k.current, k.procEnded)
	k.procEnded = false

	if !k.avail.Test(k.current) {
		c.Fault("scheduler picked free slot %d", k.current)
	}
	if !k.procs[k.current].region.Contains(k.procs[k.current].sp) {
		c.Fault("slot %d cursor %05x outside %s",
			k.current, k.procs[k.current].sp, k.procs[k.current].region)
	}
	k.switches++
	c.SetSP(k.procs[k.current].sp)
	k.publish()
	k.loadContext(c)
}

// loadContext restores the general registers from the stack and returns
// from interrupt into whatever frame sits under them.
func (k *Kernel) loadContext(c *cpu.CPU) {
	c.PopM(cpu.R4, cpu.R15)
	c.Reti()
}
