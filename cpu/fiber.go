package cpu

import (
	"fmt"
	"rtos/interrupts"
	"rtos/memory"
)

// fiber is an execution context backed by a goroutine. Exactly one fiber owns
// the cpu at any time; every other one is parked on its wake channel.
type fiber struct {
	wake chan struct{}

	// continuation address: jumping here resumes the fiber
	pc memory.Addr

	// retired fibers never resume. Written only by the fiber's own goroutine.
	retired bool
	gone    bool
}

func (c *CPU) newFiber() *fiber {
	f := &fiber{wake: make(chan struct{})}
	f.pc = c.Program.Link(func(c *CPU) { c.transfer(f) })
	return f
}

// Continuation returns the address that resumes the running context
func (c *CPU) Continuation() memory.Addr {
	return c.current.pc
}

// transfer hands the cpu to another fiber. The calling goroutine parks until
// someone jumps back to its continuation, unless its fiber is retired.
// Nothing may touch the cpu between the handoff and the return.
func (c *CPU) transfer(to *fiber) {
	from := c.current
	if to == from {
		return
	}
	c.current = to
	if from.retired {
		from.gone = true
		to.wake <- struct{}{}
		return
	}
	to.wake <- struct{}{}
	c.park(from)
}

// park blocks until f is resumed. The boot context also watches for faults
// raised by fibers, so the halt surfaces where the kernel was started.
func (c *CPU) park(f *fiber) {
	if f != c.boot {
		<-f.wake
		return
	}
	select {
	case <-f.wake:
	case flt := <-c.halted:
		panic(flt)
	}
}

// Spawn starts body in a new context and hands it the cpu. It's what a jump
// to an entry point that never ran before looks like on the host.
func (c *CPU) Spawn(body func()) {
	nf := c.newFiber()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				flt, ok := r.(interrupts.Fault)
				if !ok {
					flt = interrupts.Fault{Vector: interrupts.SysNMI, Msg: fmt.Sprint(r)}
				}
				c.State = HALT
				c.halted <- flt
			}
		}()
		<-nf.wake
		body()
		if !nf.gone {
			c.Fault("context at %05x returned without handing off the cpu", nf.pc)
		}
	}()
	c.transfer(nf)
}

// Retire marks the running context as finished. The next handoff leaves it
// for good and its continuation is released.
func (c *CPU) Retire() {
	f := c.current
	if f == c.boot {
		c.Fault("boot context can't be retired")
	}
	f.retired = true
	c.Program.Unlink(f.pc)
}

// Idle keeps the clocks running until an interrupt takes the cpu away from a
// retired context.
func (c *CPU) Idle() {
	f := c.current
	if !f.retired {
		c.Fault("idle on a live context")
	}
	for !f.gone {
		c.Step(1)
	}
}
