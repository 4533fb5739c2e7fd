package kernel

// Proc is the handle a task body gets. It's only valid inside that body.
type Proc struct {
	k  *Kernel
	id int
}

// ID returns the slot the task runs in
func (p *Proc) ID() int {
	return p.id
}

// Step executes n instruction cycles. The task can be preempted between any
// two of them.
func (p *Proc) Step(n int) {
	p.k.cpu.Step(n)
}

// Yield gives up the rest of the slice
func (p *Proc) Yield() {
	p.k.Yield()
}

// Spawn registers another task from inside this one
func (p *Proc) Spawn(fn Func) (int, error) {
	return p.k.AddTask(fn)
}

// Masked runs fn with interrupts disabled. No switch happens inside; one
// requested there is taken at the first cycle after.
func (p *Proc) Masked(fn func()) {
	s := p.k.cpu.DisableInterrupts()
	defer p.k.cpu.RestoreInterrupts(s)
	fn()
}

// Reg returns general purpose register r of this task
func (p *Proc) Reg(r int) uint16 {
	return p.k.cpu.Reg(r)
}

// SetReg loads general purpose register r
func (p *Proc) SetReg(r int, v uint16) {
	p.k.cpu.SetReg(r, v)
}

// Cycles returns the machine cycle counter
func (p *Proc) Cycles() uint64 {
	return p.k.cpu.Cycles()
}
