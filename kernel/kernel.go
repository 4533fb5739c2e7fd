package kernel

import (
	"fmt"
	"log"
	"rtos/cpu"
	"rtos/interrupts"
	"rtos/memory"
	"rtos/timer"
	"rtos/trace"
	"sync"
)

// Func is a task body. Returning from it terminates the task.
type Func func(p *Proc)

// PCB is a process table record
type PCB struct {
	ID int

	fn    Func
	entry memory.Addr

	// sp : saved stack cursor, always inside region
	sp     memory.Addr
	region memory.Region
}

// Kernel owns the process table and the scheduler tick. Every method except
// Snapshot and Config must be called by the context owning the cpu: before
// Run, or from a task body.
type Kernel struct {
	cfg   Config
	cpu   *cpu.CPU
	timer *timer.Timer
	log   *log.Logger

	procs []PCB
	avail *Bitmap

	// current : slot of the running task, prev : the one before the last switch
	current int
	prev    int

	// procEnded : the running task terminated, the next switch must not
	// save its context
	procEnded bool

	outer   memory.Region
	outerSP memory.Addr

	// linked routines: the tick handler and the termination handler
	isr  memory.Addr
	exit memory.Addr

	ready   bool
	running bool
	halted  bool

	switches   uint64
	terminated uint64

	recorder *trace.Recorder

	mu   sync.Mutex
	snap Snapshot
}

// New lays the slot stacks out in ram and links the kernel routines. The
// kernel takes the timer over: it's clocked by c and wired to its interrupt
// line here.
func New(c *cpu.CPU, t *timer.Timer, ram *memory.RAM, cfg Config, log *log.Logger) (*Kernel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if have := int(ram.Limit()-ram.Base()) / 2; have < cfg.RAMWords() {
		return nil, fmt.Errorf("%w: %d words of RAM, need %d", ErrInvalidConfig, have, cfg.RAMWords())
	}

	k := &Kernel{
		cfg:   cfg,
		cpu:   c,
		timer: t,
		log:   log,
		procs: make([]PCB, cfg.MaxTasks),
		avail: NewBitmap(cfg.MaxTasks),
	}
	stack := memory.Addr(2 * cfg.StackWords)
	for i := range k.procs {
		k.procs[i].region = memory.Region{Base: ram.Base() + memory.Addr(i)*stack, Words: cfg.StackWords}
		k.procs[i].sp = k.procs[i].region.Top()
	}
	k.outer = memory.Region{Base: ram.Base() + memory.Addr(cfg.MaxTasks)*stack, Words: cfg.OuterWords}

	k.isr = c.Program.Link(k.timerISR)
	k.exit = c.Program.Link(k.terminate)
	c.Attach(t)
	c.Connect(t)
	k.publish()
	return k, nil
}

// Config returns the configuration the kernel was built with
func (k *Kernel) Config() Config {
	return k.cfg
}

// Trace reports every dispatch to r. nil stops tracing.
func (k *Kernel) Trace(r *trace.Recorder) {
	k.recorder = r
}

// Setup clears the process table. It must run once before anything else.
func (k *Kernel) Setup() error {
	if k.halted {
		return ErrHalted
	}
	if k.running {
		return ErrRunning
	}
	k.avail.Reset()
	for i := range k.procs {
		p := &k.procs[i]
		p.ID = i
		p.fn = nil
		p.entry = 0
		p.sp = p.region.Top()
	}
	k.current = 0
	k.procEnded = false
	k.ready = true
	k.publish()
	return nil
}

// AddTask registers fn in the lowest free slot and returns the slot id. The
// claim runs with interrupts masked and puts GIE back the way it found it,
// so registration before Run stays interrupt free.
func (k *Kernel) AddTask(fn Func) (int, error) {
	switch {
	case k.halted:
		return -1, ErrHalted
	case !k.ready:
		return -1, ErrNotSetup
	case fn == nil:
		return -1, ErrNilEntry
	}

	s := k.cpu.DisableInterrupts()
	defer k.cpu.RestoreInterrupts(s)

	id := k.avail.FirstClear()
	if id < 0 {
		return -1, fmt.Errorf("%w: all %d slots in use", ErrCapacityExceeded, k.cfg.MaxTasks)
	}
	p := &k.procs[id]
	p.ID = id
	p.fn = fn
	p.entry = k.link(id, fn)
	k.bootstrap(p)
	k.avail.Set(id)

	k.publish()
	k.log.Printf("task %d registered, entry %05x, stack %s", id, p.entry, p.region)
	return id, nil
}

// link places the entry routine of a slot in the code space. The first jump
// there starts the body in a context of its own; when the body returns, the
// return address left by bootstrap takes it into terminate.
func (k *Kernel) link(id int, fn Func) memory.Addr {
	p := &Proc{k: k, id: id}
	return k.cpu.Program.Link(func(c *cpu.CPU) {
		c.Spawn(func() {
			fn(p)
			c.Ret()
		})
	})
}

// removeSlot releases a slot with a single atomic store
func (k *Kernel) removeSlot(id int) {
	k.avail.Clear(id)
}

// Yield asks for the next switch now. CCIFG is level triggered: yielding
// again before the switch is taken changes nothing.
func (k *Kernel) Yield() {
	k.timer.Trigger()
	k.cpu.Step(1)
}

// Run starts dispatching the registered tasks and returns once all of them
// terminated. The status is whatever R12 holds at that point, which the
// termination handler sets to 0. A fault anywhere on the machine stops the
// kernel for good and is returned as an error wrapping ErrHalted.
func (k *Kernel) Run() (status uint16, err error) {
	switch {
	case k.halted:
		return 0, ErrHalted
	case !k.ready:
		return 0, ErrNotSetup
	case k.running:
		return 0, ErrRunning
	}
	if k.avail.Empty() {
		k.log.Printf("run: no tasks registered")
		return 0, nil
	}

	k.running = true
	defer func() {
		k.running = false
		if r := recover(); r != nil {
			flt, ok := r.(interrupts.Fault)
			if !ok {
				panic(r)
			}
			k.halted = true
			k.timer.Stop()
			k.log.Printf("run: %v", flt)
			err = fmt.Errorf("%w: %w", ErrHalted, flt)
		}
		k.publish()
	}()

	c := k.cpu
	c.DisableInterrupts()
	c.SetSP(k.outer.Top())
	c.PushAddr(c.Continuation())
	k.outerSP = c.SP()

	c.Vectors[k.timer.Vector()] = k.isr
	k.timer.Configure(k.cfg.TickCycles)
	k.timer.Acknowledge()
	k.timer.Start()
	k.log.Printf("run: %d tasks, tick %d cycles", k.avail.Count(), k.cfg.TickCycles)

	k.current = k.avail.FirstSet()
	k.procEnded = false
	k.record(-1, k.current, false)
	c.SetSP(k.procs[k.current].sp)
	k.publish()
	k.loadContext(c)

	// back from terminate of the last task
	status = uint16(c.Registers[cpu.R12])
	k.log.Printf("run: all tasks terminated after %d switches, status %d", k.switches, status)
	return status, nil
}

func (k *Kernel) record(from, to int, exit bool) {
	if k.recorder != nil {
		k.recorder.Record(k.cpu.Cycles(), from, to, exit)
	}
}
