package kernel

import (
	"rtos/cpu"
	"rtos/memory"
)

// ProcInfo is the monitor view of a process table record
type ProcInfo struct {
	ID     int
	Live   bool
	Entry  memory.Addr
	SP     memory.Addr
	Region memory.Region
}

// Snapshot is a copy of the kernel state, safe to read from any goroutine
type Snapshot struct {
	Procs      []ProcInfo
	Current    int
	Live       int
	Switches   uint64
	Terminated uint64
	Running    bool
	Halted     bool
	CPU        cpu.Snapshot
}

// publish refreshes the copy monitors read. Called by the cpu owner.
func (k *Kernel) publish() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.snap.Procs == nil {
		k.snap.Procs = make([]ProcInfo, len(k.procs))
	}
	for i := range k.procs {
		p := &k.procs[i]
		k.snap.Procs[i] = ProcInfo{
			ID:     p.ID,
			Live:   k.avail.Test(i),
			Entry:  p.entry,
			SP:     p.sp,
			Region: p.region,
		}
	}
	k.snap.Current = k.current
	k.snap.Live = k.avail.Count()
	k.snap.Switches = k.switches
	k.snap.Terminated = k.terminated
	k.snap.Running = k.running
	k.snap.Halted = k.halted
	k.snap.CPU = k.cpu.Snapshot()
}

// Snapshot returns the state as of the last kernel entry
func (k *Kernel) Snapshot() Snapshot {
	k.mu.Lock()
	defer k.mu.Unlock()
	s := k.snap
	s.Procs = append([]ProcInfo(nil), k.snap.Procs...)
	return s
}
