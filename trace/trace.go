package trace

import (
	"sync"
)

// DefaultLimit : events kept by a recorder made with limit 0
const DefaultLimit = 4096

// Event is one dispatch: the cpu was handed from slot From to slot To.
// From is -1 for the first dispatch of a Run. Exit is set when From
// terminated and had its context discarded instead of saved.
type Event struct {
	Seq   uint64
	Cycle uint64
	From  int
	To    int
	Exit  bool
}

// Recorder keeps the most recent dispatch events. It's written from the
// switch path and read by monitors, so every access takes the lock.
type Recorder struct {
	mu      sync.Mutex
	events  []Event
	limit   int
	seq     uint64
	dropped uint64
}

// NewRecorder returns a recorder holding at most limit events
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{limit: limit}
}

// Record appends a dispatch. The oldest event is dropped once the recorder
// is full.
func (r *Recorder) Record(cycle uint64, from, to int, exit bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == r.limit {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
		r.dropped++
	}
	r.events = append(r.events, Event{Seq: r.seq, Cycle: cycle, From: from, To: to, Exit: exit})
	r.seq++
}

// Events returns a copy of the recorded events, oldest first
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Sequence returns the dispatched slots in order
func (r *Recorder) Sequence() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.events))
	for i, e := range r.events {
		out[i] = e.To
	}
	return out
}

// Len returns the number of events held
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

// Total returns the number of events ever recorded
func (r *Recorder) Total() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq
}

// Dropped returns how many events fell off the front
func (r *Recorder) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = r.events[:0]
	r.seq = 0
	r.dropped = 0
}

// Slice is a span of cycles a slot owned the cpu
type Slice struct {
	Slot       int
	Start, End uint64
}

// Slices turns a dispatch log into the spans between consecutive
// dispatches. The last span ends at end.
func Slices(events []Event, end uint64) []Slice {
	var out []Slice
	for i, e := range events {
		stop := end
		if i+1 < len(events) {
			stop = events[i+1].Cycle
		}
		if stop < e.Cycle {
			stop = e.Cycle
		}
		out = append(out, Slice{Slot: e.To, Start: e.Cycle, End: stop})
	}
	return out
}
