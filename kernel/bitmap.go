package kernel

import (
	"math/bits"
	"strings"
	"sync/atomic"
)

// Bitmap is the availability bitmap: bit i set means slot i holds a live
// task. Single bit updates are one atomic store, so releasing a slot needs
// no critical section.
type Bitmap struct {
	word atomic.Uint64
	n    int
}

// NewBitmap returns an empty bitmap of n slots
func NewBitmap(n int) *Bitmap {
	if n < 1 || n > MaxCapacity {
		panic("bitmap size out of range")
	}
	return &Bitmap{n: n}
}

// Len returns the number of slots
func (b *Bitmap) Len() int {
	return b.n
}

func (b *Bitmap) Set(i int) {
	b.word.Or(uint64(1) << uint(i))
}

func (b *Bitmap) Clear(i int) {
	b.word.And(^(uint64(1) << uint(i)))
}

func (b *Bitmap) Test(i int) bool {
	return b.word.Load()&(uint64(1)<<uint(i)) != 0
}

// Word returns all bits in one load
func (b *Bitmap) Word() uint64 {
	return b.word.Load()
}

func (b *Bitmap) Reset() {
	b.word.Store(0)
}

// FirstClear returns the lowest free slot, or -1 if every slot is taken
func (b *Bitmap) FirstClear() int {
	i := bits.TrailingZeros64(^b.word.Load())
	if i >= b.n {
		return -1
	}
	return i
}

// FirstSet returns the lowest live slot, or -1
func (b *Bitmap) FirstSet() int {
	w := b.word.Load()
	if w == 0 {
		return -1
	}
	return bits.TrailingZeros64(w)
}

func (b *Bitmap) Count() int {
	return bits.OnesCount64(b.word.Load())
}

func (b *Bitmap) Empty() bool {
	return b.word.Load() == 0
}

// String renders the bitmap slot 0 first, e.g. "1010"
func (b *Bitmap) String() string {
	w := b.word.Load()
	var s strings.Builder
	for i := 0; i < b.n; i++ {
		if w&(uint64(1)<<uint(i)) != 0 {
			s.WriteByte('1')
		} else {
			s.WriteByte('0')
		}
	}
	return s.String()
}
