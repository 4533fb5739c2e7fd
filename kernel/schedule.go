package kernel

// next picks the slot to run after current: the first live slot scanning
// forward from current+1 and wrapping at capacity. When no other slot is
// live the scan comes back around and current is returned unchanged, even
// if current itself is no longer live.
func next(current int, avail uint64, capacity int) int {
	for step := 1; step < capacity; step++ {
		i := (current + step) % capacity
		if avail&(uint64(1)<<uint(i)) != 0 {
			return i
		}
	}
	return current
}
