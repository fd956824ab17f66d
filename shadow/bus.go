// Package shadow emulates the value seen when a write-only SID register is
// read back: the last byte driven onto the data bus, fading one bit at a time.
package shadow

// BitDecayCycles is the number of CPU cycles each remaining bit of the last
// written value survives. All eight bits are gone after 8*BitDecayCycles.
const BitDecayCycles = 0x400

// Bus holds the last value written to any SID register.
type Bus struct {
	Value uint8 // last value written, already masked to the valid bits
	Bits  uint8 // number of low bits still valid
	Clock int64 // clock of the last write or decay step
}

// Store reloads the shadow with all eight bits valid.
func (b *Bus) Store(value uint8, clock int64) {
	b.Value = value
	b.Bits = 8
	b.Clock = clock
}

// Read returns the shadow value as seen at clock. Bits that decayed since
// the previous call are cleared from the top down.
func (b *Bus) Read(clock int64) uint8 {
	for b.Bits > 0 && clock-b.Clock > BitDecayCycles {
		b.Clock += BitDecayCycles
		b.Bits--
		b.Value &= uint8(1<<b.Bits - 1)
	}
	return b.Value
}

// Rebase subtracts sub from the stored clock. Used when the host wraps its
// cycle counter.
func (b *Bus) Rebase(sub int64) {
	b.Clock -= sub
}

// Reset clears the shadow, so reads return 0 until the next write.
func (b *Bus) Reset() {
	*b = Bus{}
}
