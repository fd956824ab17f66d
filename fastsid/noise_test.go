package fastsid

import "testing"

// stepNoise clocks the register once the way the chip does.
func stepNoise(v uint32) uint32 {
	bit := (v>>22 ^ v>>17) & 1
	return (v<<1 | bit) & 0x7fffff
}

func TestShiftMatchesStepping(t *testing.T) {
	seeds := []uint32{noiseSeed, 0x000001, 0x400000, 0x123456, 0x7fffff, 0x2aaaaa}
	for _, seed := range seeds {
		for n := uint(0); n <= 18; n++ {
			want := seed
			for range n {
				want = stepNoise(want)
			}
			if got := Shift(seed, n); got != want {
				t.Errorf("Shift(%#06x, %d) = %#06x, want %#06x", seed, n, got, want)
			}
		}
	}
}

func TestShiftSequence(t *testing.T) {
	a, b := uint32(noiseSeed), uint32(noiseSeed)
	for i := 0; i < 1000; i++ {
		a = Shift(a, 16)
		for range 16 {
			b = stepNoise(b)
		}
		if a != b {
			t.Fatalf("diverged after %d blocks: %#x vs %#x", i, a, b)
		}
	}
}

func TestValueBitSelection(t *testing.T) {
	taps := []uint{2, 4, 7, 11, 13, 16, 20, 22}
	for _, v := range []uint32{noiseSeed, 0x7fffff, 0x155555, 0x2aaaaa, 0x400004, 0x010880} {
		var want uint8
		for out, bit := range taps {
			want |= uint8(v>>bit&1) << out
		}
		if got := Value(v); got != want {
			t.Errorf("Value(%#06x) = %#02x, want %#02x", v, got, want)
		}
	}
}
