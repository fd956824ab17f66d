package resid

import "testing"

func TestTriangleSymmetry(t *testing.T) {
	w := NewWaveformGenerator()
	w.WriteCONTROL_REG(0x10)
	for acc := reg24(0); acc < 0x1000000; acc += 0x1f3d {
		w.accumulator = acc
		up := w.Output()
		w.accumulator = 0xffffff - acc
		if down := w.Output(); up != down {
			t.Fatalf("tri(%#x) = %#x, tri(%#x) = %#x", acc, up, 0xffffff-acc, down)
		}
	}
}

func TestTriangleIgnoresPulseWidth(t *testing.T) {
	w := NewWaveformGenerator()
	w.WriteCONTROL_REG(0x10)
	w.accumulator = 0x345678
	want := w.Output()
	for _, pw := range []reg8{0x00, 0x08, 0x0f} {
		w.WritePW_HI(pw)
		w.WritePW_LO(0xff)
		if got := w.Output(); got != want {
			t.Fatalf("pw %#x changed triangle to %#x", pw, got)
		}
	}
}

func TestNoiseCombinationsSilent(t *testing.T) {
	w := NewWaveformGenerator()
	w.WriteFREQ_HI(0x40)
	w.Clock(1000)
	for _, wave := range []reg8{0x9, 0xa, 0xc, 0xf} {
		w.WriteCONTROL_REG(wave << 4)
		if o := w.Output(); o != 0 {
			t.Errorf("waveform %#x = %#x, want 0", wave, o)
		}
	}
}

// noiseAfterTest runs the oscillator for warmup cycles, then holds test for
// hold cycles and releases it.
func noiseAfterTest(model Model, warmup, hold CycleCount) reg24 {
	w := NewWaveformGenerator()
	w.SetModel(model)
	w.WriteFREQ_HI(0x23)
	w.WriteFREQ_LO(0x45)
	w.WriteCONTROL_REG(0x80)
	w.Clock(warmup)
	w.WriteCONTROL_REG(0x88)
	for c := CycleCount(0); c < hold; c += 8 {
		w.Clock(8)
	}
	w.WriteCONTROL_REG(0x80)
	return w.shiftreg
}

func TestNoiseResetAfterTest(t *testing.T) {
	a := noiseAfterTest(MOS6581, 1000, 0x8800)
	b := noiseAfterTest(MOS6581, 77777, 0x9000)
	if a != noiseSeed || b != noiseSeed {
		t.Fatalf("shift registers %#x and %#x, want %#x", a, b, noiseSeed)
	}
}

func TestNoiseShortTestKeepsBits(t *testing.T) {
	r := noiseAfterTest(MOS6581, 77777, 0x100)
	if r&noiseSeed != noiseSeed {
		t.Fatalf("shift register %#x missing seed bits", r)
	}
	// the 8580 fades far slower
	if r := noiseAfterTest(MOS8580, 1000, 0x9000); r&noiseSeed != noiseSeed {
		t.Fatalf("8580 shift register %#x missing seed bits", r)
	}
}

func TestTestBitFreezesAccumulator(t *testing.T) {
	w := NewWaveformGenerator()
	w.WriteFREQ_HI(0x10)
	w.Clock(500)
	w.WriteCONTROL_REG(0x48)
	if w.accumulator != 0 {
		t.Fatalf("accumulator = %#x with test set", w.accumulator)
	}
	w.Clock(500)
	if w.accumulator != 0 {
		t.Fatalf("accumulator moved to %#x with test set", w.accumulator)
	}
	if w.Output() != 0xfff {
		t.Fatal("pulse must read high while test is held")
	}
}
