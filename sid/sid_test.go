package resid

import (
	"testing"
)

const testClock = 985248

func newTestSID(t *testing.T, model Model, method SamplingMethod) *Sid {
	t.Helper()
	s := NewSID()
	s.SetModel(model)
	if err := s.SetSamplingParameters(testClock, method, 44100, -1, 0.97); err != nil {
		t.Fatalf("SetSamplingParameters: %v", err)
	}
	s.Reset()
	return s
}

// render clocks cycles chip cycles and returns the samples produced.
func render(s *Sid, cycles int) []int16 {
	buf := make([]int16, cycles/8+16)
	delta := CycleCount(cycles)
	n := s.ClockSamples(&delta, buf, len(buf), 1)
	return buf[:n]
}

// tune programs a chord with every voice audible. filt is the
// resonance/routing register.
func tune(s *Sid, filt uint8) {
	regs := []struct{ addr, val uint8 }{
		{0x00, 0x25}, {0x01, 0x11}, {0x02, 0x00}, {0x03, 0x08}, {0x05, 0x09}, {0x06, 0xa4}, {0x04, 0x41},
		{0x07, 0x30}, {0x08, 0x16}, {0x0c, 0x22}, {0x0d, 0xc8}, {0x0b, 0x21},
		{0x0e, 0x00}, {0x0f, 0x40}, {0x13, 0x00}, {0x14, 0xf0}, {0x12, 0x81},
		{0x15, 0x03}, {0x16, 0x40}, {0x17, filt}, {0x18, 0x1f},
	}
	for _, r := range regs {
		s.Write(r.addr, r.val)
		s.Clock(3)
	}
}

func TestReadBeforeWrite(t *testing.T) {
	s := newTestSID(t, MOS6581, SAMPLE_FAST)
	for addr := uint8(0); addr <= 0x18; addr++ {
		if v := s.Read(addr, 0); v != 0 {
			t.Errorf("Read(%#x) = %#x before any write, want 0", addr, v)
		}
	}
}

func TestWriteOnlyReadback(t *testing.T) {
	s := newTestSID(t, MOS8580, SAMPLE_FAST)
	s.Store(0x05, 0xa9, 1000)

	if v := s.Read(0x05, 1000); v != 0xa9 {
		t.Fatalf("immediate read = %#x, want 0xa9", v)
	}
	// a different write-only register returns the same bus value
	if v := s.Read(0x12, 1001); v != 0xa9 {
		t.Fatalf("read of other register = %#x, want 0xa9", v)
	}
	if v := s.Read(0x05, 1000+0x4000); v != 0 {
		t.Fatalf("read after decay = %#x, want 0", v)
	}
}

func TestReadPots(t *testing.T) {
	s := newTestSID(t, MOS6581, SAMPLE_FAST)
	if s.Read(0x19, 0) != 0xff || s.Read(0x1a, 0) != 0xff {
		t.Fatal("pots must read 0xff by default")
	}
	s.SetPots(0x12, 0x34)
	if s.Read(0x19, 0) != 0x12 || s.Read(0x1a, 0) != 0x34 {
		t.Fatal("pots not updated")
	}
}

func TestWritePipeline6581(t *testing.T) {
	s := newTestSID(t, MOS6581, SAMPLE_FAST)
	s.Write(0x01, 0x12)
	if s.voice[0].Wave.freq != 0 {
		t.Fatal("6581 write landed before the next cycle")
	}
	s.Clock(1)
	if s.voice[0].Wave.freq != 0x1200 {
		t.Fatalf("freq = %#x after one cycle, want 0x1200", s.voice[0].Wave.freq)
	}

	// a second write before clocking flushes the first
	s.Write(0x00, 0x34)
	s.Write(0x08, 0x56)
	if s.voice[0].Wave.freq != 0x1234 {
		t.Fatalf("freq = %#x, want 0x1234", s.voice[0].Wave.freq)
	}
}

func TestWriteImmediate8580(t *testing.T) {
	s := newTestSID(t, MOS8580, SAMPLE_FAST)
	s.Write(0x16, 0x80)
	if s.filter.Fc != 0x400 {
		t.Fatalf("Fc = %#x, want 0x400", s.filter.Fc)
	}
}

func TestVoiceRegisterDispatch(t *testing.T) {
	s := newTestSID(t, MOS8580, SAMPLE_FAST)
	for v := uint8(0); v < 3; v++ {
		base := v * voiceRegs
		s.Write(base+0, 0x11+v)
		s.Write(base+1, 0x22+v)
		s.Write(base+2, 0x33+v)
		s.Write(base+3, 0x04+v)
		s.Write(base+5, 0x56+v)
	}
	for i, v := range s.voice {
		off := reg16(i)
		if want := (0x22+off)<<8 | (0x11 + off); v.Wave.freq != want {
			t.Errorf("voice %d freq = %#x, want %#x", i, v.Wave.freq, want)
		}
		if want := reg12(0x04+i)<<8 | reg12(0x33+i); v.Wave.pw != want {
			t.Errorf("voice %d pw = %#x, want %#x", i, v.Wave.pw, want)
		}
		if v.Envelope.attack != 5 || v.Envelope.decay != reg4(6+i) {
			t.Errorf("voice %d attack/decay = %x/%x", i, v.Envelope.attack, v.Envelope.decay)
		}
	}
}

func TestDeterminism(t *testing.T) {
	a := newTestSID(t, MOS6581, SAMPLE_RESAMPLE_INTERPOLATE)
	b := newTestSID(t, MOS6581, SAMPLE_RESAMPLE_INTERPOLATE)
	tune(a, 0xf3)
	tune(b, 0xf3)

	sa, sb := render(a, 200000), render(b, 200000)
	if len(sa) != len(sb) {
		t.Fatalf("sample counts differ: %d vs %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d differs: %d vs %d", i, sa[i], sb[i])
		}
	}
}

func TestSamplingMethodKeepsChipState(t *testing.T) {
	methods := []SamplingMethod{SAMPLE_FAST, SAMPLE_INTERPOLATE, SAMPLE_RESAMPLE_INTERPOLATE}
	var ref *ChipState
	for _, m := range methods {
		s := newTestSID(t, MOS6581, m)
		tune(s, 0xf3)
		for i := 0; i < 50; i++ {
			render(s, 997)
			s.Write(0x16, uint8(i*5))
		}
		s.Clock(1)
		st := s.ReadState()
		if ref == nil {
			ref = st
			continue
		}
		if st.Voice != ref.Voice {
			t.Errorf("%s: voice state differs from %s", m, methods[0])
		}
		if st.Vhp != ref.Vhp || st.Vbp != ref.Vbp || st.Vlp != ref.Vlp || st.ExtVo != ref.ExtVo {
			t.Errorf("%s: filter state differs from %s", m, methods[0])
		}
		if st.SidRegister != ref.SidRegister || st.FilterPhase != ref.FilterPhase {
			t.Errorf("%s: registers differ from %s", m, methods[0])
		}
	}
}

func TestFilterBypassMatchesNoRouting(t *testing.T) {
	bypass := newTestSID(t, MOS6581, SAMPLE_FAST)
	bypass.EnableFilter(false)
	open := newTestSID(t, MOS6581, SAMPLE_FAST)

	tune(bypass, 0xf7)
	tune(open, 0xf0)

	sa, sb := render(bypass, 100000), render(open, 100000)
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d: bypass %d, unrouted %d", i, sa[i], sb[i])
		}
	}
}

func TestFilterModeChangeResetsIntegrators(t *testing.T) {
	s := newTestSID(t, MOS6581, SAMPLE_FAST)
	tune(s, 0xf7)
	render(s, 20000)
	f := s.filter
	if f.Vbp == 0 && f.Vlp == 0 {
		t.Fatal("filter state did not move")
	}

	// volume only, same mode
	s.Write(0x18, 0x1e)
	if f.Vbp == 0 && f.Vlp == 0 {
		t.Fatal("integrators cleared without a mode change")
	}

	s.Write(0x18, 0x2e)
	if f.Vhp != 0 || f.Vbp != 0 || f.Vlp != 0 || f.Vnf != 0 {
		t.Fatalf("integrators kept after mode change: hp %d bp %d lp %d", f.Vhp, f.Vbp, f.Vlp)
	}
}

func TestVoiceMask(t *testing.T) {
	s := newTestSID(t, MOS8580, SAMPLE_FAST)
	tune(s, 0xf3)
	s.Clock(20000)

	s.Mute(0, true)
	if s.VoiceMask() != 0x0e {
		t.Fatalf("mask = %#x, want 0x0e", s.VoiceMask())
	}
	if s.voice[0].Output() != 0 {
		t.Fatal("muted voice still produces output")
	}
	if s.voice[0].Wave.accumulator == 0 {
		t.Fatal("muted voice oscillator stopped")
	}
	s.Mute(0, false)
	if s.VoiceMask() != 0x0f {
		t.Fatalf("mask = %#x, want 0x0f", s.VoiceMask())
	}
}

func TestPreventClockOverflow(t *testing.T) {
	s := newTestSID(t, MOS6581, SAMPLE_FAST)
	s.Store(0x00, 0xff, 1<<40)
	s.PreventClockOverflow(1 << 40)
	if v := s.Read(0x00, 10); v != 0xff {
		t.Fatalf("read after rebase = %#x, want 0xff", v)
	}
}
