package resid

import "testing"

func TestSamplingParameterErrors(t *testing.T) {
	tests := []struct {
		name   string
		method SamplingMethod
		rate   float64
		pass   float64
		scale  float64
	}{
		{"passband above nyquist", SAMPLE_RESAMPLE_INTERPOLATE, 44100, 20000, 0.97},
		{"gain too low", SAMPLE_RESAMPLE_INTERPOLATE, 44100, -1, 0.8},
		{"gain too high", SAMPLE_RESAMPLE_FAST, 44100, -1, 1.01},
		{"rate too low", SAMPLE_RESAMPLE_INTERPOLATE, 4000, -1, 0.97},
		{"zero rate", SAMPLE_FAST, 0, -1, 0.97},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSID()
			if err := s.SetSamplingParameters(testClock, tt.method, tt.rate, tt.pass, tt.scale); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestDirectMethodsSkipResamplerChecks(t *testing.T) {
	s := NewSID()
	for _, m := range []SamplingMethod{SAMPLE_FAST, SAMPLE_INTERPOLATE} {
		if err := s.SetSamplingParameters(testClock, m, 4000, 20000, 0.5); err != nil {
			t.Fatalf("%s: %v", m, err)
		}
	}
}

func TestSampleCount(t *testing.T) {
	for _, m := range []SamplingMethod{SAMPLE_FAST, SAMPLE_INTERPOLATE, SAMPLE_RESAMPLE_INTERPOLATE} {
		s := newTestSID(t, MOS8580, m)
		// one second of cycles gives one second of samples
		got := 0
		for i := 0; i < 8; i++ {
			got += len(render(s, testClock/8))
		}
		if got < 44099 || got > 44101 {
			t.Errorf("%s: %d samples for one second, want 44100", m, got)
		}
	}
}

func TestClockSamplesFullBuffer(t *testing.T) {
	s := newTestSID(t, MOS8580, SAMPLE_FAST)
	buf := make([]int16, 10)
	delta := CycleCount(10000)
	n := s.ClockSamples(&delta, buf, len(buf), 1)
	if n != 10 {
		t.Fatalf("n = %d, want 10", n)
	}
	if delta <= 0 || delta >= 10000 {
		t.Fatalf("delta = %d, want the unused cycles left", delta)
	}
}

func TestInterleave(t *testing.T) {
	s := newTestSID(t, MOS8580, SAMPLE_FAST)
	buf := make([]int16, 20)
	for i := range buf {
		buf[i] = 0x5555
	}
	delta := CycleCount(10000)
	n := s.ClockSamples(&delta, buf, 10, 2)
	if n != 10 {
		t.Fatalf("n = %d", n)
	}
	for i := 1; i < len(buf); i += 2 {
		if buf[i] != 0x5555 {
			t.Fatalf("interleaved slot %d overwritten", i)
		}
	}
}
