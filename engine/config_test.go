package engine

import (
	"errors"
	"testing"
)

func TestParseNames(t *testing.T) {
	if k, err := ParseKind("ReSID"); err != nil || k != EngineReSID {
		t.Errorf("ParseKind(ReSID) = %v, %v", k, err)
	}
	if m, err := ParseModel(" 8580d "); err != nil || m != Model8580D {
		t.Errorf("ParseModel(8580d) = %v, %v", m, err)
	}
	if s, err := ParseSampling("resample-fast"); err != nil || s != SampleResampleFast {
		t.Errorf("ParseSampling(resample-fast) = %v, %v", s, err)
	}
	for _, bad := range []func() error{
		func() error { _, err := ParseKind("hardsid"); return err },
		func() error { _, err := ParseModel("6582"); return err },
		func() error { _, err := ParseSampling(""); return err },
	} {
		if err := bad(); !errors.Is(err, ErrConfig) {
			t.Errorf("got %v, want ErrConfig", err)
		}
	}
}

func TestNames(t *testing.T) {
	for m := Model6581; m <= Model6581R4; m++ {
		got, err := ParseModel(m.String())
		if err != nil || got != m {
			t.Errorf("model %d does not parse back from %q", m, m.String())
		}
	}
	if s := Model(9).String(); s != "Model(9)" {
		t.Errorf("unknown model prints %q", s)
	}
	if !Model8580D.Is8580() || Model6581R4.Is8580() {
		t.Error("Is8580 misclassifies the variants")
	}
}

func TestDefaults(t *testing.T) {
	c := DefaultConfig()
	if c.Engine != EngineFast || c.Model != Model6581 || !c.Filters || c.Sampling != SampleFast {
		t.Fatalf("DefaultConfig = %+v", c)
	}
	if c.GainPercent != 97 || c.SampleRate != DefaultSampleRate || c.ClockRate != DefaultClockRate || c.Factor != 1000 {
		t.Fatalf("defaults not filled: %+v", c)
	}
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.passband() != -1 {
		t.Errorf("passband = %v, want -1", c.passband())
	}
	c.PassbandPercent = 90
	if c.passband() != 19845 {
		t.Errorf("passband = %v, want 19845", c.passband())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Config)
	}{
		{"engine", func(c *Config) { c.Engine = 5 }},
		{"model", func(c *Config) { c.Model = -1 }},
		{"sampling", func(c *Config) { c.Sampling = 4 }},
		{"gain low", func(c *Config) { c.GainPercent = 89 }},
		{"gain high", func(c *Config) { c.GainPercent = 101 }},
		{"passband", func(c *Config) { c.PassbandPercent = 91 }},
		{"bias", func(c *Config) { c.FilterBiasMV = 6000 }},
		{"rate", func(c *Config) { c.SampleRate = -1 }},
		{"factor", func(c *Config) { c.Factor = -5 }},
	}
	for _, tt := range tests {
		c := DefaultConfig()
		tt.mod(&c)
		if err := c.Validate(); !errors.Is(err, ErrConfig) {
			t.Errorf("%s: Validate = %v, want ErrConfig", tt.name, err)
		}
	}
}
