package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig is wrapped by every configuration and initialisation failure.
var ErrConfig = errors.New("sid: invalid configuration")

// Kind selects a synthesis backend.
type Kind int

const (
	EngineFast Kind = iota
	EngineReSID
)

var kindNames = []string{"fast", "resid"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Model is the emulated chip. 8580D is an 8580 with the digi boost
// modification, 6581R4 a 6581 whose filter output distorts.
type Model int

const (
	Model6581 Model = iota
	Model8580
	Model8580D
	Model6581R4
)

var modelNames = []string{"6581", "8580", "8580d", "6581r4"}

func (m Model) String() string {
	if m < 0 || int(m) >= len(modelNames) {
		return fmt.Sprintf("Model(%d)", int(m))
	}
	return modelNames[m]
}

// Is8580 reports whether the model is based on the 8580 die.
func (m Model) Is8580() bool {
	return m == Model8580 || m == Model8580D
}

// Sampling is how chip output is turned into host samples.
type Sampling int

const (
	SampleFast Sampling = iota
	SampleInterpolate
	SampleResampleInterpolate
	SampleResampleFast
)

var samplingNames = []string{"fast", "interpolate", "resample", "resample-fast"}

func (s Sampling) String() string {
	if s < 0 || int(s) >= len(samplingNames) {
		return fmt.Sprintf("Sampling(%d)", int(s))
	}
	return samplingNames[s]
}

func parseName(kind, name string, names []string) (int, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range names {
		if n == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q, want one of %s", ErrConfig, kind, name, strings.Join(names, ", "))
}

func ParseKind(name string) (Kind, error) {
	i, err := parseName("engine", name, kindNames)
	return Kind(i), err
}

func ParseModel(name string) (Model, error) {
	i, err := parseName("model", name, modelNames)
	return Model(i), err
}

func ParseSampling(name string) (Sampling, error) {
	i, err := parseName("sampling method", name, samplingNames)
	return Sampling(i), err
}

// PAL machine clock.
const (
	DefaultClockRate  = 985248
	DefaultSampleRate = 44100
)

// Config selects and parameterises a backend.
type Config struct {
	Engine   Kind
	Model    Model
	Filters  bool
	Sampling Sampling

	// Resampler gain, 90-100.
	GainPercent int
	// Resampler passband as a share of the Nyquist frequency, 0-90. 0
	// picks 20kHz or 90% of Nyquist, whichever is lower.
	PassbandPercent int
	// 6581 filter bias in millivolts, resid only.
	FilterBiasMV int

	SampleRate int
	ClockRate  int
	// Playback speed in per mille, fast backend only.
	Factor int
}

// DefaultConfig is the configuration used when a requested one fails.
func DefaultConfig() Config {
	c := Config{Engine: EngineFast, Model: Model6581, Filters: true, Sampling: SampleFast}
	c.Defaults()
	return c
}

// Defaults fills zero fields.
func (c *Config) Defaults() {
	if c.GainPercent == 0 {
		c.GainPercent = 97
	}
	if c.SampleRate == 0 {
		c.SampleRate = DefaultSampleRate
	}
	if c.ClockRate == 0 {
		c.ClockRate = DefaultClockRate
	}
	if c.Factor == 0 {
		c.Factor = 1000
	}
}

// Validate checks every field is in range. It does not know whether the
// backend can realise the combination; Init reports that.
func (c Config) Validate() error {
	switch {
	case c.Engine < 0 || int(c.Engine) >= len(kindNames):
		return fmt.Errorf("%w: engine %d", ErrConfig, int(c.Engine))
	case c.Model < 0 || int(c.Model) >= len(modelNames):
		return fmt.Errorf("%w: model %d", ErrConfig, int(c.Model))
	case c.Sampling < 0 || int(c.Sampling) >= len(samplingNames):
		return fmt.Errorf("%w: sampling method %d", ErrConfig, int(c.Sampling))
	case c.GainPercent < 90 || c.GainPercent > 100:
		return fmt.Errorf("%w: gain %d%% outside 90-100", ErrConfig, c.GainPercent)
	case c.PassbandPercent < 0 || c.PassbandPercent > 90:
		return fmt.Errorf("%w: passband %d%% outside 0-90", ErrConfig, c.PassbandPercent)
	case c.FilterBiasMV < -5000 || c.FilterBiasMV > 5000:
		return fmt.Errorf("%w: filter bias %dmV outside -5000-5000", ErrConfig, c.FilterBiasMV)
	case c.SampleRate <= 0 || c.ClockRate <= 0:
		return fmt.Errorf("%w: sample rate %d and clock %d must be positive", ErrConfig, c.SampleRate, c.ClockRate)
	case c.Factor <= 0:
		return fmt.Errorf("%w: speed factor %d must be positive", ErrConfig, c.Factor)
	}
	return nil
}

// passband returns the resampler passband in Hz, or -1 for the default.
func (c Config) passband() float64 {
	if c.PassbandPercent == 0 {
		return -1
	}
	return float64(c.SampleRate) * float64(c.PassbandPercent) / 200
}
