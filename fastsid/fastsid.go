// Package fastsid is a fast, approximate SID. It computes the chip once per
// output sample: 32 bit phase accumulators stepped by a per sample speed,
// a 31 bit linear envelope with an exponential release approximation and a
// simple per voice filter.
package fastsid

import (
	"fmt"

	"yaspg/sidengine/shadow"
)

type Model int

const (
	MOS6581 Model = iota
	MOS8580
)

func (m Model) String() string {
	if m == MOS8580 {
		return "8580"
	}
	return "6581"
}

// SID is one fast SID instance. It is not safe for concurrent use.
type SID struct {
	v    [3]voice
	regs [32]uint8
	bus  shadow.Bus

	model   Model
	filters bool
	vol     uint8
	has3    bool

	potx, poty uint8
	voiceMask  uint8

	// envelope step per rate and sustain levels
	adrs [16]int32
	sz   [16]uint32

	// phase step per sample for a frequency register value of 1, 24.8
	speed1 uint32
	// speed adjustment in per mille, 1000 is real time
	factor int
	// clock cycles per sample and the sub sample position, 16.16
	cyclesPerSample int64
	sampleOffset    int64
	scratch         []int16

	lowPass, bandPass [0x800]float32
	resTable          [16]float32
	ampMod            [256]int8

	filterType, filterCurType uint8
	filterValue               uint16
	filterDy, filterResDy     float32
}

// Settings a new chip runs with until Init is called.
const (
	defaultRate  = 44100
	defaultClock = 985248
)

// New returns a 6581 with filters on, sampled at 44.1kHz from a PAL clock.
func New() *SID {
	s := &SID{voiceMask: 0x0f, potx: 0xff, poty: 0xff, factor: 1000}
	for i := range s.v {
		v := &s.v[i]
		v.s = s
		v.nr = i
		v.prev = &s.v[(i+2)%3]
		v.next = &s.v[(i+1)%3]
		v.d = s.regs[i*7 : i*7+7]
	}
	if err := s.Init(defaultRate, defaultClock, 1000, MOS6581, true); err != nil {
		panic(err)
	}
	return s
}

// Init configures the chip for a sample rate and clock and resets it.
// factor scales the playback speed in per mille.
func (s *SID) Init(rate, clock, factor int, model Model, filters bool) error {
	if rate <= 0 || clock <= 0 {
		return fmt.Errorf("sample rate %d and clock %d must be positive", rate, clock)
	}
	if clock<<8/rate > 0xffff {
		return fmt.Errorf("sample rate %dHz too low for a %dHz clock", rate, clock)
	}
	if factor <= 0 {
		return fmt.Errorf("speed factor %d must be positive", factor)
	}
	if model != MOS6581 && model != MOS8580 {
		return fmt.Errorf("unknown model %d", model)
	}

	s.model = model
	s.filters = filters
	s.factor = factor
	s.speed1 = uint32(clock << 8 / rate)
	s.cyclesPerSample = int64(clock) << 16 / int64(rate)
	for i := range s.adrs {
		s.adrs[i] = int32(500 * 8 * s.speed1 / uint32(adrTable[i]))
		s.sz[i] = 0x8888888 * uint32(i)
	}
	s.buildFilter(rate)
	s.Reset()
	return nil
}

// Reset clears the registers and all voice state.
func (s *SID) Reset() {
	s.regs = [32]uint8{}
	s.bus.Reset()
	s.sampleOffset = 0
	s.filterCurType = 0
	for i := range s.v {
		v := &s.v[i]
		v.f, v.rv = 0, noiseSeed
		v.adsr = 0
		v.phase = Idle
		v.filtIO, v.filtLow, v.filtRef = 0, 0, 0
		v.setup()
	}
	s.setupFilter()
	s.SetVoiceMask(s.voiceMask)
}

// Close releases the scratch buffer.
func (s *SID) Close() {
	s.scratch = nil
}

func (s *SID) Model() Model {
	return s.model
}

// Store writes a register at clock. Voice settings, including the gate,
// take effect at once.
func (s *SID) Store(addr, value uint8, clock int64) {
	addr &= 0x1f
	s.bus.Store(value, clock)
	s.regs[addr] = value

	switch {
	case addr < 21:
		s.v[addr/7].setup()
	case addr <= 0x18:
		s.setupFilter()
	}
}

// Read returns a register as seen by the CPU at clock.
func (s *SID) Read(addr uint8, clock int64) uint8 {
	switch addr & 0x1f {
	case 0x19:
		return s.potx
	case 0x1a:
		return s.poty
	case 0x1b:
		return uint8(s.v[2].osc() >> 7)
	case 0x1c:
		return uint8(s.v[2].adsr >> 23)
	default:
		return s.bus.Read(clock)
	}
}

func (s *SID) SetPots(x, y uint8) {
	s.potx, s.poty = x, y
}

// SetVoiceMask enables voices by bit. Muted voices keep running. There is
// no external input, bit 3 is kept only for symmetry.
func (s *SID) SetVoiceMask(mask uint8) {
	s.voiceMask = mask & 0x0f
	for i := range s.v {
		s.v[i].muted = s.voiceMask&(1<<i) == 0
	}
}

func (s *SID) VoiceMask() uint8 {
	return s.voiceMask
}

// PreventClockOverflow rebases stored clocks after the host subtracted sub
// from its cycle counter.
func (s *SID) PreventClockOverflow(sub int64) {
	s.bus.Rebase(sub)
}

// CalculateSamples produces up to n samples, every interleave entries of
// buf, for at most *delta clock cycles and returns the count. *delta is
// reduced by the cycles used; when buf fills first the rest is left for the
// next call, otherwise all of it is consumed.
func (s *SID) CalculateSamples(buf []int16, n, interleave int, delta *int) int {
	nr := 0
	for {
		next := s.sampleOffset + s.cyclesPerSample
		cycles := int(next >> 16)
		if cycles > *delta {
			s.sampleOffset -= int64(*delta) << 16
			*delta = 0
			break
		}
		if nr >= n {
			break
		}
		*delta -= cycles
		s.sampleOffset = next & 0xffff
		nr++
	}

	if s.factor == 1000 {
		for i := range nr {
			buf[i*interleave] = s.sample()
		}
		return nr
	}

	// Synthesize factor/1000 samples per output sample and pick the nearest.
	size := (nr*s.factor + 999) / 1000
	if cap(s.scratch) < size {
		s.scratch = make([]int16, size)
	}
	tmp := s.scratch[:size]
	for i := range tmp {
		tmp[i] = s.sample()
	}
	for i := range nr {
		buf[i*interleave] = tmp[i*s.factor/1000]
	}
	return nr
}

// sample computes one output sample.
func (s *SID) sample() int16 {
	v0, v1, v2 := &s.v[0], &s.v[1], &s.v[2]

	sync1 := v0.advance() && v1.sync
	sync2 := v1.advance() && v2.sync
	if v2.advance() && v0.sync {
		v0.hardSync()
	}
	if sync2 {
		v2.hardSync()
	}
	if sync1 {
		v1.hardSync()
	}

	v0.clockADSR()
	v1.clockADSR()
	v2.clockADSR()

	var o [3]uint32
	for i := range s.v {
		v := &s.v[i]
		if v.muted || (i == 2 && !s.has3) {
			continue
		}
		if env := v.adsr >> 16; env != 0 {
			o[i] = env * v.osc()
		}
		if v.filter {
			v.filtIO = s.ampMod[o[i]>>22]
			s.filter(v)
			o[i] = uint32(int32(v.filtIO)+0x80) << 22
		}
	}
	return int16((int32((o[0]+o[1]+o[2])>>20) - 0x600) * int32(s.vol))
}
