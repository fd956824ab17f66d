package resid

import (
	"fmt"

	"yaspg/sidengine/shadow"
	"yaspg/sidengine/snapshot"
)

// Snapshot record identity. Minor 1 added the write pipeline and voice
// mask, minor 2 everything needed to continue sample exact: the noise and
// envelope pipelines, bus shadow, filter integrators and resampler ring.
const (
	StateName  = "RESID"
	StateMajor = 1
	StateMinor = 2
)

type VoiceState struct {
	Accumulator              uint32
	ShiftRegister            uint32
	RateCounter              uint16
	RateCounterPeriod        uint16
	ExponentialCounter       uint16
	ExponentialCounterPeriod uint16
	EnvelopeCounter          uint8
	EnvelopeState            uint8
	HoldZero                 bool

	ShiftRegisterReset uint32
	// bit 0: decrement pending, bit 1: decrements delayed
	EnvelopePipeline uint8
}

// ChipState is everything a Sid needs to continue exactly where another
// left off, given the same configuration.
type ChipState struct {
	SidRegister [0x20]uint8
	BusValue    uint8
	Voice       [3]VoiceState

	WritePipeline uint8
	WriteAddress  uint8
	VoiceMask     uint8

	WriteValue     uint8
	BusBits        uint8
	BusClock       int64
	FilterPhase    uint8
	Vhp, Vbp       int64
	Vlp, Vnf       int64
	ExtVlp, ExtVhp int64
	ExtVo          int64
	SampleOffset   int64
	SamplePrev     int16
	SampleIndex    uint16
	Ring           [RINGSIZE]int16
}

// ReadState captures the chip.
func (s *Sid) ReadState() *ChipState {
	st := &ChipState{}
	for i, r := range s.regs {
		st.SidRegister[i] = uint8(r)
	}
	st.BusValue = s.bus.Value
	st.BusBits = s.bus.Bits
	st.BusClock = s.bus.Clock

	for i, v := range s.voice {
		w, e := v.Wave, v.Envelope
		vs := &st.Voice[i]
		vs.Accumulator = uint32(w.accumulator)
		vs.ShiftRegister = uint32(w.shiftreg)
		vs.ShiftRegisterReset = uint32(w.shiftRegisterReset)
		vs.RateCounter = uint16(e.rate_counter)
		vs.RateCounterPeriod = uint16(e.rate_period)
		vs.ExponentialCounter = uint16(e.exponential_counter)
		vs.ExponentialCounterPeriod = uint16(e.exponential_counter_period)
		vs.EnvelopeCounter = uint8(e.envelope_counter)
		vs.EnvelopeState = uint8(e.state)
		vs.HoldZero = e.holdZero
		vs.EnvelopePipeline = uint8(e.envelopePipeline & 1)
		if e.envelopeDelayed {
			vs.EnvelopePipeline |= 2
		}
	}

	st.WritePipeline = uint8(s.writePipeline)
	st.WriteAddress = s.writeAddress
	st.WriteValue = uint8(s.writeValue)
	st.VoiceMask = uint8(s.voiceMask)

	st.FilterPhase = uint8(s.filterPhase)
	st.Vhp, st.Vbp = int64(s.filter.Vhp), int64(s.filter.Vbp)
	st.Vlp, st.Vnf = int64(s.filter.Vlp), int64(s.filter.Vnf)
	st.ExtVlp, st.ExtVhp = int64(s.extfilter.Vlp), int64(s.extfilter.Vhp)
	st.ExtVo = int64(s.extfilter.Vo)

	st.SampleOffset = int64(s.sample_offset)
	st.SamplePrev = s.sample_prev
	st.SampleIndex = uint16(s.sample_index)
	if s.sample != nil {
		copy(st.Ring[:], s.sample[:RINGSIZE])
	}
	return st
}

// WriteState restores a captured chip. Registers are written first so all
// derived values follow; the internal fields are then overwritten. A zero
// period in st never replaces the current one.
func (s *Sid) WriteState(st *ChipState) {
	s.writePipeline = 0
	for i := uint8(0); i <= 0x18; i++ {
		s.writeAddress = i
		s.writeValue = reg8(st.SidRegister[i])
		s.write()
	}
	s.regs = [0x20]reg8{}
	for i, r := range st.SidRegister {
		s.regs[i] = reg8(r)
	}

	s.bus = shadow.Bus{Value: st.BusValue, Bits: min(st.BusBits, 8), Clock: st.BusClock}

	for i, v := range s.voice {
		w, e := v.Wave, v.Envelope
		vs := &st.Voice[i]
		w.accumulator = reg24(vs.Accumulator & 0xffffff)
		w.shiftreg = reg24(vs.ShiftRegister & 0x7fffff)
		w.shiftRegisterReset = CycleCount(vs.ShiftRegisterReset)
		w.msbRising = false
		e.rate_counter = reg16(vs.RateCounter & 0x7fff)
		if vs.RateCounterPeriod != 0 {
			e.rate_period = reg16(vs.RateCounterPeriod)
		}
		e.exponential_counter = int(vs.ExponentialCounter)
		if vs.ExponentialCounterPeriod != 0 {
			e.exponential_counter_period = int(vs.ExponentialCounterPeriod)
		}
		e.envelope_counter = int(vs.EnvelopeCounter)
		e.state = State(vs.EnvelopeState)
		e.holdZero = vs.HoldZero
		e.envelopePipeline = int(vs.EnvelopePipeline & 1)
		e.envelopeDelayed = vs.EnvelopePipeline&2 != 0
	}

	s.writePipeline = int(st.WritePipeline & 1)
	s.writeAddress = st.WriteAddress & 0x1f
	s.writeValue = reg8(st.WriteValue)
	s.SetVoiceMask(st.VoiceMask)

	s.filterPhase = CycleCount(st.FilterPhase) % filterStep
	s.filter.Vhp, s.filter.Vbp = sound_sample(st.Vhp), sound_sample(st.Vbp)
	s.filter.Vlp, s.filter.Vnf = sound_sample(st.Vlp), sound_sample(st.Vnf)
	s.extfilter.Vlp, s.extfilter.Vhp = sound_sample(st.ExtVlp), sound_sample(st.ExtVhp)
	s.extfilter.Vo = sound_sample(st.ExtVo)

	s.sample_offset = CycleCount(st.SampleOffset)
	s.sample_prev = st.SamplePrev
	if s.sample != nil {
		s.sample_index = int(st.SampleIndex) & RINGMASK
		copy(s.sample[:RINGSIZE], st.Ring[:])
		copy(s.sample[RINGSIZE:], st.Ring[:])
	}
}

// Module encodes the state as a snapshot record.
func (st *ChipState) Module() *snapshot.Module {
	w := snapshot.NewWriter(StateName, StateMajor, StateMinor)

	for _, r := range st.SidRegister {
		w.Byte(r)
	}
	w.Byte(st.BusValue)
	// voice fields are stored as arrays of three, one field after another
	v := &st.Voice
	for i := range v {
		w.Dword(v[i].Accumulator)
	}
	for i := range v {
		w.Dword(v[i].ShiftRegister)
	}
	for i := range v {
		w.Word(v[i].RateCounter)
	}
	for i := range v {
		w.Word(v[i].RateCounterPeriod)
	}
	for i := range v {
		w.Word(v[i].ExponentialCounter)
	}
	for i := range v {
		w.Word(v[i].ExponentialCounterPeriod)
	}
	for i := range v {
		w.Byte(v[i].EnvelopeCounter)
	}
	for i := range v {
		w.Byte(v[i].EnvelopeState)
	}
	for i := range v {
		w.Bool(v[i].HoldZero)
	}

	// minor 1
	w.Byte(st.WritePipeline)
	w.Byte(st.WriteAddress)
	w.Byte(st.VoiceMask)

	// minor 2
	w.Byte(st.WriteValue)
	w.Byte(st.BusBits)
	w.Qword(uint64(st.BusClock))
	for i := range v {
		w.Dword(v[i].ShiftRegisterReset)
	}
	for i := range v {
		w.Byte(v[i].EnvelopePipeline)
	}
	w.Byte(st.FilterPhase)
	for _, v := range []int64{st.Vhp, st.Vbp, st.Vlp, st.Vnf, st.ExtVlp, st.ExtVhp, st.ExtVo, st.SampleOffset} {
		w.Qword(uint64(v))
	}
	w.Word(uint16(st.SamplePrev))
	w.Word(st.SampleIndex)
	for _, v := range st.Ring {
		w.Word(uint16(v))
	}

	return w.Module()
}

// DecodeState parses a RESID record. Fields added after the record's minor
// version keep their defaults: no pending write, all voices enabled, a
// fully valid bus value, and cleared filter and resampler state.
func DecodeState(m *snapshot.Module) (*ChipState, error) {
	r, err := snapshot.NewReader(m, StateName, StateMajor)
	if err != nil {
		return nil, err
	}

	st := &ChipState{VoiceMask: 0x0f, BusBits: 8}
	for i := range st.SidRegister {
		st.SidRegister[i] = r.Byte()
	}
	st.BusValue = r.Byte()
	v := &st.Voice
	for i := range v {
		v[i].Accumulator = r.Dword()
	}
	for i := range v {
		v[i].ShiftRegister = r.Dword()
	}
	for i := range v {
		v[i].RateCounter = r.Word()
	}
	for i := range v {
		v[i].RateCounterPeriod = r.Word()
	}
	for i := range v {
		v[i].ExponentialCounter = r.Word()
	}
	for i := range v {
		v[i].ExponentialCounterPeriod = r.Word()
	}
	for i := range v {
		v[i].EnvelopeCounter = r.Byte()
	}
	for i := range v {
		v[i].EnvelopeState = r.Byte()
		if v[i].EnvelopeState > uint8(RELEASE) {
			return nil, fmt.Errorf("%w: voice %d envelope state %d", snapshot.ErrMalformed, i, v[i].EnvelopeState)
		}
	}
	for i := range v {
		v[i].HoldZero = r.Bool()
	}

	if r.Minor() >= 1 {
		st.WritePipeline = r.Byte()
		st.WriteAddress = r.Byte()
		st.VoiceMask = r.Byte()
	}

	if r.Minor() >= 2 {
		st.WriteValue = r.Byte()
		st.BusBits = r.Byte()
		st.BusClock = int64(r.Qword())
		for i := range v {
			v[i].ShiftRegisterReset = r.Dword()
		}
		for i := range v {
			v[i].EnvelopePipeline = r.Byte()
		}
		st.FilterPhase = r.Byte()
		for _, p := range []*int64{&st.Vhp, &st.Vbp, &st.Vlp, &st.Vnf, &st.ExtVlp, &st.ExtVhp, &st.ExtVo, &st.SampleOffset} {
			*p = int64(r.Qword())
		}
		st.SamplePrev = int16(r.Word())
		st.SampleIndex = r.Word()
		for i := range st.Ring {
			st.Ring[i] = int16(r.Word())
		}
	}

	if err := r.Err(); err != nil {
		return nil, err
	}
	return st, nil
}
