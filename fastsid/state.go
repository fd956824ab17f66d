package fastsid

import (
	"fmt"
	"math"

	"yaspg/sidengine/snapshot"
)

const (
	StateName  = "FASTSID"
	StateMajor = 1
	StateMinor = 0
)

type VoiceState struct {
	Accumulator   uint32
	ShiftRegister uint32
	Envelope      uint32
	EnvelopeStep  int32
	EnvelopeLimit uint32
	Phase         uint8
	FilterIO      int8
	FilterLow     float32
	FilterRef     float32
}

// State is everything needed to continue a SID exactly, given the same
// configuration.
type State struct {
	Registers    [32]uint8
	BusValue     uint8
	BusBits      uint8
	BusClock     int64
	Voice        [3]VoiceState
	FilterType   uint8
	VoiceMask    uint8
	SampleOffset int64
}

func (s *SID) ReadState() *State {
	st := &State{
		Registers:    s.regs,
		BusValue:     s.bus.Value,
		BusBits:      s.bus.Bits,
		BusClock:     s.bus.Clock,
		FilterType:   s.filterCurType,
		VoiceMask:    s.voiceMask,
		SampleOffset: s.sampleOffset,
	}
	for i := range s.v {
		v := &s.v[i]
		st.Voice[i] = VoiceState{
			Accumulator:   v.f,
			ShiftRegister: v.rv,
			Envelope:      v.adsr,
			EnvelopeStep:  v.adsrs,
			EnvelopeLimit: v.adsrz,
			Phase:         uint8(v.phase),
			FilterIO:      v.filtIO,
			FilterLow:     v.filtLow,
			FilterRef:     v.filtRef,
		}
	}
	return st
}

// WriteState restores st. The registers are applied first so every derived
// value follows them, then the running state is overwritten.
func (s *SID) WriteState(st *State) {
	s.regs = st.Registers
	s.setupFilter()
	for i := range s.v {
		s.v[i].setup()
	}

	s.bus.Value, s.bus.Bits, s.bus.Clock = st.BusValue, min(st.BusBits, 8), st.BusClock
	s.filterCurType = st.FilterType
	s.SetVoiceMask(st.VoiceMask)
	s.sampleOffset = st.SampleOffset

	for i := range s.v {
		v, vs := &s.v[i], &st.Voice[i]
		v.f = vs.Accumulator
		v.rv = vs.ShiftRegister & 0x7fffff
		v.adsr = vs.Envelope
		v.adsrs = vs.EnvelopeStep
		v.adsrz = vs.EnvelopeLimit
		v.phase = Phase(vs.Phase)
		v.filtIO = vs.FilterIO
		v.filtLow, v.filtRef = vs.FilterLow, vs.FilterRef
	}
}

// Module encodes the state as a snapshot record.
func (st *State) Module() *snapshot.Module {
	w := snapshot.NewWriter(StateName, StateMajor, StateMinor)
	w.Bytes(st.Registers[:])
	w.Byte(st.BusValue)
	w.Byte(st.BusBits)
	w.Qword(uint64(st.BusClock))
	v := &st.Voice
	for i := range v {
		w.Dword(v[i].Accumulator)
	}
	for i := range v {
		w.Dword(v[i].ShiftRegister)
	}
	for i := range v {
		w.Dword(v[i].Envelope)
	}
	for i := range v {
		w.Dword(uint32(v[i].EnvelopeStep))
	}
	for i := range v {
		w.Dword(v[i].EnvelopeLimit)
	}
	for i := range v {
		w.Byte(v[i].Phase)
	}
	for i := range v {
		w.Byte(uint8(v[i].FilterIO))
	}
	for i := range v {
		w.Float32(v[i].FilterLow)
	}
	for i := range v {
		w.Float32(v[i].FilterRef)
	}
	w.Byte(st.FilterType)
	w.Byte(st.VoiceMask)
	w.Qword(uint64(st.SampleOffset))
	return w.Module()
}

func DecodeState(m *snapshot.Module) (*State, error) {
	r, err := snapshot.NewReader(m, StateName, StateMajor)
	if err != nil {
		return nil, err
	}

	st := &State{}
	r.Bytes(st.Registers[:])
	st.BusValue = r.Byte()
	st.BusBits = r.Byte()
	st.BusClock = int64(r.Qword())
	v := &st.Voice
	for i := range v {
		v[i].Accumulator = r.Dword()
	}
	for i := range v {
		v[i].ShiftRegister = r.Dword()
	}
	for i := range v {
		v[i].Envelope = r.Dword()
	}
	for i := range v {
		v[i].EnvelopeStep = int32(r.Dword())
	}
	for i := range v {
		v[i].EnvelopeLimit = r.Dword()
	}
	for i := range v {
		v[i].Phase = r.Byte()
	}
	for i := range v {
		v[i].FilterIO = int8(r.Byte())
	}
	for i := range v {
		v[i].FilterLow = r.Float32()
	}
	for i := range v {
		v[i].FilterRef = r.Float32()
	}
	st.FilterType = r.Byte()
	st.VoiceMask = r.Byte()
	st.SampleOffset = int64(r.Qword())

	if err := r.Err(); err != nil {
		return nil, err
	}
	for i, vs := range st.Voice {
		if vs.Phase > uint8(Idle) {
			return nil, fmt.Errorf("%w: voice %d envelope phase %d", snapshot.ErrMalformed, i, vs.Phase)
		}
		if math.IsNaN(float64(vs.FilterLow)) || math.IsNaN(float64(vs.FilterRef)) {
			return nil, fmt.Errorf("%w: voice %d filter state", snapshot.ErrMalformed, i)
		}
	}
	return st, nil
}
