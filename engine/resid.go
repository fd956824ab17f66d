package engine

import (
	"io"

	resid "yaspg/sidengine/sid"
	"yaspg/sidengine/snapshot"
)

var residSampling = map[Sampling]resid.SamplingMethod{
	SampleFast:                resid.SAMPLE_FAST,
	SampleInterpolate:         resid.SAMPLE_INTERPOLATE,
	SampleResampleInterpolate: resid.SAMPLE_RESAMPLE_INTERPOLATE,
	SampleResampleFast:        resid.SAMPLE_RESAMPLE_FAST,
}

// residBackend adapts the cycle accurate resid.Sid.
type residBackend struct {
	sid *resid.Sid
}

func newReSIDBackend() *residBackend {
	return &residBackend{sid: resid.NewSID()}
}

func (b *residBackend) Init(cfg Config) error {
	s := b.sid
	// Sampling parameters are checked before anything is changed, so a
	// rejected config leaves the chip as it was.
	err := s.SetSamplingParameters(float64(cfg.ClockRate), residSampling[cfg.Sampling],
		float64(cfg.SampleRate), cfg.passband(), float64(cfg.GainPercent)/100)
	if err != nil {
		return err
	}

	if cfg.Model.Is8580() {
		s.SetModel(resid.MOS8580)
	} else {
		s.SetModel(resid.MOS6581)
	}
	s.EnableFilter(cfg.Filters)
	s.EnableDistortion(cfg.Model == Model6581R4)
	s.SetFilterBias(cfg.FilterBiasMV)

	s.Reset()
	// A constant input makes volume register writes audible, as on an
	// 8580 with the digi boost modification.
	if cfg.Model == Model8580D {
		s.Input(-32768)
	} else {
		s.Input(0)
	}
	return nil
}

func (b *residBackend) Close() {}

func (b *residBackend) Read(addr uint8, clock int64) uint8 {
	return b.sid.Read(addr, clock)
}

func (b *residBackend) Store(addr, value uint8, clock int64) {
	b.sid.Store(addr, value, clock)
}

func (b *residBackend) Reset(clock int64) {
	b.sid.Reset()
}

func (b *residBackend) CalculateSamples(buf []int16, n, interleave int, delta *int) int {
	d := resid.CycleCount(*delta)
	got := b.sid.ClockSamples(&d, buf, n, interleave)
	*delta = int(d)
	return got
}

func (b *residBackend) PreventClockOverflow(sub int64) {
	b.sid.PreventClockOverflow(sub)
}

func (b *residBackend) DumpState(w io.Writer) {
	b.sid.DumpState(w)
}

func (b *residBackend) StateRead() *snapshot.Module {
	return b.sid.ReadState().Module()
}

func (b *residBackend) StateWrite(m *snapshot.Module) error {
	st, err := resid.DecodeState(m)
	if err != nil {
		return err
	}
	b.sid.WriteState(st)
	return nil
}

func (b *residBackend) SetVoiceMask(mask uint8) {
	b.sid.SetVoiceMask(mask)
}

func (b *residBackend) SetPots(x, y uint8) {
	b.sid.SetPots(x, y)
}
