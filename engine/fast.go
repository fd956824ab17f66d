package engine

import (
	"io"

	"yaspg/sidengine/fastsid"
	"yaspg/sidengine/snapshot"
)

// fastBackend adapts fastsid. It always synthesizes at the host rate; the
// sampling method and resampler settings do not apply.
type fastBackend struct {
	sid *fastsid.SID
}

func newFastBackend() *fastBackend {
	return &fastBackend{sid: fastsid.New()}
}

func (b *fastBackend) Init(cfg Config) error {
	model := fastsid.MOS6581
	if cfg.Model.Is8580() {
		model = fastsid.MOS8580
	}
	return b.sid.Init(cfg.SampleRate, cfg.ClockRate, cfg.Factor, model, cfg.Filters)
}

func (b *fastBackend) Close() {
	b.sid.Close()
}

func (b *fastBackend) Read(addr uint8, clock int64) uint8 {
	return b.sid.Read(addr, clock)
}

func (b *fastBackend) Store(addr, value uint8, clock int64) {
	b.sid.Store(addr, value, clock)
}

func (b *fastBackend) Reset(clock int64) {
	b.sid.Reset()
}

func (b *fastBackend) CalculateSamples(buf []int16, n, interleave int, delta *int) int {
	return b.sid.CalculateSamples(buf, n, interleave, delta)
}

func (b *fastBackend) PreventClockOverflow(sub int64) {
	b.sid.PreventClockOverflow(sub)
}

func (b *fastBackend) DumpState(w io.Writer) {
	b.sid.DumpState(w)
}

func (b *fastBackend) StateRead() *snapshot.Module {
	return b.sid.ReadState().Module()
}

func (b *fastBackend) StateWrite(m *snapshot.Module) error {
	st, err := fastsid.DecodeState(m)
	if err != nil {
		return err
	}
	b.sid.WriteState(st)
	return nil
}

func (b *fastBackend) SetVoiceMask(mask uint8) {
	b.sid.SetVoiceMask(mask)
}

func (b *fastBackend) SetPots(x, y uint8) {
	b.sid.SetPots(x, y)
}
