package resid

import (
	"fmt"
	"io"
)

// DumpState writes a human readable summary of the chip to w.
func (s *Sid) DumpState(w io.Writer) {
	fmt.Fprintf(w, "model: %s  sampling: %s  filter: %t\n", s.model, s.sampling, s.filter.Enabled)
	for i, v := range s.voice {
		wave, env := v.Wave, v.Envelope
		fmt.Fprintf(w, "voice %d: freq %04x pw %03x wave %x test %t ring %t sync %t acc %06x noise %06x\n",
			i, wave.freq, wave.pw, wave.waveform, wave.test != 0, wave.ringmod != 0, wave.sync != 0,
			wave.accumulator, wave.shiftreg)
		fmt.Fprintf(w, "         adsr %x%x%x%x gate %d env %02x %s rate %d/%d exp %d/%d\n",
			env.attack, env.decay, env.sustain, env.release, env.gate, env.envelope_counter, env.state,
			env.rate_counter, env.rate_period, env.exponential_counter, env.exponential_counter_period)
	}
	f := s.filter
	fmt.Fprintf(w, "filter: fc %03x res %x route %x mode %x vol %x voice3off %t\n",
		f.Fc, f.Res, f.Filter, f.HpBpLp, f.Volume, f.Voice3Off != 0)
	fmt.Fprintf(w, "bus: %02x (%d bits)  voice mask: %x\n", s.bus.Value, s.bus.Bits, s.voiceMask)
}
