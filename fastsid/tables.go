package fastsid

import (
	"math"

	"yaspg/sidengine/wavetable"
)

// waveTable maps the top 12 accumulator bits to a 15 bit output. The lower
// half holds the output with pulse low, the upper half with pulse high;
// waveforms without pulse are the same in both halves.
type waveTable [8192]uint16

// Waveforms by control register nibble 0-7, per chip. Noise and its
// combinations are not table driven.
var waveTables [2][8]*waveTable

func init() {
	var tri, saw, pulse waveTable
	for i := range 4096 {
		if i < 2048 {
			tri[i] = uint16(i << 4)
		} else {
			tri[i] = uint16(0xffff - i<<4)
		}
		saw[i] = uint16(i << 3)
		pulse[4096+i] = 0x7fff
	}
	copy(tri[4096:], tri[:4096])
	copy(saw[4096:], saw[:4096])

	for chip, c := range []wavetable.Chip{wavetable.MOS6581, wavetable.MOS8580} {
		set := &waveTables[chip]
		set[0] = new(waveTable)
		set[1], set[2], set[4] = &tri, &saw, &pulse
		for _, w := range []wavetable.Waveform{wavetable.SawTriangle, wavetable.PulseTriangle, wavetable.PulseSawtooth, wavetable.PulseSawTriangle} {
			src := wavetable.MustLookup(c, w)
			t := new(waveTable)
			for i, v := range src {
				t[4096+i] = uint16(v) << 7
				if w&4 == 0 {
					t[i] = t[4096+i]
				}
			}
			set[w] = t
		}
	}
}

// filterModel holds the per chip constants of the filter approximation.
type filterModel struct {
	// cutoff = (exp(fc/2048 * ln(fs)) / fm + ft) at 44.1kHz
	fs, fm, ft float64
	// resonance damping for register values 0 and 15
	resLow, resHigh float32
	// summing amplifier gain for filtered voices
	amp float64
}

var filterModels = [2]filterModel{
	MOS6581: {fs: 400, fm: 60, ft: 0.05, resLow: math.Sqrt2, resHigh: 0.35, amp: 0.7},
	MOS8580: {fs: 600, fm: 700, ft: 0.02, resLow: math.Sqrt2, resHigh: 0.2, amp: 1.0},
}

// filterRefFreq is the sample rate the cutoff curves are given for.
const filterRefFreq = 44100.0

// ampSaturation is the share of a full scale signal lost in the filter
// output amplifier.
const ampSaturation = 0.15

// buildFilter fills the cutoff, band-pass and resonance tables for a chip at
// sample rate rate.
func (s *SID) buildFilter(rate int) {
	m := filterModels[s.model]
	scale := filterRefFreq / float64(rate)

	for fc := range s.lowPass {
		h := (math.Exp(float64(fc)/2048*math.Log(m.fs))/m.fm + m.ft) * scale
		s.lowPass[fc] = float32(min(max(h, 0.01), 1.0))
	}

	// band-pass follows a flatter linear curve
	const bpMin, bpMax = 0.002, 0.22
	for fc := range s.bandPass {
		s.bandPass[fc] = float32(min((bpMin+(bpMax-bpMin)*float64(fc)/2048)*scale, 1.0))
	}

	for r := range s.resTable {
		s.resTable[r] = m.resLow + (m.resHigh-m.resLow)*float32(r)/15
	}

	// The filter output amplifier compresses towards full scale.
	for i := range s.ampMod {
		x := float64(i-0x80) / 0x80
		s.ampMod[i] = int8(math.Round(0x80 * m.amp * (x - ampSaturation*x*x*x)))
	}
}
