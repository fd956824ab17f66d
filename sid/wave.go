package resid

import "yaspg/sidengine/wavetable"

// Shift register seed loaded when the test bit is released.
const noiseSeed reg24 = 0x7ffff8

// Cycles the test bit must be held before the noise register has faded to
// all zero bits.
const (
	shiftRegisterReset6581 CycleCount = 0x8000
	shiftRegisterReset8580 CycleCount = 0x950000
)

// WaveformGenerator is the oscillator of one voice: a 24 bit phase
// accumulator, the noise shift register and the waveform selector.
type WaveformGenerator struct {
	syncDest    *WaveformGenerator
	syncSource  *WaveformGenerator
	msbRising   bool
	accumulator reg24
	shiftreg    reg24
	freq        reg16
	pw          reg12
	waveform    reg8
	test        reg8
	ringmod     reg8
	sync        reg8

	// Cycles left until the noise register is cleared while test is held.
	shiftRegisterReset CycleCount

	wave__ST *wavetable.Table
	wave_P_T *wavetable.Table
	wave_PS_ *wavetable.Table
	wave_PST *wavetable.Table

	model Model
}

func NewWaveformGenerator() *WaveformGenerator {
	w := &WaveformGenerator{}
	w.syncSource = w
	w.syncDest = w
	w.SetModel(MOS6581)
	w.Reset()
	return w
}

func (w *WaveformGenerator) Reset() {
	w.accumulator = 0
	w.shiftreg = noiseSeed
	w.freq = 0
	w.pw = 0
	w.waveform = 0

	w.test = 0
	w.ringmod = 0
	w.sync = 0

	w.msbRising = false
	w.shiftRegisterReset = 0
}

// SetSyncSource makes source the voice that hard syncs and ring modulates w.
func (w *WaveformGenerator) SetSyncSource(source *WaveformGenerator) {
	w.syncSource = source
	source.syncDest = w
}

func (w *WaveformGenerator) SetModel(model Model) {
	w.model = model

	chip := wavetable.MOS6581
	if model == MOS8580 {
		chip = wavetable.MOS8580
	}
	w.wave__ST = wavetable.MustLookup(chip, wavetable.SawTriangle)
	w.wave_P_T = wavetable.MustLookup(chip, wavetable.PulseTriangle)
	w.wave_PS_ = wavetable.MustLookup(chip, wavetable.PulseSawtooth)
	w.wave_PST = wavetable.MustLookup(chip, wavetable.PulseSawTriangle)
}

func (w *WaveformGenerator) resetCycles() CycleCount {
	if w.model == MOS8580 {
		return shiftRegisterReset8580
	}
	return shiftRegisterReset6581
}

// Clock advances the accumulator by delta_t cycles.
func (w *WaveformGenerator) Clock(delta_t CycleCount) {
	// The accumulator is frozen while test is held; only the noise
	// register keeps fading.
	if w.test != 0 {
		if w.shiftRegisterReset > 0 {
			w.shiftRegisterReset -= delta_t
			if w.shiftRegisterReset <= 0 {
				w.shiftRegisterReset = 0
				w.shiftreg = 0
			}
		}
		w.msbRising = false
		return
	}

	accumulator_prev := w.accumulator

	delta_accumulator := reg24(delta_t) * reg24(w.freq)
	w.accumulator += delta_accumulator
	w.accumulator &= 0xffffff

	w.msbRising = accumulator_prev&0x800000 == 0 && w.accumulator&0x800000 != 0

	// One noise shift per rising edge of accumulator bit 19, i.e. one per
	// 0x100000 added. The last, partial period only shifts if bit 19 went
	// from 0 to 1 within it.
	var shift_period reg24 = 0x100000

	for delta_accumulator > 0 {
		if delta_accumulator < shift_period {
			shift_period = delta_accumulator
			if shift_period <= 0x080000 {
				if (w.accumulator-shift_period)&0x080000 != 0 || w.accumulator&0x080000 == 0 {
					break
				}
			} else {
				if (w.accumulator-shift_period)&0x080000 != 0 && w.accumulator&0x080000 == 0 {
					break
				}
			}
		}

		w.shiftreg = noiseClock(w.shiftreg)
		delta_accumulator -= shift_period
	}
}

// noiseClock shifts the 23 bit register once, feeding back bit 22 ^ bit 17.
func noiseClock(r reg24) reg24 {
	bit0 := (r>>22 ^ r>>17) & 0x1
	return (r<<1)&0x7fffff | bit0
}

// Synchronize resets the destination accumulator on a rising MSB. A source
// that is itself synced on the cycle its MSB rises does not sync.
func (w *WaveformGenerator) Synchronize() {
	if w.msbRising && w.syncDest.sync != 0 && !(w.sync != 0 && w.syncSource.msbRising) {
		w.syncDest.accumulator = 0
	}
}

// Triangle: the lower 11 bits of the upper 12, inverted while the MSB is set
// and shifted left. With ring modulation the MSB is XORed with the sync
// source MSB.
func (w *WaveformGenerator) output___T() reg12 {
	msb := w.accumulator
	if w.ringmod != 0 {
		msb ^= w.syncSource.accumulator
	}

	if msb&0x800000 != 0 {
		return reg12((^w.accumulator >> 11) & 0xffe)
	}
	return reg12((w.accumulator >> 11) & 0xffe)
}

// Sawtooth: the upper 12 bits of the accumulator.
func (w *WaveformGenerator) output__S_() reg12 {
	return reg12(w.accumulator >> 12)
}

// Pulse: all ones while the upper 12 bits reach the pulse width, or while
// test is held.
func (w *WaveformGenerator) output_P__() reg12 {
	if w.test != 0 || w.accumulator>>12 >= reg24(w.pw) {
		return 0xfff
	}
	return 0x000
}

// Noise: eight bits of the shift register mapped to the top of the output.
//
//	register bit  22 20 16 13 11  7  4  2
//	output bit    11 10  9  8  7  6  5  4
func (w *WaveformGenerator) outputN___() reg12 {
	r := w.shiftreg
	return reg12((r&0x400000)>>11 |
		(r&0x100000)>>10 |
		(r&0x010000)>>7 |
		(r&0x002000)>>5 |
		(r&0x000800)>>4 |
		(r&0x000080)>>1 |
		(r&0x000010)<<1 |
		(r&0x000004)<<2)
}

// Combined waveforms come from the model tables, which keep 8 bits. The
// pulse+triangle table is indexed by the triangle so ring modulation still
// applies; only its rising half is needed.
func (w *WaveformGenerator) output__ST() reg12 {
	return reg12(w.wave__ST[w.output__S_()]) << 4
}

func (w *WaveformGenerator) output_P_T() reg12 {
	return reg12(w.wave_P_T[w.output___T()>>1]) << 4 & w.output_P__()
}

func (w *WaveformGenerator) output_PS_() reg12 {
	return reg12(w.wave_PS_[w.output__S_()]) << 4 & w.output_P__()
}

func (w *WaveformGenerator) output_PST() reg12 {
	return reg12(w.wave_PST[w.output__S_()]) << 4 & w.output_P__()
}

// Output returns the 12 bit waveform selected by the control register.
// Combinations with noise are silent.
func (w *WaveformGenerator) Output() reg12 {
	switch w.waveform {
	case 0x1:
		return w.output___T()
	case 0x2:
		return w.output__S_()
	case 0x3:
		return w.output__ST()
	case 0x4:
		return w.output_P__()
	case 0x5:
		return w.output_P_T()
	case 0x6:
		return w.output_PS_()
	case 0x7:
		return w.output_PST()
	case 0x8:
		return w.outputN___()
	default:
		return 0
	}
}

func (w *WaveformGenerator) WriteFREQ_LO(freq_lo reg8) {
	w.freq = w.freq&0xff00 | reg16(freq_lo)
}

func (w *WaveformGenerator) WriteFREQ_HI(freq_hi reg8) {
	w.freq = reg16(freq_hi)<<8 | w.freq&0x00ff
}

func (w *WaveformGenerator) WritePW_LO(pw_lo reg8) {
	w.pw = w.pw&0xf00 | reg12(pw_lo)
}

func (w *WaveformGenerator) WritePW_HI(pw_hi reg8) {
	w.pw = (reg12(pw_hi)<<8)&0xf00 | w.pw&0x0ff
}

// WriteCONTROL_REG handles every control bit except gate.
func (w *WaveformGenerator) WriteCONTROL_REG(control reg8) {
	w.waveform = (control >> 4) & 0x0f
	w.ringmod = control & 0x04
	w.sync = control & 0x02

	test_next := control & 0x08

	switch {
	case test_next != 0 && w.test == 0:
		// The accumulator clears at once; the noise bits take a while to
		// fade to zero.
		w.accumulator = 0
		w.shiftRegisterReset = w.resetCycles()
	case test_next == 0 && w.test != 0:
		if w.shiftRegisterReset == 0 {
			w.shiftreg = noiseSeed
		} else {
			w.shiftreg |= noiseSeed
			w.shiftRegisterReset = 0
		}
	}

	w.test = test_next
}

func (w *WaveformGenerator) readOSC() reg8 {
	return reg8(w.Output() >> 4)
}
