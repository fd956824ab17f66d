package resid

import (
	"yaspg/sidengine/shadow"
)

// The filters are integrated every filterStep cycles, counted from reset, so
// the chip state does not depend on how callers split their clock calls.
const filterStep CycleCount = 8

// Voice registers repeat every voiceRegs bytes.
const voiceRegs = 7

type Sid struct {
	voice     [3]*Voice
	filter    *SidFilter
	extfilter *ExternalFilter
	potx      reg8
	poty      reg8
	bus       shadow.Bus
	extIn     sound_sample
	model     Model
	regs      [0x20]reg8

	// A 6581 register write lands one cycle after the bus write.
	writePipeline int
	writeAddress  uint8
	writeValue    reg8

	// Bit n enables voice n, bit 3 the external input.
	voiceMask reg4

	filterPhase CycleCount

	// Sampling state, see resample.go.
	clock_frequency   float64
	sampling          SamplingMethod
	cycles_per_sample CycleCount
	sample_offset     CycleCount
	sample_prev       int16
	sample_index      int
	fir_N             int
	fir_RES           int
	fir               []int16
	sample            []int16
}

func NewSID() *Sid {
	sid := &Sid{}
	sid.voice[0] = NewVoice()
	sid.voice[1] = NewVoice()
	sid.voice[2] = NewVoice()

	sid.voice[0].SetSyncSource(sid.voice[2])
	sid.voice[1].SetSyncSource(sid.voice[0])
	sid.voice[2].SetSyncSource(sid.voice[1])

	sid.filter = NewSidFilter()
	sid.extfilter = NewExternalFilter()
	sid.voiceMask = 0x0f
	sid.potx, sid.poty = 0xff, 0xff

	// Cannot fail for the fast method.
	_ = sid.SetSamplingParameters(985248, SAMPLE_FAST, 44100, -1, 0.97)

	return sid
}

func (s *Sid) Reset() {
	s.voice[0].Reset()
	s.voice[1].Reset()
	s.voice[2].Reset()

	s.filter.Reset()
	s.extfilter.Reset()

	s.bus.Reset()
	s.regs = [0x20]reg8{}
	s.writePipeline = 0
	s.writeAddress = 0
	s.writeValue = 0
	s.filterPhase = 0
}

func (s *Sid) SetModel(model Model) {
	s.model = model
	s.voice[0].SetModel(model)
	s.voice[1].SetModel(model)
	s.voice[2].SetModel(model)

	s.filter.SetModel(model)
	s.extfilter.SetModel(model)
}

func (s *Sid) Model() Model {
	return s.model
}

// EnableFilter bypasses the filter when disabled. The external RC filter
// stays in place.
func (s *Sid) EnableFilter(enable bool) {
	s.filter.EnableFilter(enable)
}

// EnableDistortion soft clips the filter output.
func (s *Sid) EnableDistortion(enable bool) {
	s.filter.Distortion = enable
}

// SetFilterBias shifts the 6581 cutoff curve by mV millivolts.
func (s *Sid) SetFilterBias(mV int) {
	s.filter.SetBias(mV)
}

// Input feeds a 16 bit sample to the external audio input. It is scaled to
// three voices, so a constant input lets volume register writes be heard as
// on an 8580 with the "digi boost" modification.
func (s *Sid) Input(sample int) {
	s.extIn = sound_sample(sample<<4) * 3
}

// Output returns the current 16 bit sample, saturated.
func (s *Sid) Output() int {
	const rng = 1 << 16
	const half = rng >> 1
	sample := int(s.extfilter.Output()) / ((4095 * 255 >> 7) * 3 * 15 * 2 / rng)
	if sample >= half {
		return half - 1
	}
	if sample < -half {
		return -half
	}
	return sample
}

// SetPots sets the values read back from the paddle registers.
func (s *Sid) SetPots(x, y uint8) {
	s.potx, s.poty = reg8(x), reg8(y)
}

// Read returns a register as seen by the CPU at clock. Write-only
// registers return the decaying value of the last write.
func (s *Sid) Read(offset uint8, clock int64) uint8 {
	switch offset {
	case 0x19:
		return uint8(s.potx)
	case 0x1a:
		return uint8(s.poty)
	case 0x1b:
		return uint8(s.voice[2].Wave.readOSC())
	case 0x1c:
		return uint8(s.voice[2].Envelope.readENV())
	default:
		return s.bus.Read(clock)
	}
}

// Store is a CPU write at clock. The bus shadow is loaded at once; on the
// 6581 the register itself changes one cycle later.
func (s *Sid) Store(offset uint8, value uint8, clock int64) {
	s.bus.Store(value, clock)
	s.Write(offset, value)
}

// Write sets a register without touching the bus shadow.
func (s *Sid) Write(offset uint8, value uint8) {
	if s.writePipeline != 0 {
		s.write()
	}
	s.writeAddress = offset & 0x1f
	s.writeValue = reg8(value)
	if s.model == MOS6581 {
		s.writePipeline = 1
		return
	}
	s.write()
}

// write applies the latched register write.
func (s *Sid) write() {
	s.writePipeline = 0
	offset, value := s.writeAddress, s.writeValue
	s.regs[offset] = value

	if offset < 3*voiceRegs {
		s.writeVoice(s.voice[offset/voiceRegs], offset%voiceRegs, value)
		return
	}

	switch offset {
	case 0x15:
		s.filter.WriteFC_LO(value)
	case 0x16:
		s.filter.WriteFC_HI(value)
	case 0x17:
		s.filter.WriteRES_FILT(value)
	case 0x18:
		s.filter.WriteMODE_VOL(value)
	}
}

func (s *Sid) writeVoice(v *Voice, reg uint8, value reg8) {
	switch reg {
	case 0:
		v.Wave.WriteFREQ_LO(value)
	case 1:
		v.Wave.WriteFREQ_HI(value)
	case 2:
		v.Wave.WritePW_LO(value)
	case 3:
		v.Wave.WritePW_HI(value)
	case 4:
		v.WriteCONTROL_REG(value)
	case 5:
		v.Envelope.WriteATTACK_DECAY(value)
	case 6:
		v.Envelope.WriteSUSTAIN_RELEASE(value)
	}
}

// Mute silences one voice, 0-2, or the external input, 3.
func (s *Sid) Mute(channel uint8, enable bool) {
	if channel > 3 {
		return
	}
	mask := s.voiceMask
	if enable {
		mask &^= 1 << channel
	} else {
		mask |= 1 << channel
	}
	s.SetVoiceMask(uint8(mask))
}

func (s *Sid) SetVoiceMask(mask uint8) {
	s.voiceMask = reg4(mask & 0x0f)
	for i, v := range s.voice {
		v.Mute(s.voiceMask&(1<<i) == 0)
	}
}

func (s *Sid) VoiceMask() uint8 {
	return uint8(s.voiceMask)
}

// PreventClockOverflow rebases stored clocks after the host subtracted sub
// from its cycle counter.
func (s *Sid) PreventClockOverflow(sub int64) {
	s.bus.Rebase(sub)
}

// Clock advances the chip by delta_t cycles.
func (s *Sid) Clock(delta_t CycleCount) {
	if delta_t <= 0 {
		return
	}

	if s.writePipeline != 0 {
		s.clock(1)
		s.write()
		delta_t--
	}
	s.clock(delta_t)
}

func (s *Sid) clock(delta_t CycleCount) {
	for delta_t > 0 {
		step := min(filterStep-s.filterPhase, delta_t)
		s.clockVoices(step)
		s.filterPhase += step
		delta_t -= step

		if s.filterPhase == filterStep {
			s.filterPhase = 0
			var extIn sound_sample
			if s.voiceMask&0x08 != 0 {
				extIn = s.extIn
			}
			s.filter.Clock(filterStep, s.voice[0].Output(), s.voice[1].Output(), s.voice[2].Output(), extIn)
			s.extfilter.Clock(filterStep, s.filter.Output())
		}
	}
}

// clockVoices runs envelopes and oscillators. Oscillators are stopped at
// every MSB toggle of a sync source so hard sync happens on the right cycle.
func (s *Sid) clockVoices(delta_t CycleCount) {
	s.voice[0].Envelope.Clock(delta_t)
	s.voice[1].Envelope.Clock(delta_t)
	s.voice[2].Envelope.Clock(delta_t)

	delta_t_osc := delta_t
	for delta_t_osc > 0 {
		delta_t_min := delta_t_osc

		for _, v := range s.voice {
			wave := v.Wave
			if wave.syncDest.sync == 0 || wave.freq == 0 {
				continue
			}

			var delta_accumulator reg24
			if wave.accumulator&0x800000 != 0 {
				delta_accumulator = 0x1000000 - wave.accumulator
			} else {
				delta_accumulator = 0x800000 - wave.accumulator
			}

			delta_t_next := CycleCount(delta_accumulator / reg24(wave.freq))
			if delta_accumulator%reg24(wave.freq) != 0 {
				delta_t_next++
			}
			delta_t_min = min(delta_t_min, delta_t_next)
		}

		for _, v := range s.voice {
			v.Wave.Clock(delta_t_min)
		}
		for _, v := range s.voice {
			v.Wave.Synchronize()
		}

		delta_t_osc -= delta_t_min
	}
}
