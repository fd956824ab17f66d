package resid

// Voice is one oscillator with its envelope, as seen by the mixer.
type Voice struct {
	Wave     *WaveformGenerator
	Envelope *EnvelopeGenerator

	// Waveform output level that maps to silence.
	wave_zero sound_sample

	// DC offset of the voice output with the envelope at zero.
	voice_DC sound_sample

	muted bool
}

func NewVoice() *Voice {
	v := &Voice{
		Wave:     NewWaveformGenerator(),
		Envelope: NewEnvelopeGenerator(),
	}
	v.SetModel(MOS6581)
	return v
}

// SetModel sets the output levels. On the 6581 the waveform zero level is
// about 0x380 and the voice has a DC offset of half the waveform range; the
// 8580 has neither.
func (v *Voice) SetModel(model Model) {
	v.Wave.SetModel(model)

	if model == MOS6581 {
		v.wave_zero = 0x380
		v.voice_DC = 0x800 * 0xff
	} else {
		v.wave_zero = 0x800
		v.voice_DC = 0
	}
}

func (v *Voice) SetSyncSource(source *Voice) {
	v.Wave.SetSyncSource(source.Wave)
}

func (v *Voice) WriteCONTROL_REG(control reg8) {
	v.Wave.WriteCONTROL_REG(control)
	v.Envelope.WriteCONTROL_REG(control)
}

func (v *Voice) Reset() {
	v.Wave.Reset()
	v.Envelope.Reset()
}

// Mute silences the voice without stopping its oscillator or envelope.
func (v *Voice) Mute(enable bool) {
	v.muted = enable
}

// Output is the amplitude modulated waveform, 20 bits.
func (v *Voice) Output() sound_sample {
	if v.muted {
		return 0
	}
	return (sound_sample(v.Wave.Output())-v.wave_zero)*sound_sample(v.Envelope.Output()) + v.voice_DC
}
