package resid

import (
	"math"
)

const pi = 3.1415926535897932385

// Filter outputs beyond this level are compressed when distortion is on.
const distortionKnee sound_sample = 0x1400

// SidFilter is the state variable filter and the mixer in front of the
// volume control.
type SidFilter struct {
	// Filter enabled. A disabled filter routes every voice around it.
	Enabled bool

	// Soft clip the filter output, as heard on late 6581 revisions.
	Distortion bool

	// Cutoff frequency register.
	Fc reg12

	// Resonance.
	Res reg8

	// Selects which inputs to route through filter.
	Filter reg8

	// Switch voice 3 off.
	Voice3Off reg8

	// Highpass, bandpass, and lowpass filter modes.
	HpBpLp reg8

	// Output master volume.
	Volume reg4

	// Mixer DC offset.
	Mixer_DC sound_sample

	// Integrator state.
	Vhp sound_sample // highpass
	Vbp sound_sample // bandpass
	Vlp sound_sample // lowpass
	Vnf sound_sample // not filtered

	// Cutoff frequency, resonance.
	w0, w0_ceil_1, w0_ceil_dt sound_sample
	_1024_div_Q               sound_sample

	// Cutoff frequency in Hz for each Fc value. Points at a shared table
	// unless a bias is set.
	F0 *f0Table

	model  Model
	biasMV int
}

func NewSidFilter() *SidFilter {
	f := &SidFilter{}
	f.EnableFilter(true)
	f.SetModel(MOS6581)
	return f
}

func (f *SidFilter) Reset() {
	f.Fc, f.Res, f.Filter, f.Voice3Off = 0, 0, 0, 0
	f.Vhp, f.Vbp, f.Vlp, f.Vnf = 0, 0, 0, 0
	f.HpBpLp, f.Volume = 0, 0

	f.SetW0()
	f.SetQ()
}

func (f *SidFilter) WriteFC_LO(fc_lo reg8) {
	f.Fc = f.Fc&0x7f8 | reg12(fc_lo&0x007)
	f.SetW0()
}

func (f *SidFilter) WriteFC_HI(fc_hi reg8) {
	f.Fc = (reg12(fc_hi)<<3)&0x7f8 | f.Fc&0x007
	f.SetW0()
}

func (f *SidFilter) WriteRES_FILT(res_filt reg8) {
	f.Res = (res_filt >> 4) & 0x0f
	f.SetQ()

	f.Filter = res_filt & 0x0f
}

func (f *SidFilter) WriteMODE_VOL(mode_vol reg8) {
	f.Voice3Off = mode_vol & 0x80
	mode := (mode_vol >> 4) & 0x07
	if mode != f.HpBpLp {
		// a new filter type starts from rest
		f.Vhp, f.Vbp, f.Vlp, f.Vnf = 0, 0, 0, 0
	}
	f.HpBpLp = mode
	f.Volume = reg4(mode_vol & 0x0f)
}

// SetW0 loads the cutoff for the current Fc. w0 is scaled by 1.048576 so
// the later division by 1e6 becomes a shift by 20.
func (f *SidFilter) SetW0() {
	f.w0 = sound_sample(math.Round(2.0 * pi * float64(f.F0[f.Fc]) * 1.048576))

	// 16kHz keeps single cycle steps stable, 4kHz multi cycle steps.
	w0_max_1 := sound_sample(math.Round(2.0 * pi * 16000.0 * 1.048576))
	w0_max_dt := sound_sample(math.Round(2.0 * pi * 4000.0 * 1.048576))

	f.w0_ceil_1 = min(f.w0, w0_max_1)
	f.w0_ceil_dt = min(f.w0, w0_max_dt)
}

// SetQ maps resonance linearly onto Q in [0.707, 1.707], stored as 1024/Q.
func (f *SidFilter) SetQ() {
	f._1024_div_Q = sound_sample(math.Round(1024.0 / (0.707 + 1.0*float64(f.Res)/15.0)))
}

func (f *SidFilter) EnableFilter(enable bool) {
	f.Enabled = enable
}

func (f *SidFilter) SetModel(model Model) {
	f.model = model
	if model == MOS6581 {
		// The 6581 mixer input sits about -0.06V off its zero level, roughly
		// -1/18 of the range of one voice.
		f.Mixer_DC = -0xfff * 0xff / 18 >> 7
	} else {
		f.Mixer_DC = 0
	}
	f.SetBias(f.biasMV)
}

// SetBias shifts the 6581 cutoff curve. Each volt of bias scales the cutoff
// by e. The 8580 curve is not affected.
func (f *SidFilter) SetBias(mV int) {
	f.biasMV = mV
	if f.model != MOS6581 {
		f.F0 = &f0_8580
		f.SetW0()
		f.SetQ()
		return
	}

	if mV == 0 {
		f.F0 = &f0_6581
	} else {
		scale := math.Exp(float64(mV) / 1000)
		t := new(f0Table)
		for i, v := range f0_6581 {
			t[i] = sound_sample(math.Min(float64(v)*scale, 22000))
		}
		f.F0 = t
	}
	f.SetW0()
	f.SetQ()
}

func (f *SidFilter) Clock(delta_t CycleCount, voice1 sound_sample, voice2 sound_sample, voice3 sound_sample, ext_in sound_sample) {
	filt := f.Filter
	if !f.Enabled {
		filt = 0
	}

	// Scale each voice down from 20 to 13 bits.
	voice1 >>= 7
	voice2 >>= 7

	// Voice 3 stays audible through the filter even when switched off.
	if f.Voice3Off != 0 && filt&0x04 == 0 {
		voice3 = 0
	} else {
		voice3 >>= 7
	}

	ext_in >>= 7

	if !f.Enabled {
		f.Vnf = voice1 + voice2 + voice3 + ext_in
		f.Vhp, f.Vbp, f.Vlp = 0, 0, 0
		return
	}

	var Vi sound_sample
	f.Vnf = 0
	for i, v := range [4]sound_sample{voice1, voice2, voice3, ext_in} {
		if filt&(1<<i) != 0 {
			Vi += v
		} else {
			f.Vnf += v
		}
	}

	// Steps longer than 8 cycles make the integration unstable.
	var delta_t_flt CycleCount = 8

	for delta_t != 0 {
		if delta_t < delta_t_flt {
			delta_t_flt = delta_t
		}

		w0 := f.w0_ceil_dt
		if delta_t_flt == 1 {
			w0 = f.w0_ceil_1
		}

		// Vhp = Vbp/Q - Vlp - Vi
		// dVbp = -w0*Vhp*dt
		// dVlp = -w0*Vbp*dt
		// with dt in microseconds, split into two shifts to stay in range.
		w0_delta_t := sound_sample(int(w0) * int(delta_t_flt) >> 6)

		dVbp := w0_delta_t * f.Vhp >> 14
		dVlp := w0_delta_t * f.Vbp >> 14
		f.Vbp -= dVbp
		f.Vlp -= dVlp
		f.Vhp = (f.Vbp * f._1024_div_Q >> 10) - f.Vlp - Vi

		delta_t -= delta_t_flt
	}
}

// Output is the mixer output: unfiltered voices plus the selected filter
// outputs, unweighted, times the volume.
func (f *SidFilter) Output() sound_sample {
	if !f.Enabled {
		return (f.Vnf + f.Mixer_DC) * sound_sample(f.Volume)
	}

	var Vf sound_sample
	if f.HpBpLp&0x1 != 0 {
		Vf += f.Vlp
	}
	if f.HpBpLp&0x2 != 0 {
		Vf += f.Vbp
	}
	if f.HpBpLp&0x4 != 0 {
		Vf += f.Vhp
	}

	if f.Distortion {
		Vf = softClip(Vf)
	}

	return (f.Vnf + Vf + f.Mixer_DC) * sound_sample(f.Volume)
}

func softClip(v sound_sample) sound_sample {
	switch {
	case v > distortionKnee:
		return distortionKnee + (v-distortionKnee)>>2
	case v < -distortionKnee:
		return -distortionKnee + (v+distortionKnee)>>2
	}
	return v
}
