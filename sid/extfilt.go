package resid

// ExternalFilter is the RC network on the audio output: a 16kHz low-pass
// and a 16Hz high-pass that removes the DC level.
type ExternalFilter struct {
	mixer_DC sound_sample

	// State of filters.
	Vlp, Vhp, Vo sound_sample

	// Cutoff frequencies.
	w0lp, w0hp sound_sample

	enabled bool
}

func NewExternalFilter() *ExternalFilter {
	f := &ExternalFilter{}
	f.Reset()
	f.EnableFilter(true)
	f.SetSamplingParameter(15915.6)
	f.SetModel(MOS6581)
	return f
}

func (f *ExternalFilter) Reset() {
	f.Vlp = 0
	f.Vhp = 0
	f.Vo = 0
}

func (f *ExternalFilter) EnableFilter(enable bool) {
	f.enabled = enable
}

// SetSamplingParameter places the low-pass at pass_freq, capped at the
// 100000 rad/s of the RC network. The high-pass stays at 100 rad/s.
func (f *ExternalFilter) SetSamplingParameter(pass_freq float64) {
	// Scaled by 1.048576 so dividing by 1e6 is a shift by 20.
	f.w0hp = 105
	f.w0lp = sound_sample(pass_freq * (2.0 * pi * 1.048576))
	if f.w0lp > 104858 {
		f.w0lp = 104858
	}
}

func (f *ExternalFilter) SetModel(model Model) {
	if model == MOS6581 {
		// Highest DC level of the mixer output, removed when the filter
		// is bypassed: ((wave DC + voice DC)*voices + mixer DC)*volume
		f.mixer_DC = ((((0x800-0x380)+0x800)*0xff*3 - 0xfff*0xff/18) >> 7) * 0x0f
	} else {
		f.mixer_DC = 0
	}
}

func (f *ExternalFilter) Clock(delta_t CycleCount, Vi sound_sample) {
	if !f.enabled {
		f.Vlp, f.Vhp = 0, 0
		f.Vo = Vi - f.mixer_DC
		return
	}

	var delta_t_flt CycleCount = 8

	for delta_t != 0 {
		if delta_t < delta_t_flt {
			delta_t_flt = delta_t
		}

		// Vo  = Vlp - Vhp
		// Vlp = Vlp + w0lp*(Vi - Vlp)*delta_t
		// Vhp = Vhp + w0hp*(Vlp - Vhp)*delta_t
		dVlp := (f.w0lp * sound_sample(delta_t_flt) >> 8) * (Vi - f.Vlp) >> 12
		dVhp := f.w0hp * sound_sample(delta_t_flt) * (f.Vlp - f.Vhp) >> 20
		f.Vo = f.Vlp - f.Vhp
		f.Vlp += dVlp
		f.Vhp += dVhp

		delta_t -= delta_t_flt
	}
}

func (f *ExternalFilter) Output() sound_sample {
	return f.Vo
}
