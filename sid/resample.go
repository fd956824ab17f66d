package resid

import (
	"fmt"
	"math"
)

// Resampling constants.
//
// The FIR is a Kaiser windowed sinc with 16 bit stopband attenuation. Its
// length in chip cycles is FIR_N output samples, and the ring buffer of chip
// outputs must hold that many cycles at the lowest supported sample rate.
const (
	FIXP_SHIFT = 16
	FIXP_MASK  = 0xffff

	FIR_N               = 125
	FIR_RES_INTERPOLATE = 285
	FIR_RES_FAST        = 51473
	FIR_SHIFT           = 15
	RINGSIZE            = 16384
	RINGMASK            = RINGSIZE - 1
)

// SetSamplingParameters selects how chip cycles are turned into samples.
//
// pass_freq < 0 picks 20kHz, or 0.9*sample_freq/2 when that is lower. The
// resampling methods require pass_freq <= 0.9*sample_freq/2 and filter_scale
// in [0.9, 1.0], and a sample rate high enough for the FIR to fit the ring
// buffer.
func (s *Sid) SetSamplingParameters(clock_freq float64, method SamplingMethod, sample_freq float64, pass_freq float64, filter_scale float64) error {
	if clock_freq <= 0 || sample_freq <= 0 {
		return fmt.Errorf("clock %.0fHz and sample rate %.0fHz must be positive", clock_freq, sample_freq)
	}

	if pass_freq < 0 {
		pass_freq = 20000
		if 2*pass_freq/sample_freq >= 0.9 {
			pass_freq = 0.9 * sample_freq / 2
		}
	}

	resample := method == SAMPLE_RESAMPLE_INTERPOLATE || method == SAMPLE_RESAMPLE_FAST
	if resample {
		if FIR_N*clock_freq/sample_freq >= RINGSIZE {
			return fmt.Errorf("sample rate %.0fHz too low for resampling, increase the sampling rate", sample_freq)
		}
		if pass_freq > 0.9*sample_freq/2 {
			return fmt.Errorf("passband %.0fHz above 90%% of the Nyquist frequency %.0fHz", pass_freq, sample_freq/2)
		}
		if filter_scale < 0.9 || filter_scale > 1.0 {
			return fmt.Errorf("filter gain %.2f outside 0.90-1.00", filter_scale)
		}
	}

	s.extfilter.SetSamplingParameter(pass_freq)
	s.clock_frequency = clock_freq
	s.sampling = method

	s.cycles_per_sample = CycleCount(clock_freq/sample_freq*(1<<FIXP_SHIFT) + 0.5)

	s.sample_offset = 0
	s.sample_prev = 0

	if !resample {
		s.fir = nil
		s.sample = nil
		s.fir_N, s.fir_RES = 0, 0
		return nil
	}

	// 16 bits -> -96dB stopband attenuation.
	A := -20 * math.Log10(1.0/(1<<16))
	// The transition band takes what the passband leaves of the Nyquist
	// range; the cutoff is in its middle.
	dw := (1 - 2*pass_freq/sample_freq) * pi
	wc := (2*pass_freq/sample_freq + 1) * pi / 2

	// Kaiser window parameters, as in MATLAB kaiserord.
	beta := 0.1102 * (A - 8.7)
	I0beta := i0(beta)

	// Filter order, even so the sinc is symmetric around x = 0.
	N := int((A-7.95)/(2.285*dw) + 0.5)
	N += N & 1

	f_samples_per_cycle := sample_freq / clock_freq
	f_cycles_per_sample := clock_freq / sample_freq

	// Filter length in cycles, odd.
	s.fir_N = int(float64(N)*f_cycles_per_sample) + 1
	s.fir_N |= 1

	// The table resolution is a power of two so the fixed point sample
	// offset maps onto whole tables.
	res := FIR_RES_INTERPOLATE
	if method == SAMPLE_RESAMPLE_FAST {
		res = FIR_RES_FAST
	}
	n := int(math.Ceil(math.Log(float64(res)/f_cycles_per_sample) / math.Log(2)))
	s.fir_RES = 1 << n

	s.fir = make([]int16, s.fir_N*s.fir_RES)

	for i := 0; i < s.fir_RES; i++ {
		fir_offset := i*s.fir_N + s.fir_N/2
		j_offset := float64(i) / float64(s.fir_RES)

		for j := -s.fir_N / 2; j <= s.fir_N/2; j++ {
			jx := float64(j) - j_offset
			wt := wc * jx / f_cycles_per_sample
			temp := jx / float64(s.fir_N/2)

			kaiser := 0.0
			if math.Abs(temp) <= 1 {
				kaiser = i0(beta*math.Sqrt(1-temp*temp)) / I0beta
			}
			sincwt := 1.0
			if math.Abs(wt) >= 1e-6 {
				sincwt = math.Sin(wt) / wt
			}

			val := (1 << FIR_SHIFT) * filter_scale * f_samples_per_cycle * wc / pi * sincwt * kaiser
			s.fir[fir_offset+j] = int16(math.Floor(val + 0.5))
		}
	}

	if s.sample == nil {
		s.sample = make([]int16, RINGSIZE*2)
	} else {
		clear(s.sample)
	}
	s.sample_index = 0

	return nil
}

// i0 is the zeroth order modified Bessel function of the first kind.
func i0(x float64) float64 {
	const I0e = 1e-6

	sum, u := 1.0, 1.0
	halfx := x / 2.0
	for n := 1.0; ; n++ {
		temp := halfx / n
		u *= temp * temp
		sum += u
		if u < I0e*sum {
			return sum
		}
	}
}

// ClockSamples clocks the chip for up to *delta_t cycles and writes at most
// n samples to buf, every interleave entries, returning the count. *delta_t
// is reduced by the cycles used. When buf fills first the remaining cycles
// are left in *delta_t for the next call; otherwise all of them are clocked.
func (s *Sid) ClockSamples(delta_t *CycleCount, buf []int16, n int, interleave int) int {
	switch s.sampling {
	case SAMPLE_INTERPOLATE:
		return s.clockInterpolate(delta_t, buf, n, interleave)
	case SAMPLE_RESAMPLE_INTERPOLATE:
		return s.clockResampleInterpolate(delta_t, buf, n, interleave)
	case SAMPLE_RESAMPLE_FAST:
		return s.clockResampleFast(delta_t, buf, n, interleave)
	default:
		return s.clockFast(delta_t, buf, n, interleave)
	}
}

// clockFast outputs the chip sample nearest to each sample point.
func (s *Sid) clockFast(delta_t *CycleCount, buf []int16, n int, interleave int) int {
	i := 0
	for {
		next_sample_offset := s.sample_offset + s.cycles_per_sample + (1 << (FIXP_SHIFT - 1))
		delta_t_sample := next_sample_offset >> FIXP_SHIFT
		if delta_t_sample > *delta_t {
			break
		}
		if i >= n {
			return i
		}
		s.Clock(delta_t_sample)
		*delta_t -= delta_t_sample
		s.sample_offset = (next_sample_offset & FIXP_MASK) - (1 << (FIXP_SHIFT - 1))
		buf[i*interleave] = int16(s.Output())
		i++
	}

	s.Clock(*delta_t)
	s.sample_offset -= *delta_t << FIXP_SHIFT
	*delta_t = 0
	return i
}

// clockInterpolate interpolates linearly between the chip samples on
// either side of each sample point.
func (s *Sid) clockInterpolate(delta_t *CycleCount, buf []int16, n int, interleave int) int {
	i := 0
	for {
		next_sample_offset := s.sample_offset + s.cycles_per_sample
		delta_t_sample := next_sample_offset >> FIXP_SHIFT
		if delta_t_sample > *delta_t {
			break
		}
		if i >= n {
			return i
		}
		s.clockTrackPrev(delta_t_sample)
		*delta_t -= delta_t_sample
		s.sample_offset = next_sample_offset & FIXP_MASK

		sample_now := int16(s.Output())
		prev := int(s.sample_prev)
		buf[i*interleave] = int16(prev + int(s.sample_offset)*(int(sample_now)-prev)>>FIXP_SHIFT)
		i++
		s.sample_prev = sample_now
	}

	s.clockTrackPrev(*delta_t)
	s.sample_offset -= *delta_t << FIXP_SHIFT
	*delta_t = 0
	return i
}

// clockTrackPrev clocks delta_t single cycles and remembers the output one
// cycle before the end.
func (s *Sid) clockTrackPrev(delta_t CycleCount) {
	if delta_t <= 0 {
		return
	}
	for c := CycleCount(0); c < delta_t-1; c++ {
		s.Clock(1)
	}
	s.sample_prev = int16(s.Output())
	s.Clock(1)
}

// clockRing clocks delta_t single cycles into the sample ring.
func (s *Sid) clockRing(delta_t CycleCount) {
	for c := CycleCount(0); c < delta_t; c++ {
		s.Clock(1)
		v := int16(s.Output())
		s.sample[s.sample_index] = v
		s.sample[s.sample_index+RINGSIZE] = v
		s.sample_index = (s.sample_index + 1) & RINGMASK
	}
}

// convolve applies FIR table table to the fir_N ring samples ending at
// start+fir_N.
func (s *Sid) convolve(table int, start int) int {
	fir := s.fir[table*s.fir_N : (table+1)*s.fir_N]
	ring := s.sample[start : start+s.fir_N]
	v := 0
	for j, f := range fir {
		v += int(ring[j]) * int(f)
	}
	return v
}

func saturate16(v int) int16 {
	const half = 1 << 15
	if v >= half {
		return half - 1
	}
	if v < -half {
		return -half
	}
	return int16(v)
}

// clockResampleInterpolate convolves with the two FIR tables around each
// sample point and interpolates between the results.
func (s *Sid) clockResampleInterpolate(delta_t *CycleCount, buf []int16, n int, interleave int) int {
	i := 0
	for {
		next_sample_offset := s.sample_offset + s.cycles_per_sample
		delta_t_sample := next_sample_offset >> FIXP_SHIFT
		if delta_t_sample > *delta_t {
			break
		}
		if i >= n {
			return i
		}
		s.clockRing(delta_t_sample)
		*delta_t -= delta_t_sample
		s.sample_offset = next_sample_offset & FIXP_MASK

		fir_offset := int(s.sample_offset) * s.fir_RES >> FIXP_SHIFT
		fir_offset_rmd := int(s.sample_offset) * s.fir_RES & FIXP_MASK
		start := s.sample_index - s.fir_N + RINGSIZE

		v1 := s.convolve(fir_offset, start)

		// The next table wraps to the first one, one sample earlier.
		fir_offset++
		if fir_offset == s.fir_RES {
			fir_offset = 0
			start--
		}
		v2 := s.convolve(fir_offset, start)

		v := v1 + (fir_offset_rmd * (v2 - v1) >> FIXP_SHIFT)
		buf[i*interleave] = saturate16(v >> FIR_SHIFT)
		i++
	}

	s.clockRing(*delta_t)
	s.sample_offset -= *delta_t << FIXP_SHIFT
	*delta_t = 0
	return i
}

// clockResampleFast convolves with the single nearest FIR table.
func (s *Sid) clockResampleFast(delta_t *CycleCount, buf []int16, n int, interleave int) int {
	i := 0
	for {
		next_sample_offset := s.sample_offset + s.cycles_per_sample
		delta_t_sample := next_sample_offset >> FIXP_SHIFT
		if delta_t_sample > *delta_t {
			break
		}
		if i >= n {
			return i
		}
		s.clockRing(delta_t_sample)
		*delta_t -= delta_t_sample
		s.sample_offset = next_sample_offset & FIXP_MASK

		fir_offset := int(s.sample_offset) * s.fir_RES >> FIXP_SHIFT
		start := s.sample_index - s.fir_N + RINGSIZE

		buf[i*interleave] = saturate16(s.convolve(fir_offset, start) >> FIR_SHIFT)
		i++
	}

	s.clockRing(*delta_t)
	s.sample_offset -= *delta_t << FIXP_SHIFT
	*delta_t = 0
	return i
}
