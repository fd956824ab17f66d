package resid

// Model selects the SID chip: 6581 or 8580
type Model byte
type SamplingMethod byte

type reg4 uint8
type reg8 uint8
type reg12 uint16
type reg16 uint16
type reg24 uint32
type CycleCount int
type sound_sample int

const (
	// 6581 SID
	MOS6581 Model = iota

	// 8580 SID
	MOS8580
)

func (m Model) String() string {
	if m == MOS8580 {
		return "8580"
	}
	return "6581"
}

const (
	// One chip clock per sample, no band limiting.
	SAMPLE_FAST SamplingMethod = iota

	// Linear interpolation between the two chip outputs around each sample.
	SAMPLE_INTERPOLATE

	// Band limited FIR resampling, filter tables interpolated.
	SAMPLE_RESAMPLE_INTERPOLATE

	// Band limited FIR resampling with a large table, no interpolation.
	SAMPLE_RESAMPLE_FAST
)

func (m SamplingMethod) String() string {
	switch m {
	case SAMPLE_FAST:
		return "fast"
	case SAMPLE_INTERPOLATE:
		return "interpolate"
	case SAMPLE_RESAMPLE_INTERPOLATE:
		return "resample"
	case SAMPLE_RESAMPLE_FAST:
		return "resample-fast"
	}
	return "unknown"
}
