package fastsid

// Phase is the state of a voice envelope.
type Phase uint8

const (
	Attack Phase = iota
	Decay
	Sustain
	Release
	Idle
)

func (p Phase) String() string {
	switch p {
	case Attack:
		return "attack"
	case Decay:
		return "decay"
	case Sustain:
		return "sustain"
	case Release:
		return "release"
	case Idle:
		return "idle"
	}
	return "unknown"
}

// Attack, decay and release times in milliseconds for each 4 bit rate.
var adrTable = [16]int32{2, 8, 16, 24, 38, 56, 68, 80, 100, 250, 500, 800, 1000, 3000, 5000, 8000}

// Envelope levels where decay and release slow down. Below each level the
// step is halved once more.
var expTable = [6]uint32{0x30000000, 0x1c000000, 0x0e000000, 0x08000000, 0x04000000, 0x00000000}

// expIndex returns how often the step is halved at level adsr.
func expIndex(adsr uint32) int {
	i := 0
	for adsr < expTable[i] {
		i++
	}
	return i
}

// setADSR enters phase p and loads the step and the level at which the next
// transition happens.
func (v *voice) setADSR(p Phase) {
	s := v.s
	switch p {
	case Attack:
		v.adsrs = s.adrs[v.attack]
		v.adsrz = 0
	case Decay:
		if v.adsr <= s.sz[v.sustain] {
			v.setADSR(Sustain)
			return
		}
		i := expIndex(v.adsr)
		v.adsrs = -s.adrs[v.decay] >> i
		v.adsrz = max(s.sz[v.sustain], expTable[i])
	case Sustain:
		if v.adsr > s.sz[v.sustain] {
			v.setADSR(Decay)
			return
		}
		v.adsrs = 0
		v.adsrz = 0
	case Release:
		if v.adsr == 0 {
			v.setADSR(Idle)
			return
		}
		i := expIndex(v.adsr)
		v.adsrs = -s.adrs[v.release] >> i
		v.adsrz = expTable[i]
	case Idle:
		v.adsrs = 0
		v.adsrz = 0
	}
	v.phase = p
}

// clockADSR steps the envelope one sample. The comparison is signed so an
// attack that runs past 0x7fffffff and a decay or release that runs below
// zero both trigger.
func (v *voice) clockADSR() {
	v.adsr += uint32(v.adsrs)
	if int32(v.adsr) >= int32(v.adsrz) {
		return
	}

	switch v.phase {
	case Attack:
		v.adsr = 0x7fffffff
		v.setADSR(Decay)
	case Decay, Release:
		if v.adsr >= 0x80000000 {
			v.adsr = 0
		}
		v.setADSR(v.phase)
	}
}

// gate applies the gate bit. It runs on every control register store, so
// each edge is seen even when several arrive between two samples.
func (v *voice) gate(on bool) {
	switch v.phase {
	case Attack, Decay, Sustain:
		if on {
			v.setADSR(v.phase)
		} else {
			v.setADSR(Release)
		}
	case Release, Idle:
		if on {
			v.setADSR(Attack)
		} else {
			v.setADSR(v.phase)
		}
	}
}
