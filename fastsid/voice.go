package fastsid

// voice is one oscillator and envelope, updated once per output sample.
type voice struct {
	s          *SID
	prev, next *voice
	nr         int

	// registers of this voice inside s.regs
	d []uint8

	// 32 bit phase accumulator and its step per sample
	f, fs uint32

	noise bool
	wt    *waveTable
	wtl   uint   // shift from f to the table index
	wtpf  uint32 // 0x1000 - pulse width for pulse waveforms
	ring  uint32 // 0x800 when the triangle is ring modulated

	// 31 bit envelope, its signed step per sample and the level that
	// triggers the next phase change
	adsr  uint32
	adsrs int32
	adsrz uint32
	phase Phase

	attack, decay, sustain, release uint8

	sync   bool
	filter bool
	muted  bool

	// Noise register. It is shifted 16 times per accumulator wrap; the
	// shifts owed within the current period are f>>28 and applied on read.
	rv uint32

	filtIO           int8
	filtLow, filtRef float32
}

// setup derives the voice from its registers.
func (v *voice) setup() {
	d := v.d
	v.attack, v.decay = d[5]>>4, d[5]&0x0f
	v.sustain, v.release = d[6]>>4, d[6]&0x0f
	v.sync = d[4]&0x02 != 0
	v.fs = v.s.speed1 * (uint32(d[0]) | uint32(d[1])<<8)

	test := d[4]&0x08 != 0
	if test {
		v.f, v.fs = 0, 0
		v.rv = noiseSeed
	}

	v.noise = false
	v.wtl = 20
	v.wtpf = 0
	v.ring = 0

	wave := d[4] >> 4
	switch {
	case wave == 0:
		v.wt = waveTables[v.s.model][0]
		v.wtl = 31
	case wave == 8:
		v.noise = true
	case wave > 8:
		// noise combined with anything else locks the register at zero
		v.rv = 0
		v.wt = waveTables[v.s.model][0]
		v.wtl = 31
	default:
		v.wt = waveTables[v.s.model][wave]
		if wave&4 != 0 {
			pw := uint32(d[2]) | uint32(d[3]&0x0f)<<8
			if test {
				pw = 0
			}
			v.wtpf = 0x1000 - pw
		}
		if wave&3 == 1 && d[4]&0x04 != 0 {
			v.ring = 0x800
		}
	}

	v.gate(d[4]&0x01 != 0)
}

// advance steps the accumulator one sample and reports a wrap.
func (v *voice) advance() bool {
	v.f += v.fs
	if v.f >= v.fs {
		return false
	}
	v.rv = Shift(v.rv, 16)
	return true
}

// hardSync restarts the accumulator, settling the noise shifts owed first.
func (v *voice) hardSync() {
	v.rv = Shift(v.rv, uint(v.f>>28))
	v.f = 0
}

// osc returns the 15 bit waveform output.
func (v *voice) osc() uint32 {
	if v.noise {
		return uint32(Value(Shift(v.rv, uint(v.f>>28)))) << 7
	}
	idx := v.f >> v.wtl
	i := idx ^ (v.prev.f>>31)*v.ring
	i |= (idx + v.wtpf) & 0x1000
	return uint32(v.wt[i])
}
