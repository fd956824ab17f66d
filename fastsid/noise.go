package fastsid

// Noise register value after reset and after the test bit was released.
const noiseSeed = 0x7ffff8

// Translation of each register byte to the OSC bits it drives. The
// oscillator output takes register bits 22,20,16,13,11,7,4,2 as bits 7..0.
var noiseLSB, noiseMID, noiseMSB [256]uint8

func init() {
	for i := range 256 {
		b := uint8(i)
		noiseLSB[i] = b>>5&0x04 | b>>3&0x02 | b>>2&0x01
		noiseMID[i] = b>>1&0x10 | b&0x08
		noiseMSB[i] = b<<1&0x80 | b<<2&0x40 | b<<5&0x20
	}
}

// Shift advances the 23 bit noise register v by n clocks, feeding back
// bit 22 ^ bit 17. The n new low bits only depend on the old value, so n
// must not exceed 18.
func Shift(v uint32, n uint) uint32 {
	fb := (v>>(23-n) ^ v>>(18-n)) & (1<<n - 1)
	return (v<<n | fb) & 0x7fffff
}

// Value is the 8 bit noise output for register v.
func Value(v uint32) uint8 {
	return noiseLSB[v&0xff] | noiseMID[v>>8&0xff] | noiseMSB[v>>16&0xff]
}
