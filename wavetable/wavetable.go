// Package wavetable provides the combined waveform tables of the 6581 and
// 8580. Selecting more than one of triangle, sawtooth and pulse does not
// produce a plain bitwise AND on the real chips: neighbouring output bits
// pull each other towards zero. The tables are computed once from a model of
// that interaction and are read-only afterwards.
package wavetable

// Chip selects the table set.
type Chip uint8

const (
	MOS6581 Chip = iota
	MOS8580
)

// Waveform is the upper nibble of a voice control register shifted down,
// restricted to the combinations that need a table.
type Waveform uint8

const (
	SawTriangle      Waveform = 0x3
	PulseTriangle    Waveform = 0x5
	PulseSawtooth    Waveform = 0x6
	PulseSawTriangle Waveform = 0x7
)

// Table holds the upper 8 bits of the 12 bit combined output for every value
// of the top 12 accumulator bits, with pulse high. When pulse is low every
// pulse combination is zero, so that half is not stored.
//
// The 8 bit resolution matches what the chip exposes through OSC3.
type Table [4096]uint8

// Index returns the table index for an accumulator that is width bits wide.
func Index(acc uint32, width uint) int {
	return int(acc>>(width-12)) & 0xfff
}

type key struct {
	chip Chip
	wave Waveform
}

var registry = map[key]*Table{}

// Lookup returns the shared table for chip and wave. The table must not be
// modified.
func Lookup(chip Chip, wave Waveform) (*Table, bool) {
	t, ok := registry[key{chip, wave}]
	return t, ok
}

// MustLookup is Lookup for combinations known to exist.
func MustLookup(chip Chip, wave Waveform) *Table {
	t, ok := Lookup(chip, wave)
	if !ok {
		panic("wavetable: no table for combination")
	}
	return t
}

func init() {
	for chip, set := range params {
		for wave, p := range set {
			registry[key{Chip(chip), wave}] = build(p, wave)
		}
	}
}
