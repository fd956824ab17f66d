package fastsid

// Filter mode bits of register 0x18.
const (
	modeLP = 0x10
	modeBP = 0x20
	modeHP = 0x40
)

// setupFilter derives mixer and filter settings from registers 0x15-0x18.
// With filters disabled no voice is routed, so voice 3 off always applies.
func (s *SID) setupFilter() {
	d := &s.regs
	s.vol = d[0x18] & 0x0f

	route := d[0x17] & 0x07
	if !s.filters {
		route = 0
	}
	s.has3 = d[0x18]&0x80 == 0 || route&0x04 != 0
	for i := range s.v {
		s.v[i].filter = route&(1<<i) != 0
	}

	s.filterType = d[0x18] & 0x70
	if s.filterType != s.filterCurType {
		s.filterCurType = s.filterType
		for i := range s.v {
			s.v[i].filtLow, s.v[i].filtRef = 0, 0
		}
	}

	s.filterValue = uint16(d[0x15]&0x07) | uint16(d[0x16])<<3
	if s.filterType == modeBP {
		s.filterDy = s.bandPass[s.filterValue]
	} else {
		s.filterDy = s.lowPass[s.filterValue]
	}
	s.filterResDy = s.resTable[d[0x17]>>4]
}

// filter runs one sample of v.filtIO through the voice's two integrators:
// filtLow is the low-pass and filtRef the band-pass output.
func (s *SID) filter(v *voice) {
	if s.filterType == 0 {
		v.filtIO = 0
		return
	}

	in := float32(v.filtIO)
	v.filtLow += v.filtRef * s.filterDy
	high := in - v.filtLow - v.filtRef*s.filterResDy
	v.filtRef += high * s.filterDy

	var out float32
	if s.filterType&modeLP != 0 {
		out += v.filtLow
	}
	if s.filterType&modeBP != 0 {
		out += v.filtRef
	}
	if s.filterType&modeHP != 0 {
		out += high
	}
	v.filtIO = int8(min(max(out, -128), 127))
}
