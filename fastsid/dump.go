package fastsid

import (
	"fmt"
	"io"
)

// DumpState writes a human readable summary of the chip to w.
func (s *SID) DumpState(w io.Writer) {
	fmt.Fprintf(w, "model: %s  filters: %t  factor: %d  speed: %d\n", s.model, s.filters, s.factor, s.speed1)
	for i := range s.v {
		v := &s.v[i]
		fmt.Fprintf(w, "voice %d: ctrl %02x acc %08x step %08x noise %06x sync %t filter %t muted %t\n",
			i, v.d[4], v.f, v.fs, v.rv, v.sync, v.filter, v.muted)
		fmt.Fprintf(w, "         adsr %x%x%x%x env %08x step %d limit %08x %s\n",
			v.attack, v.decay, v.sustain, v.release, v.adsr, v.adsrs, v.adsrz, v.phase)
	}
	fmt.Fprintf(w, "filter: type %02x cutoff %03x dy %.4f res %.4f vol %x voice3 %t\n",
		s.filterType, s.filterValue, s.filterDy, s.filterResDy, s.vol, s.has3)
	fmt.Fprintf(w, "bus: %02x (%d bits)  voice mask: %x\n", s.bus.Value, s.bus.Bits, s.voiceMask)
}
