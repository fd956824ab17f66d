package resid

import "testing"

func TestCutoffCurveEndpoints(t *testing.T) {
	tests := []struct {
		name  string
		table *f0Table
		x     int
		want  sound_sample
	}{
		{"6581 low", &f0_6581, 0, 220},
		{"6581 before step", &f0_6581, 1023, 6000},
		{"6581 after step", &f0_6581, 1024, 4600},
		{"6581 high", &f0_6581, 2047, 18000},
		{"8580 low", &f0_8580, 0, 0},
		{"8580 high", &f0_8580, 2047, 12700},
	}
	for _, tt := range tests {
		if got := tt.table[tt.x]; got != tt.want {
			t.Errorf("%s: f0[%d] = %d, want %d", tt.name, tt.x, got, tt.want)
		}
	}
}

func TestCutoffCurveMonotonic(t *testing.T) {
	check := func(name string, tbl *f0Table, from, to int) {
		for x := from + 1; x <= to; x++ {
			if tbl[x] < tbl[x-1] {
				t.Fatalf("%s: f0[%d] = %d below f0[%d] = %d", name, x, tbl[x], x-1, tbl[x-1])
			}
		}
	}
	check("6581 lower", &f0_6581, 0, 1023)
	check("6581 upper", &f0_6581, 1024, 2047)
	check("8580", &f0_8580, 0, 2047)
}
