package resid

// f0Table maps the 11 bit cutoff register to a cutoff frequency in Hz.
type f0Table [2048]sound_sample

type fcPoint struct {
	x, y float64
}

// Measured cutoff curves. End points are repeated to pin the spline; a
// repeated point in the middle of the 6581 curve marks the step at 1024.
var f0Points6581 = []fcPoint{
	{0, 220}, {0, 220}, {128, 230}, {256, 250}, {384, 300}, {512, 420},
	{640, 780}, {768, 1600}, {832, 2300}, {896, 3200}, {960, 4300},
	{992, 5000}, {1008, 5400}, {1016, 5700}, {1023, 6000}, {1023, 6000},
	{1024, 4600}, {1024, 4600}, {1032, 4800}, {1056, 5300}, {1088, 6000},
	{1120, 6600}, {1152, 7200}, {1280, 9500}, {1408, 12000}, {1536, 14500},
	{1664, 16000}, {1792, 17100}, {1920, 17700}, {2047, 18000}, {2047, 18000},
}

var f0Points8580 = []fcPoint{
	{0, 0}, {0, 0}, {128, 800}, {256, 1600}, {384, 2500}, {512, 3300},
	{640, 4100}, {768, 4800}, {896, 5600}, {1024, 6300}, {1152, 7100},
	{1280, 7900}, {1408, 8700}, {1536, 9500}, {1664, 10300}, {1792, 11100},
	{1920, 11900}, {2047, 12700}, {2047, 12700},
}

var f0_6581, f0_8580 f0Table

func init() {
	interpolate(f0Points6581, &f0_6581)
	interpolate(f0Points8580, &f0_8580)
}

// interpolate fills t with a cubic spline through p. Each segment p1..p2
// takes its end slopes from the neighbours p0 and p3; where a neighbour
// repeats an end point the second derivative there is zero, and where both do
// the segment is a straight line.
func interpolate(p []fcPoint, t *f0Table) {
	for i := 0; i+3 < len(p); i++ {
		p0, p1, p2, p3 := p[i], p[i+1], p[i+2], p[i+3]
		if p1.x == p2.x {
			continue
		}

		var k1, k2 float64
		switch {
		case p0.x == p1.x && p2.x == p3.x:
			k1 = (p2.y - p1.y) / (p2.x - p1.x)
			k2 = k1
		case p0.x == p1.x:
			k2 = (p3.y - p1.y) / (p3.x - p1.x)
			k1 = (3*(p2.y-p1.y)/(p2.x-p1.x) - k2) / 2
		case p2.x == p3.x:
			k1 = (p2.y - p0.y) / (p2.x - p0.x)
			k2 = (3*(p2.y-p1.y)/(p2.x-p1.x) - k1) / 2
		default:
			k1 = (p2.y - p0.y) / (p2.x - p0.x)
			k2 = (p3.y - p1.y) / (p3.x - p1.x)
		}

		a, b, c, d := cubic(p1, p2, k1, k2)
		for x := int(p1.x); x <= int(p2.x); x++ {
			fx := float64(x)
			y := ((a*fx+b)*fx+c)*fx + d
			if y < 0 {
				y = 0
			}
			t[x] = sound_sample(y)
		}
	}
}

// cubic returns the coefficients of the polynomial through p1 and p2 with
// slopes k1 and k2 there.
func cubic(p1, p2 fcPoint, k1, k2 float64) (a, b, c, d float64) {
	dx := p2.x - p1.x
	dy := p2.y - p1.y

	a = ((k1 + k2) - 2*dy/dx) / (dx * dx)
	b = ((k2-k1)/dx - 3*(p1.x+p2.x)*a) / 2
	c = k1 - (3*p1.x*a+2*b)*p1.x
	d = p1.y - ((p1.x*a+b)*p1.x+c)*p1.x
	return
}
