package resid

type State int

const (
	ATTACK State = iota
	DECAY_SUSTAIN
	RELEASE
)

func (s State) String() string {
	switch s {
	case ATTACK:
		return "attack"
	case DECAY_SUSTAIN:
		return "decay/sustain"
	case RELEASE:
		return "release"
	}
	return "unknown"
}

// EnvelopeGenerator is the 8 bit ADSR counter of one voice, stepped by a
// 15 bit rate counter and, for decay and release, an exponential divider.
type EnvelopeGenerator struct {
	rate_counter               reg16
	rate_period                reg16
	exponential_counter        int
	exponential_counter_period int
	envelope_counter           int
	holdZero                   bool
	attack                     reg4
	decay                      reg4
	sustain                    reg4
	release                    reg4
	gate                       reg8
	state                      State

	// A decrement scheduled for the next cycle.
	envelopePipeline int
	// Set once a decrement used an exponential period above 1; cleared by
	// attack. While set, every decrement lands one cycle late.
	envelopeDelayed bool
}

func NewEnvelopeGenerator() *EnvelopeGenerator {
	e := &EnvelopeGenerator{}
	e.Reset()
	return e
}

func (e *EnvelopeGenerator) Reset() {
	e.envelope_counter = 0
	e.attack = 0
	e.decay = 0
	e.sustain = 0
	e.release = 0
	e.gate = 0
	e.rate_counter = 0
	e.exponential_counter = 0
	e.exponential_counter_period = 1
	e.state = RELEASE
	e.rate_period = rate_counter_period[e.release]
	e.holdZero = true
	e.envelopePipeline = 0
	e.envelopeDelayed = false
}

// Clock advances the envelope by delta_t cycles.
//
// The rate counter is compared for equality only. When the period is lowered
// below the current count, the counter runs on until it wraps at 0x8000 and
// then needs a full period more (the ADSR delay bug).
func (e *EnvelopeGenerator) Clock(delta_t CycleCount) {
	rate_step := int(e.rate_period) - int(e.rate_counter)
	if rate_step <= 0 {
		rate_step += 0x7fff
	}

	for delta_t > 0 {
		if e.envelopePipeline != 0 {
			e.envelopePipeline = 0
			e.step()
		}

		if delta_t < CycleCount(rate_step) {
			e.rate_counter += reg16(delta_t)
			if e.rate_counter&0x8000 != 0 {
				e.rate_counter++
				e.rate_counter &= 0x7fff
			}
			return
		}

		e.rate_counter = 0
		delta_t -= CycleCount(rate_step)
		rate_step = int(e.rate_period)

		// In attack every rate step counts and restarts the divider.
		e.exponential_counter++
		if e.state != ATTACK && e.exponential_counter != e.exponential_counter_period {
			continue
		}
		e.exponential_counter = 0

		if e.holdZero {
			continue
		}

		if e.state != ATTACK && (e.envelopeDelayed || e.exponential_counter_period != 1) {
			e.envelopeDelayed = true
			e.envelopePipeline = 1
			continue
		}
		e.step()
	}
}

// step moves the envelope counter one unit in the current state and loads
// the exponential period for the new level.
func (e *EnvelopeGenerator) step() {
	switch e.state {
	case ATTACK:
		// Attack after a release that wrapped the counter to 0xff rolls it
		// over to 0, where it freezes.
		e.envelope_counter = (e.envelope_counter + 1) & 0xff
		if e.envelope_counter == 0xff {
			e.state = DECAY_SUSTAIN
			e.rate_period = rate_counter_period[e.decay]
		}
	case DECAY_SUSTAIN:
		if e.envelope_counter != int(sustain_level[e.sustain]) {
			e.envelope_counter--
		}
	case RELEASE:
		// Release after an attack that rolled the counter to 0 wraps to 0xff
		// and keeps counting down.
		e.envelope_counter = (e.envelope_counter - 1) & 0xff
	}

	switch e.envelope_counter {
	case 0xff:
		e.exponential_counter_period = 1
	case 0x5d:
		e.exponential_counter_period = 2
	case 0x36:
		e.exponential_counter_period = 4
	case 0x1a:
		e.exponential_counter_period = 8
	case 0x0e:
		e.exponential_counter_period = 16
	case 0x06:
		e.exponential_counter_period = 30
	case 0x00:
		e.exponential_counter_period = 1
		e.holdZero = true
	}
}

func (e *EnvelopeGenerator) Output() reg8 {
	return reg8(e.envelope_counter)
}

// Cycles between envelope steps for each 4 bit rate, measured on real chips
// (the data sheet times * 1MHz / 256, plus one).
var rate_counter_period = [...]reg16{
	9,     //   2ms
	32,    //   8ms
	63,    //  16ms
	95,    //  24ms
	149,   //  38ms
	220,   //  56ms
	267,   //  68ms
	313,   //  80ms
	392,   // 100ms
	977,   // 250ms
	1954,  // 500ms
	3126,  // 800ms
	3907,  //   1 s
	11720, //   3 s
	19532, //   5 s
	31251, //   8 s
}

// Sustain compares both nibbles of the counter with the 4 bit value.
var sustain_level = [...]reg8{
	0x00, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77,
	0x88, 0x99, 0xaa, 0xbb, 0xcc, 0xdd, 0xee, 0xff,
}

// WriteCONTROL_REG handles the gate bit. The rate counter keeps running, so
// the first step after a gate change may take up to a full period.
func (e *EnvelopeGenerator) WriteCONTROL_REG(control reg8) {
	gate_next := control & 0x01

	switch {
	case e.gate == 0 && gate_next != 0:
		if e.envelopePipeline != 0 {
			e.envelopePipeline = 0
			e.step()
		}
		e.envelopeDelayed = false
		e.state = ATTACK
		e.rate_period = rate_counter_period[e.attack]
		e.holdZero = false
	case e.gate != 0 && gate_next == 0:
		e.state = RELEASE
		e.rate_period = rate_counter_period[e.release]
	}

	e.gate = gate_next
}

func (e *EnvelopeGenerator) WriteATTACK_DECAY(attack_decay reg8) {
	e.attack = reg4(attack_decay>>4) & 0x0f
	e.decay = reg4(attack_decay & 0x0f)

	switch e.state {
	case ATTACK:
		e.rate_period = rate_counter_period[e.attack]
	case DECAY_SUSTAIN:
		e.rate_period = rate_counter_period[e.decay]
	}
}

func (e *EnvelopeGenerator) WriteSUSTAIN_RELEASE(sustain_release reg8) {
	e.sustain = reg4(sustain_release>>4) & 0x0f
	e.release = reg4(sustain_release & 0x0f)
	if e.state == RELEASE {
		e.rate_period = rate_counter_period[e.release]
	}
}

func (e *EnvelopeGenerator) readENV() reg8 {
	return e.Output()
}
