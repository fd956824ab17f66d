package resid

import "testing"

func TestEnvelopeDecrementPipeline(t *testing.T) {
	e := NewEnvelopeGenerator()
	e.state = RELEASE
	e.holdZero = false
	e.envelope_counter = 0x50
	e.exponential_counter_period = 2
	e.exponential_counter = 1
	e.rate_period = 9
	e.rate_counter = 8

	e.Clock(1)
	if e.envelope_counter != 0x50 {
		t.Fatalf("counter = %#x on the rate step cycle, want 0x50", e.envelope_counter)
	}
	e.Clock(1)
	if e.envelope_counter != 0x4f {
		t.Fatalf("counter = %#x one cycle later, want 0x4f", e.envelope_counter)
	}
	if !e.envelopeDelayed {
		t.Fatal("decrements should stay delayed")
	}
}

func TestEnvelopeAttackFlushesPipeline(t *testing.T) {
	e := NewEnvelopeGenerator()
	e.state = RELEASE
	e.holdZero = false
	e.envelope_counter = 0x40
	e.envelopePipeline = 1
	e.envelopeDelayed = true

	e.WriteCONTROL_REG(0x01)
	if e.envelope_counter != 0x3f {
		t.Fatalf("counter = %#x, pending decrement was not applied", e.envelope_counter)
	}
	if e.envelopePipeline != 0 || e.envelopeDelayed {
		t.Fatal("attack must clear the decrement pipeline")
	}
	if e.state != ATTACK {
		t.Fatalf("state = %s, want attack", e.state)
	}
}

func TestEnvelopeReleaseReachesZero(t *testing.T) {
	e := NewEnvelopeGenerator()
	e.WriteATTACK_DECAY(0x00)
	e.WriteSUSTAIN_RELEASE(0xf0)
	e.WriteCONTROL_REG(0x01)

	for c := 0; c < 5000 && e.envelope_counter != 0xff; c++ {
		e.Clock(1)
	}
	if e.envelope_counter != 0xff {
		t.Fatalf("attack stopped at %#x", e.envelope_counter)
	}

	e.WriteCONTROL_REG(0x00)
	prev := e.envelope_counter
	for c := 0; c < 20000; c++ {
		e.Clock(1)
		if e.envelope_counter > prev {
			t.Fatalf("release rose from %#x to %#x at cycle %d", prev, e.envelope_counter, c)
		}
		prev = e.envelope_counter
	}
	if prev != 0 {
		t.Fatalf("release ended at %#x, want 0", prev)
	}
	if !e.holdZero {
		t.Fatal("counter at zero must be frozen")
	}
}

func TestEnvelopeClockChunking(t *testing.T) {
	a, b := NewEnvelopeGenerator(), NewEnvelopeGenerator()
	for _, e := range []*EnvelopeGenerator{a, b} {
		e.WriteATTACK_DECAY(0x22)
		e.WriteSUSTAIN_RELEASE(0x83)
		e.WriteCONTROL_REG(0x01)
	}

	chunks := []CycleCount{1, 7, 13, 64, 3, 250, 1, 1, 999}
	clocked := 0
	for i := 0; clocked < 60000; i++ {
		d := chunks[i%len(chunks)]
		a.Clock(d)
		for c := CycleCount(0); c < d; c++ {
			b.Clock(1)
		}
		clocked += int(d)

		if clocked > 30000 && a.gate != 0 {
			a.WriteCONTROL_REG(0x00)
			b.WriteCONTROL_REG(0x00)
		}
		if a.envelope_counter != b.envelope_counter || a.rate_counter != b.rate_counter {
			t.Fatalf("after %d cycles: chunked %#x/%d, single %#x/%d", clocked,
				a.envelope_counter, a.rate_counter, b.envelope_counter, b.rate_counter)
		}
	}
}

func TestSustainLevel(t *testing.T) {
	e := NewEnvelopeGenerator()
	e.WriteATTACK_DECAY(0x00)
	e.WriteSUSTAIN_RELEASE(0x80)
	e.WriteCONTROL_REG(0x01)
	e.Clock(100000)
	if e.envelope_counter != 0x88 {
		t.Fatalf("sustained at %#x, want 0x88", e.envelope_counter)
	}
	if e.state != DECAY_SUSTAIN {
		t.Fatalf("state = %s", e.state)
	}
}
