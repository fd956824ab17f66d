package engine

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"yaspg/sidengine/snapshot"
)

func configs() []Config {
	return []Config{
		{Engine: EngineFast, Model: Model6581, Filters: true},
		{Engine: EngineFast, Model: Model8580, Filters: false},
		{Engine: EngineReSID, Model: Model6581, Filters: true, Sampling: SampleInterpolate},
		{Engine: EngineReSID, Model: Model8580D, Filters: true, Sampling: SampleResampleInterpolate},
		{Engine: EngineReSID, Model: Model6581R4, Filters: true, FilterBiasMV: 500},
	}
}

func open(t *testing.T, cfg Config) *Handle {
	t.Helper()
	h, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open(%+v): %v", cfg, err)
	}
	t.Cleanup(h.Close)
	return h
}

func play(h *Handle) {
	regs := [][2]uint8{
		{0x00, 0x25}, {0x01, 0x11}, {0x05, 0x09}, {0x06, 0xa4}, {0x04, 0x21},
		{0x07, 0x30}, {0x08, 0x16}, {0x0c, 0x22}, {0x0d, 0xc8}, {0x0b, 0x11},
		{0x15, 0x03}, {0x16, 0x40}, {0x17, 0xf3}, {0x18, 0x1f},
	}
	for i, r := range regs {
		h.Store(r[0], r[1], int64(i))
	}
}

func render(h *Handle, cycles int) []int16 {
	buf := make([]int16, cycles/16)
	delta := cycles
	n := h.CalculateSamples(buf, len(buf), 1, &delta)
	return buf[:n]
}

func TestOpenEveryEngine(t *testing.T) {
	for _, cfg := range configs() {
		h := open(t, cfg)
		play(h)
		out := render(h, 100000)
		if len(out) < 4400 {
			t.Errorf("%s/%s: %d samples for 100000 cycles", cfg.Engine, cfg.Model, len(out))
		}
		nonzero := false
		for _, v := range out {
			if v != out[0] {
				nonzero = true
				break
			}
		}
		if !nonzero {
			t.Errorf("%s/%s: output is constant", cfg.Engine, cfg.Model)
		}
		if got := h.Config(); got.GainPercent != 97 || got.SampleRate != DefaultSampleRate {
			t.Errorf("Config not defaulted: %+v", got)
		}
	}
}

func TestOpenInvalid(t *testing.T) {
	_, err := Open(Config{Engine: EngineReSID, GainPercent: 50})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("Open = %v, want ErrConfig", err)
	}
	// valid fields, but too low a rate for the resampler
	_, err = Open(Config{Engine: EngineReSID, Sampling: SampleResampleInterpolate, SampleRate: 4000})
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("Open = %v, want ErrConfig", err)
	}
}

func TestOpenWithFallback(t *testing.T) {
	h, err := OpenWithFallback(Config{Engine: EngineReSID, Sampling: SampleResampleInterpolate, SampleRate: 4000})
	if err != nil {
		t.Fatal(err)
	}
	defer h.Close()
	cfg := h.Config()
	if cfg.Engine != EngineFast || cfg.SampleRate != 4000 || cfg.ClockRate != DefaultClockRate {
		t.Fatalf("fallback config = %+v", cfg)
	}
}

func TestInitKeepsEngine(t *testing.T) {
	h := open(t, Config{Engine: EngineFast})
	if err := h.Init(Config{Engine: EngineReSID}); !errors.Is(err, ErrConfig) {
		t.Fatalf("engine switch: %v, want ErrConfig", err)
	}
	if err := h.Init(Config{Engine: EngineFast, Model: Model8580, SampleRate: 48000}); err != nil {
		t.Fatal(err)
	}
	if h.Config().SampleRate != 48000 {
		t.Fatal("reinit ignored")
	}
}

func TestInitFailureLeavesChip(t *testing.T) {
	cfg := Config{Engine: EngineReSID, Model: Model6581, Filters: true}
	a, b := open(t, cfg), open(t, cfg)
	want := b.Config()

	bad := Config{Engine: EngineReSID, Model: Model8580, Sampling: SampleResampleInterpolate, SampleRate: 4000}
	if err := b.Init(bad); !errors.Is(err, ErrConfig) {
		t.Fatalf("Init = %v, want ErrConfig", err)
	}
	if got := b.Config(); got != want {
		t.Fatalf("Config after failed Init = %+v, want %+v", got, want)
	}

	play(a)
	play(b)
	sa, sb := render(a, 50000), render(b, 50000)
	if len(sa) != len(sb) {
		t.Fatalf("%d vs %d samples", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i] != sb[i] {
			t.Fatalf("sample %d: %d, untouched handle %d", i, sb[i], sa[i])
		}
	}
}

func TestDeterminism(t *testing.T) {
	for _, cfg := range configs() {
		a, b := open(t, cfg), open(t, cfg)
		play(a)
		play(b)
		sa, sb := render(a, 50000), render(b, 50000)
		if len(sa) != len(sb) {
			t.Fatalf("%s: %d vs %d samples", cfg.Engine, len(sa), len(sb))
		}
		for i := range sa {
			if sa[i] != sb[i] {
				t.Fatalf("%s: sample %d differs", cfg.Engine, i)
			}
		}
	}
}

func TestCalculateSamplesClampsToBuffer(t *testing.T) {
	h := open(t, Config{Engine: EngineFast})
	buf := make([]int16, 10)
	delta := 100000
	if n := h.CalculateSamples(buf, 1000, 2, &delta); n != 5 {
		t.Fatalf("got %d samples, want 5", n)
	}
	if delta <= 0 {
		t.Fatal("unused cycles were dropped")
	}
}

func TestStateRoundTrip(t *testing.T) {
	for _, cfg := range configs() {
		a := open(t, cfg)
		play(a)
		render(a, 30000)

		m := a.StateRead()
		b := open(t, cfg)
		if err := b.StateWrite(m); err != nil {
			t.Fatalf("%s: %v", cfg.Engine, err)
		}
		sa, sb := render(a, 20000), render(b, 20000)
		for i := range sa {
			if sa[i] != sb[i] {
				t.Fatalf("%s/%s: sample %d differs after restore", cfg.Engine, cfg.Model, i)
			}
		}
	}
}

func TestStateWriteRejects(t *testing.T) {
	fast := open(t, Config{Engine: EngineFast})
	resid := open(t, Config{Engine: EngineReSID})
	play(fast)
	render(fast, 10000)
	before := fast.StateRead()

	if err := fast.StateWrite(resid.StateRead()); !errors.Is(err, snapshot.ErrMalformed) {
		t.Fatalf("cross engine record: %v, want ErrMalformed", err)
	}

	newer := *before
	newer.Major++
	if err := fast.StateWrite(&newer); !errors.Is(err, snapshot.ErrUnsupportedVersion) {
		t.Fatalf("newer major: %v, want ErrUnsupportedVersion", err)
	}

	after := fast.StateRead()
	if !bytes.Equal(before.Data, after.Data) {
		t.Fatal("rejected record changed the chip")
	}
}

func TestMute(t *testing.T) {
	for _, cfg := range configs()[:3] {
		a, b := open(t, cfg), open(t, cfg)
		play(a)
		play(b)
		for v := 0; v < 4; v++ {
			a.Mute(v, true)
		}
		a.Mute(7, true)

		sa, sb := render(a, 20000), render(b, 20000)
		same := true
		for i := range sa {
			if sa[i] != sb[i] {
				same = false
				break
			}
		}
		if same {
			t.Errorf("%s: muting changed nothing", cfg.Engine)
		}

		a.Mute(1, false)
		var buf bytes.Buffer
		a.DumpState(&buf)
		if !strings.Contains(buf.String(), "voice mask: 2") {
			t.Errorf("%s: dump lacks the voice mask:\n%s", cfg.Engine, buf.String())
		}
	}
}

func TestReadWriteOnlyRegister(t *testing.T) {
	for _, cfg := range configs()[:3] {
		h := open(t, cfg)
		h.Store(0x05, 0xa9, 100)
		if v := h.Read(0x25, 101); v != 0xa9 {
			t.Errorf("%s: mirrored read = %#x, want 0xa9", cfg.Engine, v)
		}
		h.PreventClockOverflow(100)
		if v := h.Read(0x05, 2); v != 0xa9 {
			t.Errorf("%s: read after rebase = %#x, want 0xa9", cfg.Engine, v)
		}
		h.SetPots(1, 2)
		if h.Read(0x19, 0) != 1 || h.Read(0x1a, 0) != 2 {
			t.Errorf("%s: pots not passed through", cfg.Engine)
		}
	}
}

func TestDumpState(t *testing.T) {
	h := open(t, Config{Engine: EngineReSID, Model: Model8580})
	var buf bytes.Buffer
	h.DumpState(&buf)
	if !strings.HasPrefix(buf.String(), "engine: resid  model: 8580") {
		t.Fatalf("dump header:\n%s", buf.String())
	}
}
