// Package engine is the single entry point to the SID backends. A Handle
// owns one backend, chosen from the configuration when it is opened.
package engine

import (
	"fmt"
	"io"
	"log"
	"os"

	"yaspg/sidengine/snapshot"
)

// Backend is implemented by every synthesis engine.
type Backend interface {
	// Init configures the backend for cfg and resets it.
	Init(cfg Config) error
	Close()

	Read(addr uint8, clock int64) uint8
	Store(addr, value uint8, clock int64)
	Reset(clock int64)

	// CalculateSamples produces up to n samples every interleave entries
	// of buf for at most *delta clock cycles, reducing *delta by the
	// cycles used.
	CalculateSamples(buf []int16, n, interleave int, delta *int) int
	PreventClockOverflow(sub int64)

	DumpState(w io.Writer)
	StateRead() *snapshot.Module
	// StateWrite leaves the backend untouched when m cannot be decoded.
	StateWrite(m *snapshot.Module) error

	SetVoiceMask(mask uint8)
	SetPots(x, y uint8)
}

var registry = map[Kind]func() Backend{}

// Register makes a backend constructor available to Open.
func Register(k Kind, fn func() Backend) {
	registry[k] = fn
}

func init() {
	Register(EngineFast, func() Backend { return newFastBackend() })
	Register(EngineReSID, func() Backend { return newReSIDBackend() })
}

// Handle is one emulated chip. It is not safe for concurrent use; a multi
// SID setup opens one handle per chip.
type Handle struct {
	backend   Backend
	cfg       Config
	voiceMask uint8
	log       *log.Logger
}

// Open creates the backend cfg selects and initialises it.
func Open(cfg Config) (*Handle, error) {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fn, ok := registry[cfg.Engine]
	if !ok {
		return nil, fmt.Errorf("%w: no backend registered for %s", ErrConfig, cfg.Engine)
	}

	h := &Handle{
		backend:   fn(),
		voiceMask: 0x0f,
		log:       log.New(os.Stderr, "SID: ", log.LstdFlags),
	}
	if err := h.Init(cfg); err != nil {
		h.backend.Close()
		return nil, err
	}
	return h, nil
}

// OpenWithFallback opens cfg and, when that fails, the default
// configuration at the same sample and clock rate.
func OpenWithFallback(cfg Config) (*Handle, error) {
	h, err := Open(cfg)
	if err == nil {
		return h, nil
	}

	def := DefaultConfig()
	if cfg.SampleRate > 0 {
		def.SampleRate = cfg.SampleRate
	}
	if cfg.ClockRate > 0 {
		def.ClockRate = cfg.ClockRate
	}
	log.Printf("Warning: %v, falling back to %s engine with %s sampling", err, def.Engine, def.Sampling)

	h, derr := Open(def)
	if derr != nil {
		return nil, fmt.Errorf("%w (default configuration: %v)", err, derr)
	}
	return h, nil
}

// Init reconfigures the open backend. The engine kind cannot change; close
// the handle and open a new one for that.
func (h *Handle) Init(cfg Config) error {
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if h.cfg.SampleRate != 0 && cfg.Engine != h.cfg.Engine {
		return fmt.Errorf("%w: handle runs the %s engine, cannot switch to %s", ErrConfig, h.cfg.Engine, cfg.Engine)
	}
	if err := h.backend.Init(cfg); err != nil {
		return fmt.Errorf("%w: %s engine: %v", ErrConfig, cfg.Engine, err)
	}
	h.cfg = cfg
	h.backend.SetVoiceMask(h.voiceMask)
	h.log.Printf("%s engine, model %s, %s sampling at %dHz, filters %t", cfg.Engine, cfg.Model, cfg.Sampling, cfg.SampleRate, cfg.Filters)
	return nil
}

// Close releases the backend. The handle must not be used afterwards.
func (h *Handle) Close() {
	if h.backend != nil {
		h.backend.Close()
		h.backend = nil
	}
}

// Config returns the configuration in effect, defaults filled in.
func (h *Handle) Config() Config {
	return h.cfg
}

func (h *Handle) Read(addr uint8, clock int64) uint8 {
	return h.backend.Read(addr&0x1f, clock)
}

func (h *Handle) Store(addr, value uint8, clock int64) {
	h.backend.Store(addr&0x1f, value, clock)
}

func (h *Handle) Reset(clock int64) {
	h.backend.Reset(clock)
}

func (h *Handle) CalculateSamples(buf []int16, n, interleave int, delta *int) int {
	if interleave < 1 {
		interleave = 1
	}
	if limit := (len(buf) + interleave - 1) / interleave; n > limit {
		n = limit
	}
	return h.backend.CalculateSamples(buf, n, interleave, delta)
}

func (h *Handle) PreventClockOverflow(sub int64) {
	h.backend.PreventClockOverflow(sub)
}

func (h *Handle) DumpState(w io.Writer) {
	fmt.Fprintf(w, "engine: %s  model: %s  sampling: %s  rate: %d\n", h.cfg.Engine, h.cfg.Model, h.cfg.Sampling, h.cfg.SampleRate)
	h.backend.DumpState(w)
}

// StateRead captures the backend as a snapshot record.
func (h *Handle) StateRead() *snapshot.Module {
	return h.backend.StateRead()
}

// StateWrite restores a record written by StateRead of the same engine.
func (h *Handle) StateWrite(m *snapshot.Module) error {
	if err := h.backend.StateWrite(m); err != nil {
		h.log.Printf("Warning: state not restored: %v", err)
		return err
	}
	return nil
}

// Mute silences voice 0-2, or the external input with voice 3.
func (h *Handle) Mute(voice int, mute bool) {
	if voice < 0 || voice > 3 {
		return
	}
	if mute {
		h.voiceMask &^= 1 << voice
	} else {
		h.voiceMask |= 1 << voice
	}
	h.backend.SetVoiceMask(h.voiceMask)
}

func (h *Handle) SetPots(x, y uint8) {
	h.backend.SetPots(x, y)
}
