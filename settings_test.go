package main

import (
	"errors"
	"testing"

	"yaspg/sidengine/engine"
	"yaspg/sidengine/psid"
)

func TestEngineConfig(t *testing.T) {
	opt := NewSidPlayerSettings()
	if err := opt.ParseArgs([]string{"-engine", "fast", "-nofilter", "tune.sid"}); err != nil {
		t.Fatal(err)
	}
	if opt.File != "tune.sid" || opt.Subtune != -1 {
		t.Fatalf("file %q subtune %d", opt.File, opt.Subtune)
	}

	h := &psid.PSIDHeader{Version: 2, Flags: 0x28}
	cfg, err := opt.EngineConfig(h)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine != engine.EngineFast || cfg.Filters || cfg.Model != engine.Model8580 || cfg.ClockRate != ntscClock {
		t.Fatalf("config from tune flags: %+v", cfg)
	}

	opt.Model, opt.Video = "6581r4", "pal"
	if cfg, err = opt.EngineConfig(h); err != nil {
		t.Fatal(err)
	}
	if cfg.Model != engine.Model6581R4 || cfg.ClockRate != palClock {
		t.Fatalf("command line overrides ignored: %+v", cfg)
	}
}

func TestEngineConfigErrors(t *testing.T) {
	h := &psid.PSIDHeader{}
	for _, args := range [][]string{
		{"-engine", "hardsid"},
		{"-model", "6582"},
		{"-sampling", "cubic"},
		{"-gain", "50"},
	} {
		opt := NewSidPlayerSettings()
		if err := opt.ParseArgs(args); err != nil {
			t.Fatal(err)
		}
		if _, err := opt.EngineConfig(h); !errors.Is(err, engine.ErrConfig) {
			t.Errorf("%v: err = %v, want ErrConfig", args, err)
		}
	}

	opt := NewSidPlayerSettings()
	opt.ParseArgs([]string{"-video", "secam"})
	if _, err := opt.EngineConfig(h); err == nil {
		t.Error("unknown video standard accepted")
	}
}
