package main

import (
	"flag"
	"fmt"
	"io"

	"yaspg/sidengine/engine"
	"yaspg/sidengine/psid"
)

const (
	palClock  = 985248
	ntscClock = 1022727
)

type SidPlayerSettings struct {
	File     string
	Subtune  int
	Usage    bool
	Engine   string
	Model    string
	Sampling string
	Video    string
	Rate     int
	Gain     int
	Passband int
	Bias     int
	NoFilter bool
	Audio    string
	WavFile  string
	Seconds  int

	flags *flag.FlagSet
}

func NewSidPlayerSettings() *SidPlayerSettings {
	opt := &SidPlayerSettings{}
	return opt
}

func (opt *SidPlayerSettings) ParseArgs(args []string) error {
	fs := flag.NewFlagSet("sidplayer", flag.ContinueOnError)
	opt.flags = fs
	fs.IntVar(&opt.Subtune, "a", -1, "Subtune to play, counted from 0 (default: the tune's start song)")
	fs.BoolVar(&opt.Usage, "h", false, "Display usage information")
	fs.StringVar(&opt.Engine, "engine", "resid", "Synthesis engine: fast or resid")
	fs.StringVar(&opt.Model, "model", "", "Chip model: 6581, 8580, 8580d or 6581r4 (default: from the tune)")
	fs.StringVar(&opt.Sampling, "sampling", "interpolate", "resid sampling: fast, interpolate, resample or resample-fast")
	fs.StringVar(&opt.Video, "video", "", "Clock standard: pal or ntsc (default: from the tune)")
	fs.IntVar(&opt.Rate, "rate", engine.DefaultSampleRate, "Sample rate in Hz")
	fs.IntVar(&opt.Gain, "gain", 97, "Resampler gain in percent, 90-100")
	fs.IntVar(&opt.Passband, "passband", 0, "Resampler passband in percent of Nyquist, 0-90 (0: automatic)")
	fs.IntVar(&opt.Bias, "bias", 0, "6581 filter bias in mV")
	fs.BoolVar(&opt.NoFilter, "nofilter", false, "Bypass the filter")
	fs.StringVar(&opt.Audio, "audio", "oto", "Audio output: oto or sdl")
	fs.StringVar(&opt.WavFile, "wav", "", "Render to this WAV file instead of playing")
	fs.IntVar(&opt.Seconds, "seconds", 60, "Length of a WAV render in seconds")
	if err := fs.Parse(args); err != nil {
		return err
	}
	opt.File = fs.Arg(0)
	return nil
}

func (opt *SidPlayerSettings) PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: sidplayer [options] <sidfile>")
	opt.flags.SetOutput(w)
	opt.flags.PrintDefaults()
}

// EngineConfig builds the chip configuration. Model and clock follow the
// tune's flags unless set on the command line.
func (opt *SidPlayerSettings) EngineConfig(h *psid.PSIDHeader) (engine.Config, error) {
	cfg := engine.Config{
		Filters:         !opt.NoFilter,
		GainPercent:     opt.Gain,
		PassbandPercent: opt.Passband,
		FilterBiasMV:    opt.Bias,
		SampleRate:      opt.Rate,
		ClockRate:       palClock,
	}

	var err error
	if cfg.Engine, err = engine.ParseKind(opt.Engine); err != nil {
		return cfg, err
	}
	if cfg.Sampling, err = engine.ParseSampling(opt.Sampling); err != nil {
		return cfg, err
	}

	switch {
	case opt.Model != "":
		if cfg.Model, err = engine.ParseModel(opt.Model); err != nil {
			return cfg, err
		}
	case h.Model() == psid.Model8580:
		cfg.Model = engine.Model8580
	default:
		cfg.Model = engine.Model6581
	}

	switch opt.Video {
	case "pal":
	case "ntsc":
		cfg.ClockRate = ntscClock
	case "":
		if h.Clock() == psid.ClockNTSC {
			cfg.ClockRate = ntscClock
		}
	default:
		return cfg, fmt.Errorf("unknown video standard %q, want pal or ntsc", opt.Video)
	}

	cfg.Defaults()
	return cfg, cfg.Validate()
}
