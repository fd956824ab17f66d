package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"golang.org/x/term"

	"yaspg/sidengine/engine"
	"yaspg/sidengine/psid"
)

func main() {
	opt := NewSidPlayerSettings()
	if err := opt.ParseArgs(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}
	if opt.Usage || opt.File == "" {
		opt.PrintUsage(os.Stderr)
		os.Exit(1)
	}

	tune, err := psid.Open(opt.File)
	if err != nil {
		log.Fatal(err)
	}
	tune.Header.PrintHeader(os.Stdout)
	if tune.Header.IsRSID() {
		fmt.Println("Warning: RSID tunes expect a complete C64 and may not play correctly")
	}

	cfg, err := opt.EngineConfig(&tune.Header)
	if err != nil {
		log.Fatal(err)
	}
	sid, err := engine.OpenWithFallback(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer sid.Close()

	player := NewSidPlayer(sid, tune, os.Stdout)
	song := opt.Subtune
	if song < 0 {
		song = int(tune.Header.StartSong) - 1
	}
	player.Start(song)

	rate := sid.Config().SampleRate
	if opt.WavFile != "" {
		if err := renderWAV(player, opt.WavFile, rate, opt.Seconds); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Wrote %d seconds to %s\n", opt.Seconds, opt.WavFile)
		return
	}

	sink, err := newAudioSink(opt.Audio)
	if err != nil {
		log.Fatal(err)
	}
	stop := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- sink.Play(player, rate, stop)
	}()

	if err := runKeys(player, stop, done); err != nil {
		log.Fatal(err)
	}
}

// runKeys handles keyboard control until the user quits or the audio sink
// fails. On a terminal single keys act at once; otherwise Enter quits.
func runKeys(p *SidPlayer, stop chan struct{}, done <-chan error) error {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		old, err := term.MakeRaw(fd)
		if err != nil {
			return err
		}
		defer term.Restore(fd, old)
		p.mu.Lock()
		p.out = crlfWriter{os.Stdout}
		p.mu.Unlock()
		fmt.Fprint(p.out, "Keys: q quit, n/p next/previous subtune, s/l save/load state, d dump chip\n")
	} else {
		fmt.Println("Press the Enter Key to stop anytime")
	}

	keys := make(chan byte)
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				close(keys)
				return
			}
			keys <- buf[0]
		}
	}()

	var saved []byte
	for {
		select {
		case err := <-done:
			return err
		case k, ok := <-keys:
			if !ok {
				k = 'q'
			}
			switch k {
			case 'q', 'Q', 0x1b, 0x03, '\r', '\n':
				close(stop)
				return <-done
			case 'n', '+':
				p.NextTune()
			case 'p', '-':
				p.PrevTune()
			case 'd':
				p.DumpState(p.out)
			case 's':
				var err error
				if saved, err = p.SaveState(); err != nil {
					fmt.Fprintf(p.out, "Warning: state not saved: %v\n", err)
				} else {
					fmt.Fprintf(p.out, "State saved, %d bytes\n", len(saved))
				}
			case 'l':
				if saved == nil {
					fmt.Fprintln(p.out, "No state saved")
				} else if err := p.LoadState(saved); err != nil {
					fmt.Fprintf(p.out, "Warning: state not restored: %v\n", err)
				}
			}
		}
	}
}

// crlfWriter ends lines with CR LF for a terminal in raw mode.
type crlfWriter struct {
	w io.Writer
}

func (c crlfWriter) Write(b []byte) (int, error) {
	if _, err := c.w.Write(bytes.ReplaceAll(b, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(b), nil
}
