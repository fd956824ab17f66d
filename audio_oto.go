package main

import (
	"time"

	"github.com/ebitengine/oto/v3"
)

type otoSink struct{}

func (otoSink) Play(p *SidPlayer, rate int, stop <-chan struct{}) error {
	op := &oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return err
	}
	<-ready

	player := ctx.NewPlayer(&pcmReader{p: p})
	player.Play()
	<-stop
	player.Pause()
	return player.Close()
}

// pcmReader pulls samples from the player for oto.
type pcmReader struct {
	p   *SidPlayer
	buf []int16
}

func (r *pcmReader) Read(b []byte) (int, error) {
	n := len(b) / 2
	if cap(r.buf) < n {
		r.buf = make([]int16, n)
	}
	samples := r.buf[:n]
	r.p.Render(samples)
	putPCM(b, samples)
	return 2 * n, nil
}
