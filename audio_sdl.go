package main

import (
	"time"

	"github.com/veandco/go-sdl2/sdl"
)

type sdlSink struct{}

// Play keeps about 100ms of audio queued on the default device.
func (sdlSink) Play(p *SidPlayer, rate int, stop <-chan struct{}) error {
	if err := sdl.Init(sdl.INIT_AUDIO); err != nil {
		return err
	}
	defer sdl.Quit()

	spec := &sdl.AudioSpec{
		Freq:     int32(rate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}
	dev, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return err
	}
	defer sdl.CloseAudioDevice(dev)

	samples := make([]int16, 1024)
	raw := make([]byte, 2*len(samples))
	queued := uint32(rate / 10 * 2)

	sdl.PauseAudioDevice(dev, false)
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if sdl.GetQueuedAudioSize(dev) >= queued {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		p.Render(samples)
		putPCM(raw, samples)
		if err := sdl.QueueAudio(dev, raw); err != nil {
			return err
		}
	}
}
