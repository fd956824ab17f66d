package main

import (
	"encoding/binary"
	"fmt"
)

// AudioSink plays what a player renders until stop is closed.
type AudioSink interface {
	Play(p *SidPlayer, rate int, stop <-chan struct{}) error
}

func newAudioSink(name string) (AudioSink, error) {
	switch name {
	case "oto":
		return otoSink{}, nil
	case "sdl":
		return sdlSink{}, nil
	default:
		return nil, fmt.Errorf("unknown audio output %q, want oto or sdl", name)
	}
}

// putPCM encodes samples as 16 bit little endian PCM.
func putPCM(dst []byte, src []int16) {
	for i, v := range src {
		binary.LittleEndian.PutUint16(dst[2*i:], uint16(v))
	}
}
