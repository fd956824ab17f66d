package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// writeWAV writes mono 16 bit PCM with a canonical 44 byte header.
func writeWAV(w io.Writer, rate int, samples []int16) error {
	const bits, channels = 16, 1
	dataSize := uint32(len(samples) * 2)

	hdr := []any{
		[4]byte{'R', 'I', 'F', 'F'}, 36 + dataSize, [4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '}, uint32(16), uint16(1), uint16(channels),
		uint32(rate), uint32(rate * channels * bits / 8), uint16(channels * bits / 8), uint16(bits),
		[4]byte{'d', 'a', 't', 'a'}, dataSize,
	}
	for _, v := range hdr {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("failed to write WAV header: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, samples); err != nil {
		return fmt.Errorf("failed to write samples: %w", err)
	}
	return nil
}

// renderWAV plays seconds of the current subtune into the file at path.
func renderWAV(p *SidPlayer, path string, rate, seconds int) (err error) {
	samples := make([]int16, rate*seconds)
	const chunk = 4096
	for i := 0; i < len(samples); i += chunk {
		p.Render(samples[i:min(i+chunk, len(samples))])
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	if err := writeWAV(bw, rate, samples); err != nil {
		return err
	}
	return bw.Flush()
}
