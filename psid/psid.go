// Package psid reads PSID and RSID tune files.
package psid

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrFormat is wrapped by every rejected file.
var ErrFormat = errors.New("psid: invalid file")

const (
	v1HeaderSize = 0x76
	v2HeaderSize = 0x7c
)

// Model is the chip a tune was written for, from the v2 flags.
type Model uint8

const (
	ModelUnknown Model = iota
	Model6581
	Model8580
	ModelAny
)

func (m Model) String() string {
	switch m {
	case Model6581:
		return "6581"
	case Model8580:
		return "8580"
	case ModelAny:
		return "6581/8580"
	default:
		return "unknown"
	}
}

// Clock is the video standard a tune was timed for.
type Clock uint8

const (
	ClockUnknown Clock = iota
	ClockPAL
	ClockNTSC
	ClockAny
)

func (c Clock) String() string {
	switch c {
	case ClockPAL:
		return "PAL"
	case ClockNTSC:
		return "NTSC"
	case ClockAny:
		return "PAL/NTSC"
	default:
		return "unknown"
	}
}

// PSIDHeader is the big endian file header. The v2 fields are zero for
// version 1 files.
type PSIDHeader struct {
	MagicID     [4]byte
	Version     uint16
	DataOffset  uint16
	LoadAddress uint16
	InitAddress uint16
	PlayAddress uint16
	Songs       uint16
	StartSong   uint16
	Speed       uint32
	Name        [32]byte
	Author      [32]byte
	Released    [32]byte

	Flags      uint16
	StartPage  uint8
	PageLength uint8
	Sid2Addr   uint8
	Sid3Addr   uint8
}

// Tune is a parsed file: the header and the C64 program image.
type Tune struct {
	Header PSIDHeader
	Data   []byte
}

// Open reads and parses the file at path.
func Open(path string) (*Tune, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load parses a tune from r.
func Load(r io.Reader) (*Tune, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a complete file image.
func Parse(data []byte) (*Tune, error) {
	t := &Tune{}
	h := &t.Header
	if err := h.LoadHeader(data); err != nil {
		return nil, err
	}

	start := int(h.DataOffset)
	if h.LoadAddress == 0 {
		if len(data) < start+2 {
			return nil, fmt.Errorf("%w: missing embedded load address", ErrFormat)
		}
		h.LoadAddress = binary.LittleEndian.Uint16(data[start:])
		start += 2
	}
	if start >= len(data) {
		return nil, fmt.Errorf("%w: no program data", ErrFormat)
	}
	if int(h.LoadAddress)+len(data)-start > 0x10000 {
		return nil, fmt.Errorf("%w: SID data continues past end of C64 memory", ErrFormat)
	}
	t.Data = bytes.Clone(data[start:])

	if h.InitAddress == 0 {
		h.InitAddress = h.LoadAddress
	}
	return t, nil
}

// LoadHeader decodes and checks the header at the start of data. An
// embedded load address is left for Parse to resolve.
func (psid *PSIDHeader) LoadHeader(data []byte) error {
	if len(data) < v1HeaderSize {
		return fmt.Errorf("%w: %d bytes is shorter than a header", ErrFormat, len(data))
	}
	copy(psid.MagicID[:], data)
	psid.Version = binary.BigEndian.Uint16(data[0x04:])
	psid.DataOffset = binary.BigEndian.Uint16(data[0x06:])
	psid.LoadAddress = binary.BigEndian.Uint16(data[0x08:])
	psid.InitAddress = binary.BigEndian.Uint16(data[0x0a:])
	psid.PlayAddress = binary.BigEndian.Uint16(data[0x0c:])
	psid.Songs = binary.BigEndian.Uint16(data[0x0e:])
	psid.StartSong = binary.BigEndian.Uint16(data[0x10:])
	psid.Speed = binary.BigEndian.Uint32(data[0x12:])
	copy(psid.Name[:], data[0x16:])
	copy(psid.Author[:], data[0x36:])
	copy(psid.Released[:], data[0x56:])

	switch string(psid.MagicID[:]) {
	case "PSID":
		if psid.Version < 1 || psid.Version > 4 {
			return fmt.Errorf("%w: PSID version %d", ErrFormat, psid.Version)
		}
	case "RSID":
		if psid.Version < 2 || psid.Version > 4 {
			return fmt.Errorf("%w: RSID version %d", ErrFormat, psid.Version)
		}
	default:
		return fmt.Errorf("%w: magic %q", ErrFormat, psid.MagicID[:])
	}

	want := v1HeaderSize
	if psid.Version > 1 {
		want = v2HeaderSize
	}
	if int(psid.DataOffset) != want {
		return fmt.Errorf("%w: data offset 0x%X, want 0x%X for version %d", ErrFormat, psid.DataOffset, want, psid.Version)
	}
	if len(data) < want {
		return fmt.Errorf("%w: truncated version %d header", ErrFormat, psid.Version)
	}
	if psid.Version > 1 {
		psid.Flags = binary.BigEndian.Uint16(data[0x76:])
		psid.StartPage = data[0x78]
		psid.PageLength = data[0x79]
		psid.Sid2Addr = data[0x7a]
		psid.Sid3Addr = data[0x7b]
	}

	if psid.Songs == 0 || psid.Songs > 256 {
		return fmt.Errorf("%w: %d songs", ErrFormat, psid.Songs)
	}
	if psid.StartSong == 0 || psid.StartSong > psid.Songs {
		psid.StartSong = 1
	}
	if psid.IsRSID() && (psid.LoadAddress != 0 || psid.PlayAddress != 0 || psid.Speed != 0) {
		return fmt.Errorf("%w: RSID with load address, play address or speed set", ErrFormat)
	}
	return nil
}

func (psid *PSIDHeader) IsRSID() bool {
	return string(psid.MagicID[:]) == "RSID"
}

// Model is the chip named in the flags, bits 4-5.
func (psid *PSIDHeader) Model() Model {
	return Model(psid.Flags >> 4 & 3)
}

// Clock is the video standard named in the flags, bits 2-3.
func (psid *PSIDHeader) Clock() Clock {
	return Clock(psid.Flags >> 2 & 3)
}

// UsesCIA reports whether song, counted from 0, is timed by CIA 1 timer A
// rather than the vertical blank. Songs past 31 share bit 31.
func (psid *PSIDHeader) UsesCIA(song int) bool {
	if psid.IsRSID() {
		return true
	}
	return psid.Speed&(1<<min(song, 31)) != 0
}

func (psid *PSIDHeader) PrintHeader(w io.Writer) {
	fmt.Fprintf(w, "MagicID:     %s v%d\n", psid.MagicID[:], psid.Version)
	fmt.Fprintf(w, "LoadAddress: $%04X\n", psid.LoadAddress)
	fmt.Fprintf(w, "InitAddress: $%04X\n", psid.InitAddress)
	fmt.Fprintf(w, "PlayAddress: $%04X\n", psid.PlayAddress)
	fmt.Fprintf(w, "Songs:       %d (start %d)\n", psid.Songs, psid.StartSong)
	fmt.Fprintf(w, "Speed:       $%08X\n", psid.Speed)
	fmt.Fprintf(w, "Name:        %s\n", field(psid.Name))
	fmt.Fprintf(w, "Author:      %s\n", field(psid.Author))
	fmt.Fprintf(w, "Released:    %s\n", field(psid.Released))
	if psid.Version > 1 {
		fmt.Fprintf(w, "Model:       %s  Clock: %s\n", psid.Model(), psid.Clock())
	}
}

func field(b [32]byte) string {
	if i := bytes.IndexByte(b[:], 0); i >= 0 {
		return string(b[:i])
	}
	return string(b[:])
}

// Memory is the part of a 6502 address space LoadData needs.
type Memory interface {
	StoreBytes(addr uint16, b []byte)
}

// LoadData copies the program image to its load address.
func (t *Tune) LoadData(mem Memory) {
	mem.StoreBytes(t.Header.LoadAddress, t.Data)
}
