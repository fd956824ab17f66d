package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/beevik/go6502/cpu"

	"yaspg/sidengine/engine"
	"yaspg/sidengine/psid"
	"yaspg/sidengine/shadow"
	"yaspg/sidengine/snapshot"
)

const (
	PAL_FRAMERATE  = 50
	NTSC_FRAMERATE = 60
	MAX_INSTR      = 0xFFFF

	// The chip clock is rebased once it passes this.
	clockRebase int64 = 1 << 32

	sidBase = 0xD400
	sidEnd  = 0xD7FF
)

type sidWrite struct {
	clock       int64
	addr, value uint8
}

// SidPlayer runs a tune's init and play routines on a 6502 and turns the
// chip register writes into samples. Render and the control methods may be
// called from different goroutines.
type SidPlayer struct {
	mu sync.Mutex

	sid  *engine.Handle
	mem  *FlatMemoryWithNotification
	cpu  *cpu.CPU
	tune *psid.Tune
	out  io.Writer

	currentSong int
	playAddress uint16
	clockFreq   int
	frameRate   int
	framePeriod int

	// clock is the chip cycle of the next sample, frameLeft the cycles
	// until the next play call.
	clock     int64
	frameLeft int
	// Writes from the running play routine, stamped with the chip cycle
	// they happen on.
	writes   []sidWrite
	cpuStart uint64
	inInit   bool
}

func NewSidPlayer(sid *engine.Handle, tune *psid.Tune, out io.Writer) *SidPlayer {
	player := &SidPlayer{sid: sid, tune: tune, out: out}
	player.clockFreq = sid.Config().ClockRate
	player.frameRate = PAL_FRAMERATE
	if player.clockFreq == ntscClock {
		player.frameRate = NTSC_FRAMERATE
	}
	player.framePeriod = player.clockFreq / player.frameRate
	player.mem = NewFlatMemoryWithNotification()
	player.mem.AttachIO(sidBase, sidEnd, player)
	player.cpu = cpu.NewCPU(cpu.NMOS, player.mem)
	return player
}

// Start resets the machine and runs the init routine of song, counted from
// 0. Songs out of range play the first one.
func (s *SidPlayer) Start(song int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(song)
}

func (s *SidPlayer) start(song int) {
	h := &s.tune.Header
	if song < 0 || song >= int(h.Songs) {
		song = 0
	}
	s.currentSong = song

	s.mem.Clear()
	s.tune.LoadData(s.mem)
	s.mem.StoreByte(0x01, 0x37)

	s.writes = s.writes[:0]
	s.sid.Reset(s.clock)
	s.frameLeft = 0
	s.frameRate = PAL_FRAMERATE
	if s.clockFreq == ntscClock {
		s.frameRate = NTSC_FRAMERATE
	}

	fmt.Fprintf(s.out, "Playing subtune %d of %d\n", song+1, h.Songs)
	s.inInit = true
	s.initCPU(h.InitAddress, uint8(song), 0, 0)
	for instr := 0; !s.runCPU(); instr++ {
		s.mem.StoreByte(0xD012, s.mem.LoadByte(0xD012)+1)
		if s.mem.LoadByte(0xD012) == 0 || (s.mem.LoadByte(0xD011)&0x80 != 0 && s.mem.LoadByte(0xD012) >= 0x38) {
			s.mem.StoreByte(0xD011, s.mem.LoadByte(0xD011)^0x80)
			s.mem.StoreByte(0xD012, 0)
		}
		if instr > MAX_INSTR {
			fmt.Fprintln(s.out, "Warning: CPU executed a high number of instructions in init, breaking")
			break
		}
	}
	s.inInit = false

	s.playAddress = h.PlayAddress
	if s.playAddress == 0 {
		fmt.Fprintln(s.out, "Warning: SID has play address 0, reading from interrupt vector instead")
		if s.mem.LoadByte(0x01)&0x07 == 0x5 {
			s.playAddress = s.mem.LoadAddress(0xFFFE)
		} else {
			s.playAddress = s.mem.LoadAddress(0x314)
		}
		fmt.Fprintf(s.out, "New play address is $%04X\n", s.playAddress)
	}

	s.updateFramePeriod()
	fmt.Fprintf(s.out, "cpu_clk: %d[Hz] frame period: %d cycles timing: %t\n",
		s.clockFreq, s.framePeriod, h.UsesCIA(song))
}

func (s *SidPlayer) updateFramePeriod() {
	if s.tune.Header.UsesCIA(s.currentSong) {
		if hi := s.mem.LoadByte(0xDC05); hi != 0 {
			s.framePeriod = int(s.mem.LoadByte(0xDC04)) | int(hi)<<8
			return
		}
		s.frameRate = NTSC_FRAMERATE
	}
	s.framePeriod = s.clockFreq / s.frameRate
}

func (s *SidPlayer) NextTune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.start(s.currentSong + 1)
}

func (s *SidPlayer) PrevTune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	song := s.currentSong - 1
	if song < 0 {
		song = int(s.tune.Header.Songs) - 1
	}
	s.start(song)
}

func (s *SidPlayer) DumpState(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(w, "subtune %d  clock %d  frame %d/%d  queued writes %d\n",
		s.currentSong+1, s.clock, s.framePeriod-s.frameLeft, s.framePeriod, len(s.writes))
	s.sid.DumpState(w)
}

func (s *SidPlayer) initCPU(newpc uint16, newa uint8, newx uint8, newy uint8) {
	s.cpu.SetPC(newpc)
	s.cpu.Reg.X = newx
	s.cpu.Reg.Y = newy
	s.cpu.Reg.A = newa
	s.cpu.Reg.SP = 0xFF
	s.cpuStart = s.cpu.Cycles
}

// Run CPU one step. Returns true if the routine is about to return to
// its caller.
func (s *SidPlayer) runCPU() bool {
	s.cpu.Step()

	opcode := s.mem.LoadByte(s.cpu.Reg.PC)
	inst := s.cpu.InstSet.Lookup(opcode)

	switch {
	case inst.Opcode == 0x00:
		return true
	case inst.Opcode == 0x40 && s.cpu.Reg.SP == 0xFF:
		return true
	case inst.Opcode == 0x60 && s.cpu.Reg.SP == 0xFF:
		return true
	default:
		return false
	}
}

// Tick runs the play routine once.
func (s *SidPlayer) Tick() {
	s.initCPU(s.playAddress, 0, 0, 0)

	for instr := 0; !s.runCPU(); instr++ {
		if instr > MAX_INSTR {
			fmt.Fprintln(s.out, "Warning: CPU executed a high number of instructions in play, breaking")
			break
		}
		// Jump into the Kernal interrupt handler exit
		if s.mem.LoadByte(0x01)&0x07 != 0x5 && (s.cpu.Reg.PC == 0xEA31 || s.cpu.Reg.PC == 0xEA81) {
			break
		}
	}

	if s.mem.LoadByte(0x01)&3 != 0 && s.tune.Header.UsesCIA(s.currentSong) {
		if period := int(s.mem.LoadByte(0xDC05))<<8 | int(s.mem.LoadByte(0xDC04)); period != 0 {
			s.framePeriod = period
		}
	}
}

// Render fills buf with samples, calling the play routine once per frame.
func (s *SidPlayer) Render(buf []int16) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos := 0
	for pos < len(buf) {
		if s.frameLeft == 0 {
			if s.clock >= clockRebase && len(s.writes) == 0 {
				s.sid.PreventClockOverflow(s.clock)
				s.clock = 0
			}
			s.Tick()
			s.frameLeft = s.framePeriod
		}

		for len(s.writes) > 0 && s.writes[0].clock <= s.clock {
			w := s.writes[0]
			s.sid.Store(w.addr, w.value, w.clock)
			s.writes = s.writes[1:]
		}

		cycles := s.frameLeft
		if len(s.writes) > 0 {
			cycles = min(cycles, int(s.writes[0].clock-s.clock))
		}
		delta := cycles
		pos += s.sid.CalculateSamples(buf[pos:], len(buf)-pos, 1, &delta)
		used := cycles - delta
		s.clock += int64(used)
		s.frameLeft -= used
	}
}

// cpuClock is the chip cycle the running routine has reached.
func (s *SidPlayer) cpuClock() int64 {
	if s.inInit {
		return s.clock
	}
	cycles := int64(s.cpu.Cycles - s.cpuStart)
	return s.clock + min(cycles, int64(s.framePeriod-1))
}

// OnWrite is called when the CPU stores to the SID. Writes from init take
// effect at once; play routine writes wait for their cycle.
func (s *SidPlayer) OnWrite(addr uint16, v byte) {
	reg := uint8(addr & 0x1f)
	if s.inInit {
		s.sid.Store(reg, v, s.clock)
		return
	}
	s.writes = append(s.writes, sidWrite{clock: s.cpuClock(), addr: reg, value: v})
}

// OnRead is called when the CPU loads from the SID. A write-only register
// reads back the last value written, which may still be queued.
func (s *SidPlayer) OnRead(addr uint16) byte {
	reg := uint8(addr & 0x1f)
	if reg < 0x19 && len(s.writes) > 0 {
		// the chip has not seen the write yet, so fade it here
		last := s.writes[len(s.writes)-1]
		var b shadow.Bus
		b.Store(last.value, last.clock)
		return b.Read(s.cpuClock())
	}
	return s.sid.Read(reg, s.cpuClock())
}

const (
	playerStateName  = "PLAYER"
	playerStateMajor = 1
	playerStateMinor = 0
)

// SaveState captures the chip, the C64 memory and the player timing.
func (s *SidPlayer) SaveState() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := snapshot.NewWriter(playerStateName, playerStateMajor, playerStateMinor)
	w.Word(uint16(s.currentSong))
	w.Word(s.playAddress)
	w.Byte(uint8(s.frameRate))
	w.Dword(uint32(s.framePeriod))
	w.Dword(uint32(s.frameLeft))
	w.Qword(uint64(s.clock))
	w.Bytes(s.mem.b[:])
	w.Dword(uint32(len(s.writes)))
	for _, wr := range s.writes {
		w.Qword(uint64(wr.clock))
		w.Byte(wr.addr)
		w.Byte(wr.value)
	}

	return snapshot.Encode([]*snapshot.Module{s.sid.StateRead(), w.Module()})
}

// LoadState restores a SaveState image taken with the same engine. Nothing
// changes when it is rejected.
func (s *SidPlayer) LoadState(data []byte) error {
	mods, err := snapshot.Decode(data)
	if err != nil {
		return err
	}
	r, err := snapshot.NewReader(snapshot.Find(mods, playerStateName), playerStateName, playerStateMajor)
	if err != nil {
		return err
	}

	song := int(r.Word())
	playAddress := r.Word()
	frameRate := int(r.Byte())
	framePeriod := int(r.Dword())
	frameLeft := int(r.Dword())
	clock := int64(r.Qword())
	var ram [64 * 1024]byte
	r.Bytes(ram[:])
	n := int(r.Dword())
	if r.Err() == nil && n > r.Len()/10 {
		return fmt.Errorf("%w: %d queued writes", snapshot.ErrMalformed, n)
	}
	writes := make([]sidWrite, n)
	for i := range writes {
		writes[i] = sidWrite{clock: int64(r.Qword()), addr: r.Byte(), value: r.Byte()}
	}
	if err := r.Err(); err != nil {
		return err
	}
	if song >= int(s.tune.Header.Songs) || framePeriod <= 0 || frameLeft < 0 || frameLeft > framePeriod || frameRate == 0 {
		return fmt.Errorf("%w: player timing out of range", snapshot.ErrMalformed)
	}

	var sidState *snapshot.Module
	for _, m := range mods {
		if m.Name != playerStateName {
			sidState = m
		}
	}
	if sidState == nil {
		return fmt.Errorf("%w: no chip record", snapshot.ErrMalformed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sid.StateWrite(sidState); err != nil {
		return err
	}
	s.currentSong = song
	s.playAddress = playAddress
	s.frameRate = frameRate
	s.framePeriod = framePeriod
	s.frameLeft = frameLeft
	s.clock = clock
	s.mem.b = ram
	s.writes = writes
	return nil
}

// IOHandler serves CPU accesses to an I/O window.
type IOHandler interface {
	OnRead(addr uint16) byte
	OnWrite(addr uint16, v byte)
}

// FlatMemoryWithNotification is the 64K C64 address space. Accesses to the
// attached I/O window go to its handler while $01 maps I/O in.
type FlatMemoryWithNotification struct {
	b          [64 * 1024]byte
	io         IOHandler
	ioLo, ioHi uint16
}

func NewFlatMemoryWithNotification() *FlatMemoryWithNotification {
	mem := FlatMemoryWithNotification{}
	return &mem
}

// AttachIO routes loads and stores in [lo, hi] to handler.
func (m *FlatMemoryWithNotification) AttachIO(lo, hi uint16, handler IOHandler) {
	m.io, m.ioLo, m.ioHi = handler, lo, hi
}

func (m *FlatMemoryWithNotification) Clear() {
	m.b = [64 * 1024]byte{}
}

// inIO reports whether addr is in the I/O window and I/O is banked in:
// CHAREN set and at least one of LORAM and HIRAM.
func (m *FlatMemoryWithNotification) inIO(addr uint16) bool {
	return m.io != nil && addr >= m.ioLo && addr <= m.ioHi && m.b[1]&4 != 0 && m.b[1]&3 != 0
}

// LoadByte loads a single byte from the address and returns it.
func (m *FlatMemoryWithNotification) LoadByte(addr uint16) byte {
	if m.inIO(addr) {
		return m.io.OnRead(addr)
	}
	return m.b[addr]
}

// LoadBytes loads multiple bytes from the address and returns them. Bytes
// past the end of memory read as zero.
func (m *FlatMemoryWithNotification) LoadBytes(addr uint16, b []byte) {
	n := copy(b, m.b[addr:])
	clear(b[n:])
}

// LoadAddress loads a 16-bit address value from the requested address and
// returns it.
//
// When the address spans 2 pages (i.e., address ends in 0xff), the high
// byte comes from the start of the same page, as on the NMOS 6502.
func (m *FlatMemoryWithNotification) LoadAddress(addr uint16) uint16 {
	if (addr & 0xff) == 0xff {
		return uint16(m.b[addr]) | uint16(m.b[addr-0xff])<<8
	}
	return uint16(m.b[addr]) | uint16(m.b[addr+1])<<8
}

// StoreByte stores a byte at the requested address. RAM under the I/O
// window is written as well.
func (m *FlatMemoryWithNotification) StoreByte(addr uint16, v byte) {
	mapped := m.inIO(addr)
	m.b[addr] = v
	if mapped {
		m.io.OnWrite(addr, v)
	}
}

// StoreBytes stores multiple bytes to the requested address without
// notifying the I/O handler.
func (m *FlatMemoryWithNotification) StoreBytes(addr uint16, b []byte) {
	copy(m.b[addr:], b)
}

// StoreAddress stores a 16-bit address value to the requested address.
func (m *FlatMemoryWithNotification) StoreAddress(addr uint16, v uint16) {
	m.b[addr] = byte(v & 0xff)
	if (addr & 0xff) == 0xff {
		m.b[addr-0xff] = byte(v >> 8)
	} else {
		m.b[addr+1] = byte(v >> 8)
	}
}
