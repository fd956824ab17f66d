// Package snapshot encodes emulator state as named, versioned module records
// and packs several records into a checksummed container.
package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnsupportedVersion is returned for records with a newer major version
	// than the reader understands.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported module version")

	// ErrMalformed is returned for truncated or otherwise inconsistent records.
	ErrMalformed = errors.New("snapshot: malformed module")
)

// Module is one named, versioned record. Data is little endian.
type Module struct {
	Name  string
	Major uint8
	Minor uint8
	Data  []byte
}

// boolByte converts a bool to a uint8 (0 or 1).
func boolByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// Writer appends fields to a new module.
type Writer struct {
	m Module
}

func NewWriter(name string, major, minor uint8) *Writer {
	return &Writer{m: Module{Name: name, Major: major, Minor: minor}}
}

func (w *Writer) Byte(v uint8) {
	w.m.Data = append(w.m.Data, v)
}

func (w *Writer) Bool(v bool) {
	w.Byte(boolByte(v))
}

func (w *Writer) Word(v uint16) {
	w.m.Data = binary.LittleEndian.AppendUint16(w.m.Data, v)
}

func (w *Writer) Dword(v uint32) {
	w.m.Data = binary.LittleEndian.AppendUint32(w.m.Data, v)
}

func (w *Writer) Qword(v uint64) {
	w.m.Data = binary.LittleEndian.AppendUint64(w.m.Data, v)
}

func (w *Writer) Float32(v float32) {
	w.Dword(math.Float32bits(v))
}

func (w *Writer) Float64(v float64) {
	w.Qword(math.Float64bits(v))
}

func (w *Writer) Bytes(b []byte) {
	w.m.Data = append(w.m.Data, b...)
}

// Module returns the finished record.
func (w *Writer) Module() *Module {
	m := w.m
	return &m
}

// Reader consumes fields from a module in the order they were written. The
// first short read sets a sticky error and all later reads return zero.
type Reader struct {
	m   *Module
	off int
	err error
}

// NewReader checks the record name and major version before any field is
// consumed, so callers can reject a record without touching their state.
func NewReader(m *Module, name string, major uint8) (*Reader, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: missing %s record", ErrMalformed, name)
	}
	if m.Name != name {
		return nil, fmt.Errorf("%w: record %q, want %q", ErrMalformed, m.Name, name)
	}
	if m.Major > major {
		return nil, fmt.Errorf("%w: %s %d.%d, newest known major %d", ErrUnsupportedVersion, name, m.Major, m.Minor, major)
	}
	return &Reader{m: m}, nil
}

func (r *Reader) Minor() uint8 {
	return r.m.Minor
}

// Len is the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.m.Data) - r.off
}

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.m.Data) {
		r.err = fmt.Errorf("%w: %s truncated at byte %d", ErrMalformed, r.m.Name, r.off)
		return nil
	}
	b := r.m.Data[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Byte() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) Bool() bool {
	return r.Byte() != 0
}

func (r *Reader) Word() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) Dword() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) Qword() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) Float32() float32 {
	return math.Float32frombits(r.Dword())
}

func (r *Reader) Float64() float64 {
	return math.Float64frombits(r.Qword())
}

// Bytes fills b from the record.
func (r *Reader) Bytes(b []byte) {
	src := r.take(len(b))
	if src != nil {
		copy(b, src)
	}
}

// Err reports the first short read, if any.
func (r *Reader) Err() error {
	return r.err
}
