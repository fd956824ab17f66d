package snapshot

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// Container format constants
const (
	containerVersion    = 1
	containerMagic      = "SIDSNAP\x00"
	containerHeaderSize = 16 // magic(8) + version(2) + count(2) + dataCRC(4)
	moduleNameSize      = 16
	moduleHeaderSize    = moduleNameSize + 2 + 4 // name + major/minor + length
)

// Encode packs the modules into a single checksummed byte slice.
func Encode(mods []*Module) ([]byte, error) {
	if len(mods) > 0xffff {
		return nil, errors.New("snapshot: too many modules")
	}

	size := containerHeaderSize
	for _, m := range mods {
		if len(m.Name) > moduleNameSize {
			return nil, fmt.Errorf("snapshot: module name %q too long", m.Name)
		}
		size += moduleHeaderSize + len(m.Data)
	}

	data := make([]byte, size)
	copy(data[0:8], containerMagic)
	binary.LittleEndian.PutUint16(data[8:10], containerVersion)
	binary.LittleEndian.PutUint16(data[10:12], uint16(len(mods)))

	offset := containerHeaderSize
	for _, m := range mods {
		copy(data[offset:offset+moduleNameSize], m.Name)
		offset += moduleNameSize
		data[offset] = m.Major
		data[offset+1] = m.Minor
		binary.LittleEndian.PutUint32(data[offset+2:offset+6], uint32(len(m.Data)))
		offset += 6
		offset += copy(data[offset:], m.Data)
	}

	// Data CRC32 covers everything after the header
	binary.LittleEndian.PutUint32(data[12:16], crc32.ChecksumIEEE(data[containerHeaderSize:]))
	return data, nil
}

// Decode verifies and unpacks a container produced by Encode.
func Decode(data []byte) ([]*Module, error) {
	if len(data) < containerHeaderSize {
		return nil, fmt.Errorf("%w: container too short", ErrMalformed)
	}
	if string(data[0:8]) != containerMagic {
		return nil, fmt.Errorf("%w: invalid container magic", ErrMalformed)
	}
	version := binary.LittleEndian.Uint16(data[8:10])
	if version > containerVersion {
		return nil, fmt.Errorf("%w: container version %d", ErrUnsupportedVersion, version)
	}
	expectedCRC := binary.LittleEndian.Uint32(data[12:16])
	if crc32.ChecksumIEEE(data[containerHeaderSize:]) != expectedCRC {
		return nil, fmt.Errorf("%w: container data is corrupted", ErrMalformed)
	}

	count := int(binary.LittleEndian.Uint16(data[10:12]))
	mods := make([]*Module, 0, count)
	offset := containerHeaderSize
	for i := 0; i < count; i++ {
		if offset+moduleHeaderSize > len(data) {
			return nil, fmt.Errorf("%w: module %d header truncated", ErrMalformed, i)
		}
		name := data[offset : offset+moduleNameSize]
		n := 0
		for n < len(name) && name[n] != 0 {
			n++
		}
		m := &Module{Name: string(name[:n])}
		offset += moduleNameSize
		m.Major = data[offset]
		m.Minor = data[offset+1]
		length := int(binary.LittleEndian.Uint32(data[offset+2 : offset+6]))
		offset += 6
		if length < 0 || offset+length > len(data) {
			return nil, fmt.Errorf("%w: module %q data truncated", ErrMalformed, m.Name)
		}
		m.Data = append([]byte(nil), data[offset:offset+length]...)
		offset += length
		mods = append(mods, m)
	}
	return mods, nil
}

// Find returns the first module with the given name, or nil.
func Find(mods []*Module, name string) *Module {
	for _, m := range mods {
		if m.Name == name {
			return m
		}
	}
	return nil
}
