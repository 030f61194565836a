package interp

import (
	"encoding/binary"
	"fmt"
)

// nullGuard addresses below this are treated as null dereferences.
const nullGuard = 16

type memory struct {
	bytes []byte
	sp    uint64 // next free stack byte
	base  uint64 // start of the stack region
}

func newMemory(size int) *memory {
	return &memory{bytes: make([]byte, size), sp: nullGuard, base: nullGuard}
}

// place copies b into the static region below the stack and returns its address.
func (m *memory) place(b []byte) uint64 {
	addr := m.sp
	copy(m.bytes[addr:], b)
	m.sp = align(addr+uint64(len(b)), 8)
	m.base = m.sp
	return addr
}

func (m *memory) alloc(size, alignment int) (uint64, error) {
	addr := align(m.sp, uint64(max(alignment, 1)))
	end := addr + uint64(size)
	if end > uint64(len(m.bytes)) {
		return 0, fmt.Errorf("stack overflow")
	}
	clear(m.bytes[addr:end])
	m.sp = end
	return addr, nil
}

func (m *memory) check(addr uint64, size int) error {
	if addr < nullGuard {
		return fmt.Errorf("null pointer dereference")
	}
	if addr+uint64(size) > uint64(len(m.bytes)) {
		return fmt.Errorf("invalid memory access at 0x%x", addr)
	}
	return nil
}

func (m *memory) read(addr uint64, size int) (uint64, error) {
	if err := m.check(addr, size); err != nil {
		return 0, err
	}
	b := m.bytes[addr : addr+uint64(size)]
	switch size {
	case 1:
		return uint64(b[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	case 8:
		return binary.LittleEndian.Uint64(b), nil
	}
	return 0, fmt.Errorf("unsupported load size %d", size)
}

func (m *memory) write(addr uint64, size int, v uint64) error {
	if err := m.check(addr, size); err != nil {
		return err
	}
	b := m.bytes[addr : addr+uint64(size)]
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	default:
		return fmt.Errorf("unsupported store size %d", size)
	}
	return nil
}

func (m *memory) move(dst, src uint64, size int) error {
	if err := m.check(dst, size); err != nil {
		return err
	}
	if err := m.check(src, size); err != nil {
		return err
	}
	copy(m.bytes[dst:dst+uint64(size)], m.bytes[src:src+uint64(size)])
	return nil
}

// cstring reads a NUL terminated string.
func (m *memory) cstring(addr uint64) (string, error) {
	if err := m.check(addr, 1); err != nil {
		return "", err
	}
	for end := addr; end < uint64(len(m.bytes)); end++ {
		if m.bytes[end] == 0 {
			return string(m.bytes[addr:end]), nil
		}
	}
	return "", fmt.Errorf("unterminated string at 0x%x", addr)
}

func align(v, a uint64) uint64 {
	if a <= 1 {
		return v
	}
	return (v + a - 1) / a * a
}
