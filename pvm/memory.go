// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pvm

import "encoding/binary"

// PageSize is the fixed page granularity of the address space (spec §4.4
// "Memory model": "a sparse map of 4 KiB pages").
const PageSize = 4096

// Access is a page's permitted operation set.
type Access int

const (
	None Access = iota
	ReadOnly
	ReadWrite
)

type page struct {
	access Access
	data   [PageSize]byte
}

// Memory is the PVM's sparse paged address space (spec §3 "PVM state").
// Pages are allocated lazily; an untouched page behaves as NONE and
// uninitialized until InitPage is called for it.
type Memory struct {
	pages map[uint32]*page
}

// NewMemory returns an empty address space.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*page)}
}

// FaultError reports the faulting address of a memory access violation
// (spec §4.4 step 5: "on invalid memory access -> status=FAULT,
// exitArg=faultAddr").
type FaultError struct {
	Addr uint32
}

func (e *FaultError) Error() string {
	return "pvm: memory fault"
}

// InitPage initializes the page containing addr (and every subsequent
// page through addr+len) with the given access mode. Used during program
// setup (roData/rwData/stack/args regions) and, per spec §4.4, allowed
// irrespective of runtime access class: "During block initialization the
// node may write any initialized page irrespective of its runtime access
// class."
func (m *Memory) InitPage(addr uint32, length int, access Access) {
	start := addr / PageSize
	end := (addr + uint32(length) + PageSize - 1) / PageSize
	for idx := start; idx < end; idx++ {
		if _, ok := m.pages[idx]; !ok {
			m.pages[idx] = &page{}
		}
		m.pages[idx].access = access
	}
}

// WriteInit writes data directly into memory during setup, bypassing the
// runtime write-access check (spec §4.4's initialization carve-out),
// expanding pages as needed.
func (m *Memory) WriteInit(addr uint32, data []byte) {
	m.InitPage(addr, len(data), ReadWrite)
	m.rawWrite(addr, data)
}

func (m *Memory) rawWrite(addr uint32, data []byte) {
	off := 0
	for off < len(data) {
		pageIdx := (addr + uint32(off)) / PageSize
		pageOff := (addr + uint32(off)) % PageSize
		p := m.pages[pageIdx]
		if p == nil {
			p = &page{}
			m.pages[pageIdx] = p
		}
		n := PageSize - int(pageOff)
		if n > len(data)-off {
			n = len(data) - off
		}
		copy(p.data[pageOff:], data[off:off+n])
		off += n
	}
}

// checkRange verifies every byte in [addr, addr+length) lies in an
// initialized page satisfying need (spec §4.4: loads/stores "must lie
// entirely within a single page; crossing a page boundary is permitted
// only when both pages satisfy the access requirement and are
// initialized").
func (m *Memory) checkRange(addr uint32, length int, need Access) error {
	for off := 0; off < length; {
		pageIdx := (addr + uint32(off)) / PageSize
		p, ok := m.pages[pageIdx]
		if !ok || p.access < need {
			return &FaultError{Addr: addr}
		}
		pageOff := int((addr + uint32(off)) % PageSize)
		n := PageSize - pageOff
		if n > length-off {
			n = length - off
		}
		off += n
	}
	return nil
}

// Load reads width bytes (1, 2, 4, or 8) at addr, little-endian.
func (m *Memory) Load(addr uint32, width int) ([]byte, error) {
	if err := m.checkRange(addr, width, ReadOnly); err != nil {
		return nil, err
	}
	out := make([]byte, width)
	off := 0
	for off < width {
		pageIdx := (addr + uint32(off)) / PageSize
		pageOff := (addr + uint32(off)) % PageSize
		p := m.pages[pageIdx]
		n := PageSize - int(pageOff)
		if n > width-off {
			n = width - off
		}
		copy(out[off:off+n], p.data[pageOff:int(pageOff)+n])
		off += n
	}
	return out, nil
}

// LoadUint loads an unsigned little-endian integer of the given width.
func (m *Memory) LoadUint(addr uint32, width int) (uint64, error) {
	b, err := m.Load(addr, width)
	if err != nil {
		return 0, err
	}
	var v uint64
	switch width {
	case 1:
		v = uint64(b[0])
	case 2:
		v = uint64(binary.LittleEndian.Uint16(b))
	case 4:
		v = uint64(binary.LittleEndian.Uint32(b))
	case 8:
		v = binary.LittleEndian.Uint64(b)
	}
	return v, nil
}

// LoadInt loads a little-endian integer of the given width and sign-
// extends it to 64 bits (spec §4.4 "Signed loads sign-extend to 64
// bits").
func (m *Memory) LoadInt(addr uint32, width int) (int64, error) {
	v, err := m.LoadUint(addr, width)
	if err != nil {
		return 0, err
	}
	switch width {
	case 1:
		return int64(int8(v)), nil
	case 2:
		return int64(int16(v)), nil
	case 4:
		return int64(int32(v)), nil
	default:
		return int64(v), nil
	}
}

// Store writes width bytes of v, little-endian, at addr.
func (m *Memory) Store(addr uint32, v uint64, width int) error {
	if err := m.checkRange(addr, width, ReadWrite); err != nil {
		return err
	}
	b := make([]byte, width)
	switch width {
	case 1:
		b[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(v))
	case 8:
		binary.LittleEndian.PutUint64(b, v)
	}
	m.rawWrite(addr, b)
	return nil
}

// StoreBytes writes raw bytes at addr, used by host calls (READ/LOOKUP
// results) that write variable-length data rather than a fixed-width
// integer.
func (m *Memory) StoreBytes(addr uint32, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if err := m.checkRange(addr, len(data), ReadWrite); err != nil {
		return err
	}
	m.rawWrite(addr, data)
	return nil
}

// ReadBytes reads raw bytes at addr, used by host calls that consume
// caller-supplied buffers (keys, values, payloads).
func (m *Memory) ReadBytes(addr uint32, length int) ([]byte, error) {
	return m.Load(addr, length)
}
