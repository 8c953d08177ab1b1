// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pvm

import (
	"errors"

	"github.com/luxfi/jam/codec"
)

// ErrInvalidProgram is returned when a program blob fails to parse.
var ErrInvalidProgram = errors.New("pvm: invalid program blob")

// Program is the parsed ("deblobbed") form of a code blob (spec §4.4
// "Program parse"): the raw code, an instruction-start bitmask, a jump
// table of fixed-width entries, and the jump table's element width.
type Program struct {
	CodeLength  uint32
	Code        []byte
	Bitmask     []byte // packed bits, bit i of byte i/8 set iff code[i] starts an instruction
	JumpTable   []uint32
	ElementSize uint8
}

// Parse decodes a program blob per the schema in spec §4.1's table:
// E_nat(|J|) ‖ E1(z) ‖ E_nat(|c|) ‖ E_z(J) ‖ c ‖ k, where J is the jump
// table, z its element width, c the code, and k the trailing
// instruction-start bitmask (ceil(|c|/8) bytes).
func Parse(blob []byte) (Program, error) {
	r := codec.NewReader(blob)

	jumpLen, err := r.ReadNat()
	if err != nil {
		return Program{}, err
	}
	z, err := r.ReadByte()
	if err != nil {
		return Program{}, err
	}
	if z != 1 && z != 2 && z != 4 && z != 8 {
		return Program{}, ErrInvalidProgram
	}
	codeLen, err := r.ReadNat()
	if err != nil {
		return Program{}, err
	}

	jumpTable := make([]uint32, jumpLen)
	for i := range jumpTable {
		v, err := r.ReadFixed(int(z))
		if err != nil {
			return Program{}, err
		}
		jumpTable[i] = uint32(v)
	}

	code, err := r.ReadBytes(int(codeLen))
	if err != nil {
		return Program{}, err
	}

	bitmaskLen := (int(codeLen) + 7) / 8
	bitmask, err := r.ReadBytes(bitmaskLen)
	if err != nil {
		return Program{}, err
	}

	return Program{
		CodeLength:  uint32(codeLen),
		Code:        append([]byte(nil), code...),
		Bitmask:     append([]byte(nil), bitmask...),
		JumpTable:   jumpTable,
		ElementSize: z,
	}, nil
}

// isInstructionStart reports whether offset i in Code begins an
// instruction, per the parsed bitmask. Offsets at or beyond CodeLength
// are treated as instruction boundaries (end of code).
func (p Program) isInstructionStart(i int) bool {
	if i >= int(p.CodeLength) {
		return true
	}
	if i < 0 {
		return false
	}
	byteIdx, bitIdx := i/8, uint(i%8)
	if byteIdx >= len(p.Bitmask) {
		return true
	}
	return p.Bitmask[byteIdx]&(1<<bitIdx) != 0
}

// Fskip returns the operand-length skip for the instruction starting at
// pc: min{j in [1,24] : bitmask[pc+j]=1} - 1, or 24 if no such j exists
// (spec §4.4).
func (p Program) Fskip(pc int) int {
	for j := 1; j <= 24; j++ {
		if p.isInstructionStart(pc + j) {
			return j - 1
		}
	}
	return 24
}
