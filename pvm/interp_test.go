// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pvm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// instr is one (opcode, operand) pair used to hand-assemble a test
// program without going through the var-nat program-blob encoding.
type instr struct {
	op      Opcode
	operand []byte
}

func assemble(instrs []instr) Program {
	var code []byte
	var starts []int
	for _, in := range instrs {
		starts = append(starts, len(code))
		code = append(code, byte(in.op))
		code = append(code, in.operand...)
	}
	bitmask := make([]byte, (len(code)+7)/8)
	for _, s := range starts {
		bitmask[s/8] |= 1 << uint(s%8)
	}
	return Program{
		CodeLength: uint32(len(code)),
		Code:       code,
		Bitmask:    bitmask,
	}
}

func TestFskipFindsNextInstruction(t *testing.T) {
	prog := assemble([]instr{
		{op: LoadImm, operand: []byte{1, 5}},
		{op: TRAP},
	})
	require.Equal(t, 2, prog.Fskip(0))
	require.Equal(t, 0, prog.Fskip(3)) // the end of code counts as the next instruction start
}

func TestStepLoadImmAndAdd(t *testing.T) {
	prog := assemble([]instr{
		{op: LoadImm, operand: []byte{1, 5}},
		{op: LoadImm, operand: []byte{2, 7}},
		{op: Add, operand: []byte{3, 1, 2}},
		{op: TRAP},
	})
	s := NewState(1000)
	Run(s, prog)
	require.Equal(t, PANIC, s.Status)
	require.Equal(t, uint64(12), s.Registers[3])
}

func TestStepDivisionByZeroIsDefined(t *testing.T) {
	prog := assemble([]instr{
		{op: LoadImm, operand: []byte{1, 10}},
		{op: LoadImm, operand: []byte{2, 0}},
		{op: DivU, operand: []byte{3, 1, 2}},
		{op: RemU, operand: []byte{4, 1, 2}},
		{op: TRAP},
	})
	s := NewState(1000)
	Run(s, prog)
	require.Equal(t, ^uint64(0), s.Registers[3])
	require.Equal(t, uint64(10), s.Registers[4])
}

func TestGasBasicConsumeAll(t *testing.T) {
	// A tight loop of single-gas instructions run with a gas budget
	// smaller than the program requires must terminate OOG rather than
	// ever observing a negative-but-unreported gas counter.
	var instrs []instr
	for i := 0; i < 20; i++ {
		instrs = append(instrs, instr{op: FALLTHROUGH})
	}
	prog := assemble(instrs)

	s := NewState(5)
	Run(s, prog)
	require.Equal(t, OOG, s.Status)
	require.Less(t, s.Gas, int64(0))
}

func TestStepMemoryFaultOnUninitializedPage(t *testing.T) {
	prog := assemble([]instr{
		{op: LoadImm, operand: []byte{1, 0}},
		{op: LoadU8, operand: []byte{2, 1, 0}},
		{op: TRAP},
	})
	s := NewState(1000)
	Run(s, prog)
	require.Equal(t, FAULT, s.Status)
	require.Equal(t, uint64(0), s.ExitArg)
}

func TestStepMemoryStoreThenLoadRoundTrip(t *testing.T) {
	prog := assemble([]instr{
		{op: LoadImm, operand: []byte{1, 0}},       // r1 = 0 (base addr)
		{op: LoadImm, operand: []byte{2, 0x2a}},     // r2 = 42
		{op: StoreU32, operand: []byte{1, 2, 0}},    // mem[r1+0] = r2
		{op: LoadU32, operand: []byte{3, 1, 0}},     // r3 = mem[r1+0]
		{op: TRAP},
	})
	s := NewState(1000)
	s.Memory.InitPage(0, PageSize, ReadWrite)
	Run(s, prog)
	require.Equal(t, PANIC, s.Status)
	require.Equal(t, uint64(42), s.Registers[3])
}

func TestStepBranchTaken(t *testing.T) {
	// r1 = 5; if r1 == 5 jump +2 instructions (skip the TRAP), else fall
	// into TRAP.
	prog := assemble([]instr{
		{op: LoadImm, operand: []byte{1, 5}},
		{op: BranchEqImm, operand: append([]byte{1, 5, 0, 0, 0}, byte(8))},
		{op: TRAP},
		{op: FALLTHROUGH},
	})
	s := NewState(1000)
	Run(s, prog)
	require.Equal(t, HALT, s.Status)
}

func TestStepECALLISuspendsWithHostID(t *testing.T) {
	prog := assemble([]instr{
		{op: ECALLI, operand: []byte{7}},
		{op: TRAP},
	})
	s := NewState(1000)
	Run(s, prog)
	require.Equal(t, HOST, s.Status)
	require.Equal(t, uint64(7), s.ExitArg)

	s.Status = OK
	Run(s, prog)
	require.Equal(t, PANIC, s.Status)
}
