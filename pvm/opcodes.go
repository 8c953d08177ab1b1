// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pvm

// Opcode identifies a single-byte instruction (spec §4.4 "Instruction set
// (summary)"). TRAP, FALLTHROUGH, and ECALLI are pinned to the byte
// values the spec names explicitly; every other opcode's numeric value is
// an engineering choice (the spec gives only a class summary, not a full
// encoding table) documented here rather than in the Gray Paper's own
// bit-packed scheme, which no example in the corpus implements.
type Opcode byte

const (
	TRAP        Opcode = 0
	FALLTHROUGH Opcode = 1

	JUMP         Opcode = 2
	JUMPIND      Opcode = 3
	LOADIMMJUMP  Opcode = 4
	BranchEqImm  Opcode = 5
	BranchNeImm  Opcode = 6
	BranchLtUImm Opcode = 7
	BranchLeUImm Opcode = 8
	BranchGeUImm Opcode = 9

	ECALLI Opcode = 10

	BranchGtUImm Opcode = 11
	BranchLtSImm Opcode = 12
	BranchLeSImm Opcode = 13
	BranchGeSImm Opcode = 14
	BranchGtSImm Opcode = 15

	LoadImm64 Opcode = 16
	LoadImm   Opcode = 17
	MoveReg   Opcode = 18
	AddImm64  Opcode = 19
	Sbrk      Opcode = 20

	LoadU8  Opcode = 21
	LoadU16 Opcode = 22
	LoadU32 Opcode = 23
	LoadU64 Opcode = 24
	LoadI8  Opcode = 25
	LoadI16 Opcode = 26
	LoadI32 Opcode = 27

	StoreU8  Opcode = 28
	StoreU16 Opcode = 29
	StoreU32 Opcode = 30
	StoreU64 Opcode = 31

	StoreImmU8  Opcode = 32
	StoreImmU16 Opcode = 33
	StoreImmU32 Opcode = 34
	StoreImmU64 Opcode = 35

	And Opcode = 36
	Or  Opcode = 37
	Xor Opcode = 38
	Add Opcode = 39
	Sub Opcode = 40
	Shl Opcode = 41
	Shr Opcode = 42
	Mul Opcode = 43
	DivU Opcode = 44
	DivS Opcode = 45
	RemU Opcode = 46
	RemS Opcode = 47

	AddW  Opcode = 48
	SubW  Opcode = 49
	MulW  Opcode = 50
	DivUW Opcode = 51
	DivSW Opcode = 52
	RemUW Opcode = 53
	RemSW Opcode = 54
	ShlW  Opcode = 55
	ShrW  Opcode = 56
)

// gasCost returns the gas charge for op (spec §4.4 step 3: "charge gas
// (instruction-class table; ECALLI is 10)" — the only cost the spec pins
// a number to; every other opcode is charged the uniform base cost).
func gasCost(op Opcode) int64 {
	if op == ECALLI {
		return 10
	}
	return 1
}

// NumRegisters is the PVM's general-purpose register count (spec §3).
const NumRegisters = 13
