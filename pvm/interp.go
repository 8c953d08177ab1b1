// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pvm

// State is the full PVM execution state (spec §3 "PVM state").
type State struct {
	PC        uint32
	Registers [NumRegisters]uint64
	Gas       int64
	Memory    *Memory
	Status    Status
	ExitArg   uint64

	heapBreak uint32
}

// NewState returns a State ready to execute prog from pc 0 with the given
// initial gas budget.
func NewState(gas int64) *State {
	return &State{Gas: gas, Memory: NewMemory(), Status: OK}
}

// Run steps the interpreter until Status leaves OK (spec §4.4 "Execution
// loop"). Callers resume after a HOST suspension by setting Status back
// to OK (after delivering the result to r7, per the Host ABI calling
// convention) and calling Run again.
func Run(s *State, prog Program) {
	for s.Status == OK {
		Step(s, prog)
	}
}

// Step executes exactly one instruction, per spec §4.4's five-step
// execution loop.
func Step(s *State, prog Program) {
	if s.Gas < 0 {
		s.Status = OOG
		return
	}
	if s.PC >= prog.CodeLength {
		s.Status = HALT
		return
	}

	op := Opcode(prog.Code[s.PC])
	skip := prog.Fskip(int(s.PC))
	opStart := int(s.PC) + 1
	opEnd := opStart + skip
	if opEnd > len(prog.Code) {
		opEnd = len(prog.Code)
	}
	operand := prog.Code[opStart:opEnd]

	s.Gas -= gasCost(op)
	if s.Gas < 0 {
		s.Status = OOG
		return
	}

	nextPC := s.PC + 1 + uint32(skip)
	execute(s, prog, op, operand, nextPC)
}

func execute(s *State, prog Program, op Opcode, operand []byte, nextPC uint32) {
	reg := func(i int) int {
		if i < 0 || i >= NumRegisters {
			return 0
		}
		return i
	}

	switch op {
	case TRAP:
		s.Status = PANIC
		return

	case FALLTHROUGH:
		s.PC = nextPC
		return

	case JUMP:
		imm := signExtend(operand)
		s.jumpTo(prog, uint32(int64(s.PC)+imm), nextPC)
		return

	case JUMPIND:
		base, imm := operand1Imm(operand)
		target := uint32(int64(s.Registers[reg(base)]) + imm)
		s.jumpTo(prog, target, nextPC)
		return

	case LOADIMMJUMP:
		dest, rest := splitReg(operand)
		var value int64
		var jumpImm int64
		if len(rest) >= 8 {
			value = int64(le64(rest[:8]))
			jumpImm = signExtend(rest[8:])
		} else {
			value = signExtend(rest)
		}
		s.Registers[reg(dest)] = uint64(value)
		s.jumpTo(prog, uint32(int64(s.PC)+jumpImm), nextPC)
		return

	case BranchEqImm, BranchNeImm, BranchLtUImm, BranchLeUImm, BranchGeUImm,
		BranchGtUImm, BranchLtSImm, BranchLeSImm, BranchGeSImm, BranchGtSImm:
		r, rest := splitReg(operand)
		var cmpImm int64
		var jumpImm int64
		if len(rest) >= 4 {
			cmpImm = signExtend(rest[:4])
			jumpImm = signExtend(rest[4:])
		} else {
			cmpImm = signExtend(rest)
		}
		if branchTaken(op, s.Registers[reg(r)], cmpImm) {
			s.jumpTo(prog, uint32(int64(s.PC)+jumpImm), nextPC)
			return
		}
		s.PC = nextPC
		return

	case ECALLI:
		hostID := signExtendUnsigned(operand)
		s.PC = nextPC
		s.Status = HOST
		s.ExitArg = hostID
		return

	case LoadImm64:
		dest, rest := splitReg(operand)
		var v uint64
		if len(rest) >= 8 {
			v = le64(rest[:8])
		} else {
			v = uint64(signExtend(rest))
		}
		s.Registers[reg(dest)] = v
		s.PC = nextPC
		return

	case LoadImm:
		dest, rest := splitReg(operand)
		s.Registers[reg(dest)] = uint64(signExtend(rest))
		s.PC = nextPC
		return

	case MoveReg:
		dest, src := two(operand)
		s.Registers[reg(dest)] = s.Registers[reg(src)]
		s.PC = nextPC
		return

	case AddImm64:
		dest, src, imm := regRegImm(operand)
		s.Registers[reg(dest)] = s.Registers[reg(src)] + uint64(imm)
		s.PC = nextPC
		return

	case Sbrk:
		dest, src := two(operand)
		old := s.heapBreak
		size := uint32(s.Registers[reg(src)])
		s.Memory.InitPage(old, int(size), ReadWrite)
		s.heapBreak += size
		s.Registers[reg(dest)] = uint64(old)
		s.PC = nextPC
		return

	case LoadU8, LoadU16, LoadU32, LoadU64, LoadI8, LoadI16, LoadI32:
		dest, base, offset := regRegImm(operand)
		addr := uint32(int64(s.Registers[reg(base)]) + offset)
		width := loadWidth(op)
		var v uint64
		var err error
		if op == LoadI8 || op == LoadI16 || op == LoadI32 {
			var sv int64
			sv, err = s.Memory.LoadInt(addr, width)
			v = uint64(sv)
		} else {
			v, err = s.Memory.LoadUint(addr, width)
		}
		if err != nil {
			s.fault(addr)
			return
		}
		s.Registers[reg(dest)] = v
		s.PC = nextPC
		return

	case StoreU8, StoreU16, StoreU32, StoreU64:
		base, src, offset := regRegImm(operand)
		addr := uint32(int64(s.Registers[reg(base)]) + offset)
		width := storeWidth(op)
		if err := s.Memory.Store(addr, s.Registers[reg(src)], width); err != nil {
			s.fault(addr)
			return
		}
		s.PC = nextPC
		return

	case StoreImmU8, StoreImmU16, StoreImmU32, StoreImmU64:
		base, rest := splitReg(operand)
		var offsetImm, value int64
		if len(rest) >= 4 {
			offsetImm = signExtend(rest[:4])
			value = signExtend(rest[4:])
		} else {
			offsetImm = signExtend(rest)
		}
		addr := uint32(int64(s.Registers[reg(base)]) + offsetImm)
		width := storeImmWidth(op)
		if err := s.Memory.Store(addr, uint64(value), width); err != nil {
			s.fault(addr)
			return
		}
		s.PC = nextPC
		return

	case And, Or, Xor, Add, Sub, Shl, Shr, Mul, DivU, DivS, RemU, RemS,
		AddW, SubW, MulW, DivUW, DivSW, RemUW, RemSW, ShlW, ShrW:
		dest, a, b := three(operand)
		s.Registers[reg(dest)] = alu(op, s.Registers[reg(a)], s.Registers[reg(b)])
		s.PC = nextPC
		return

	default:
		s.Status = PANIC
		return
	}
}

func (s *State) jumpTo(prog Program, target uint32, fallback uint32) {
	if target >= prog.CodeLength || !prog.isInstructionStart(int(target)) {
		s.Status = PANIC
		return
	}
	s.PC = target
}

func (s *State) fault(addr uint32) {
	s.Status = FAULT
	s.ExitArg = uint64(addr)
}

func loadWidth(op Opcode) int {
	switch op {
	case LoadU8, LoadI8:
		return 1
	case LoadU16, LoadI16:
		return 2
	case LoadU32, LoadI32:
		return 4
	default:
		return 8
	}
}

func storeWidth(op Opcode) int {
	switch op {
	case StoreU8:
		return 1
	case StoreU16:
		return 2
	case StoreU32:
		return 4
	default:
		return 8
	}
}

func storeImmWidth(op Opcode) int {
	switch op {
	case StoreImmU8:
		return 1
	case StoreImmU16:
		return 2
	case StoreImmU32:
		return 4
	default:
		return 8
	}
}

func branchTaken(op Opcode, reg uint64, imm int64) bool {
	s := int64(reg)
	u := reg
	uImm := uint64(imm)
	switch op {
	case BranchEqImm:
		return s == imm
	case BranchNeImm:
		return s != imm
	case BranchLtUImm:
		return u < uImm
	case BranchLeUImm:
		return u <= uImm
	case BranchGeUImm:
		return u >= uImm
	case BranchGtUImm:
		return u > uImm
	case BranchLtSImm:
		return s < imm
	case BranchLeSImm:
		return s <= imm
	case BranchGeSImm:
		return s >= imm
	case BranchGtSImm:
		return s > imm
	default:
		return false
	}
}

// alu implements the bitwise/arithmetic class (spec §4.4: "Overflow wraps
// mod 2^64; division-by-zero produces defined deterministic results
// (quotient = all-ones of width, remainder = dividend)"). The W variants
// operate on the low 32 bits and sign-extend the result to 64, per RV64W
// semantics.
func alu(op Opcode, a, b uint64) uint64 {
	switch op {
	case And:
		return a & b
	case Or:
		return a | b
	case Xor:
		return a ^ b
	case Add:
		return a + b
	case Sub:
		return a - b
	case Shl:
		return a << (b & 63)
	case Shr:
		return a >> (b & 63)
	case Mul:
		return a * b
	case DivU:
		if b == 0 {
			return ^uint64(0)
		}
		return a / b
	case DivS:
		if b == 0 {
			return ^uint64(0)
		}
		return uint64(int64(a) / int64(b))
	case RemU:
		if b == 0 {
			return a
		}
		return a % b
	case RemS:
		if b == 0 {
			return a
		}
		return uint64(int64(a) % int64(b))
	case AddW:
		return signExtend32(uint32(a) + uint32(b))
	case SubW:
		return signExtend32(uint32(a) - uint32(b))
	case MulW:
		return signExtend32(uint32(a) * uint32(b))
	case DivUW:
		if uint32(b) == 0 {
			return ^uint64(0)
		}
		return signExtend32(uint32(a) / uint32(b))
	case DivSW:
		if uint32(b) == 0 {
			return ^uint64(0)
		}
		return signExtend32(uint32(int32(uint32(a)) / int32(uint32(b))))
	case RemUW:
		if uint32(b) == 0 {
			return signExtend32(uint32(a))
		}
		return signExtend32(uint32(a) % uint32(b))
	case RemSW:
		if uint32(b) == 0 {
			return signExtend32(uint32(a))
		}
		return signExtend32(uint32(int32(uint32(a)) % int32(uint32(b))))
	case ShlW:
		return signExtend32(uint32(a) << (uint32(b) & 31))
	case ShrW:
		return signExtend32(uint32(a) >> (uint32(b) & 31))
	default:
		return 0
	}
}

func signExtend32(v uint32) uint64 {
	return uint64(int64(int32(v)))
}
