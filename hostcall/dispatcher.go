// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hostcall

import (
	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/pvm"
)

// SelfSentinel is the "this service" sentinel LOOKUP accepts alongside the
// caller's own id (spec.md §9 Open Question (b): "registers[7] ∈ {s,
// 2^64−1} ... both mean self").
const SelfSentinel = ^uint64(0)

// Dispatcher runs the eight host handlers (spec.md §4.5) against an
// Accounts store. It holds no per-call state: every Call is a pure
// function of (state, self, hostID, Accounts), mirroring safrole.Engine's
// explicit-state, no-singleton pattern.
type Dispatcher struct {
	Accounts  Accounts
	constants []byte
}

// New builds a Dispatcher, precomputing the FETCH selector=0 blob for cfg.
func New(accounts Accounts, cfg config.Config) *Dispatcher {
	return &Dispatcher{Accounts: accounts, constants: SystemConstants(cfg)}
}

// Call dispatches the handler named by hostID (the ECALLI operand that
// suspended s with Status == pvm.HOST) with self as the currently-executing
// service id. The caller is responsible for resetting s.Status to pvm.OK
// and resuming pvm.Run afterward, the same two-step protocol used to
// resume after any other HOST suspension.
//
// An out-of-bounds guest memory access is reported the same way a PVM load
// or store fault is: s.Status is set to pvm.FAULT and s.ExitArg carries the
// faulting address, rather than a Go error, since the caller already knows
// how to handle that status.
func (d *Dispatcher) Call(s *pvm.State, self uint32, hostID uint64) {
	switch hostID {
	case 0:
		d.fetch(s)
	case 1:
		d.read(s)
	case 2:
		d.write(s)
	case 3:
		d.lookup(s, self)
	case 4:
		d.info(s)
	case 5:
		d.solicit(s)
	case 6:
		d.forget(s)
	case 7:
		d.query(s)
	default:
		// "Ids are stable; unknown ids trap." (spec.md §4.5)
		s.Status = pvm.PANIC
	}
}

func (d *Dispatcher) fetch(s *pvm.State) {
	selector := s.Registers[7]
	outOff := uint32(s.Registers[8])
	fromOff := uint32(s.Registers[9])
	length := uint32(s.Registers[10])

	if selector != 0 {
		// Only the full system-constants struct (selector 0) is defined
		// by spec.md; any other selector is treated as not-found.
		s.Registers[7] = ResultNone
		return
	}
	s.Registers[7] = writeSlice(s, d.constants, outOff, fromOff, length)
}

func (d *Dispatcher) read(s *pvm.State) {
	srvID := uint32(s.Registers[7])
	keyOff := uint32(s.Registers[8])
	keyLen := uint32(s.Registers[9])
	outOff := uint32(s.Registers[10])
	fromOff := uint32(s.Registers[11])
	length := uint32(s.Registers[12])

	key, err := s.Memory.ReadBytes(keyOff, int(keyLen))
	if err != nil {
		memFault(s, keyOff)
		return
	}
	value, ok := d.Accounts.ReadStorage(srvID, key)
	if !ok {
		s.Registers[7] = ResultNone
		return
	}
	s.Registers[7] = writeSlice(s, value, outOff, fromOff, length)
}

func (d *Dispatcher) write(s *pvm.State) {
	srvID := uint32(s.Registers[7])
	keyOff := uint32(s.Registers[8])
	keyLen := uint32(s.Registers[9])
	valueOff := uint32(s.Registers[10])
	valueLen := uint32(s.Registers[11])

	key, err := s.Memory.ReadBytes(keyOff, int(keyLen))
	if err != nil {
		memFault(s, keyOff)
		return
	}
	var value []byte
	if valueLen > 0 {
		value, err = s.Memory.ReadBytes(valueOff, int(valueLen))
		if err != nil {
			memFault(s, valueOff)
			return
		}
	}

	res := d.Accounts.WriteStorage(srvID, key, value)
	switch res.Result {
	case WriteNoSuchService:
		s.Registers[7] = ResultWho
	case WriteFull:
		s.Registers[7] = ResultFull
	default:
		if !res.Existed {
			s.Registers[7] = ResultNone
		} else {
			s.Registers[7] = uint64(res.PrevLen)
		}
	}
}

// lookup treats registers[7] == self or registers[7] == SelfSentinel as a
// self-lookup, otherwise as an explicit service id, per spec.md §9 Open
// Question (b). The result is the preimage's total length, distinct from
// FETCH/READ's "bytes actually written into the window" convention,
// because spec.md's table names it "total preimage length" specifically
// for LOOKUP.
func (d *Dispatcher) lookup(s *pvm.State, self uint32) {
	srvReg := s.Registers[7]
	srvID := self
	if srvReg != uint64(self) && srvReg != SelfSentinel {
		srvID = uint32(srvReg)
	}
	hashOff := uint32(s.Registers[8])
	outOff := uint32(s.Registers[9])
	fromOff := uint32(s.Registers[10])
	length := uint32(s.Registers[11])

	hash, err := readHash(s, hashOff)
	if err != nil {
		memFault(s, hashOff)
		return
	}

	blob, ok := d.Accounts.Preimage(srvID, hash)
	if !ok {
		s.Registers[7] = ResultNone
		return
	}
	if written := writeSlice(s, blob, outOff, fromOff, length); written == ResultNone && s.Status == pvm.FAULT {
		return
	}
	s.Registers[7] = uint64(len(blob))
}

// info writes up to 96 bytes of the service-info blob and returns the
// fixed constant 96 on any non-empty write, per spec.md's note: "96 when
// length>0, else NONE".
func (d *Dispatcher) info(s *pvm.State) {
	srvID := uint32(s.Registers[7])
	outOff := uint32(s.Registers[8])
	fromOff := uint32(s.Registers[9])
	length := uint32(s.Registers[10])

	info, ok := d.Accounts.ServiceInfo(srvID)
	if !ok {
		s.Registers[7] = ResultNone
		return
	}
	if writeSlice(s, info[:], outOff, fromOff, length) == ResultNone {
		s.Registers[7] = ResultNone
		return
	}
	s.Registers[7] = 96
}

func (d *Dispatcher) solicit(s *pvm.State) {
	srvID := uint32(s.Registers[7])
	hashOff := uint32(s.Registers[8])
	preimgLen := uint32(s.Registers[9])
	t := uint32(s.Registers[10])

	hash, err := readHash(s, hashOff)
	if err != nil {
		memFault(s, hashOff)
		return
	}

	status, ok := d.Accounts.RequestStatus(srvID, hash, preimgLen)
	if !ok || len(status) == 0 {
		res := d.Accounts.SetRequestStatus(srvID, hash, preimgLen, []uint32{t})
		s.Registers[7] = resultFor(res, ResultOK)
		return
	}
	s.Registers[7] = ResultHuh
}

// forget implements the four-case state machine over requests[hash][len]
// (spec.md §4.5 "FORGET state machine").
func (d *Dispatcher) forget(s *pvm.State) {
	srvID := uint32(s.Registers[7])
	hashOff := uint32(s.Registers[8])
	preimgLen := uint32(s.Registers[9])
	t := uint32(s.Registers[10])
	expungePeriod := uint32(s.Registers[11])

	hash, err := readHash(s, hashOff)
	if err != nil {
		memFault(s, hashOff)
		return
	}

	status, ok := d.Accounts.RequestStatus(srvID, hash, preimgLen)
	if !ok {
		status = nil
	}

	switch len(status) {
	case 0:
		s.Registers[7] = ResultHuh
	case 1:
		res := d.Accounts.SetRequestStatus(srvID, hash, preimgLen, []uint32{status[0], t})
		s.Registers[7] = resultFor(res, ResultOK)
	case 2:
		if status[1] < t-expungePeriod {
			res := d.Accounts.DeleteRequestStatus(srvID, hash, preimgLen)
			s.Registers[7] = resultFor(res, ResultOK)
		} else {
			s.Registers[7] = ResultHuh
		}
	case 3:
		if status[2] < t-expungePeriod {
			res := d.Accounts.SetRequestStatus(srvID, hash, preimgLen, []uint32{t})
			s.Registers[7] = resultFor(res, ResultOK)
		} else {
			s.Registers[7] = ResultHuh
		}
	default:
		s.Registers[7] = ResultHuh
	}
}

// query packs requests[hash][len] into (r7, r8) (spec.md §4.5 "QUERY
// encoding").
func (d *Dispatcher) query(s *pvm.State) {
	srvID := uint32(s.Registers[7])
	hashOff := uint32(s.Registers[8])
	preimgLen := uint32(s.Registers[9])

	hash, err := readHash(s, hashOff)
	if err != nil {
		memFault(s, hashOff)
		return
	}

	status, ok := d.Accounts.RequestStatus(srvID, hash, preimgLen)
	if !ok {
		s.Registers[7] = ResultNone
		s.Registers[8] = 0
		return
	}
	switch len(status) {
	case 0:
		s.Registers[7] = 0
		s.Registers[8] = 0
	case 1:
		s.Registers[7] = 1 + uint64(status[0])<<32
		s.Registers[8] = 0
	case 2:
		s.Registers[7] = 2 + uint64(status[0])<<32
		s.Registers[8] = uint64(status[1])
	default:
		s.Registers[7] = ResultNone
		s.Registers[8] = 0
	}
}

// writeSlice implements the common "l = min(length, len(data)-fromOff);
// write data[fromOff:fromOff+l] to outOff; NONE if l == 0" window copy
// shared by FETCH, READ, LOOKUP and INFO. It signals an out-of-bounds
// guest write by setting s.Status to pvm.FAULT and returns ResultNone in
// that case too; callers that need to distinguish a real NONE from a fault
// check s.Status after calling it.
func writeSlice(s *pvm.State, data []byte, outOff, fromOff, length uint32) uint64 {
	if fromOff >= uint32(len(data)) {
		return ResultNone
	}
	avail := uint32(len(data)) - fromOff
	l := length
	if l > avail {
		l = avail
	}
	if l == 0 {
		return ResultNone
	}
	if err := s.Memory.StoreBytes(outOff, data[fromOff:fromOff+l]); err != nil {
		memFault(s, outOff)
		return ResultNone
	}
	return uint64(l)
}

func readHash(s *pvm.State, addr uint32) ([32]byte, error) {
	var hash [32]byte
	b, err := s.Memory.ReadBytes(addr, 32)
	if err != nil {
		return hash, err
	}
	copy(hash[:], b)
	return hash, nil
}

func memFault(s *pvm.State, addr uint32) {
	s.Status = pvm.FAULT
	s.ExitArg = uint64(addr)
}

func resultFor(res WriteResult, okValue uint64) uint64 {
	switch res {
	case WriteFull:
		return ResultFull
	case WriteNoSuchService:
		return ResultWho
	default:
		return okValue
	}
}
