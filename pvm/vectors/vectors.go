// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vectors loads the external PVM test-vector JSON format (spec.md
// §6) and runs it against pvm.Run, for table-driven tests. It is test
// infrastructure only, matching spec.md §1's "excluded: test-vector
// harnesses" scope note — nothing in the engine imports this package.
package vectors

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/luxfi/jam/pvm"
)

// u64 decodes a JSON number OR a JSON string as a uint64, since 64-bit
// values near 2^64 do not round-trip through float64-backed JSON numbers
// and some vector generators emit them as quoted strings instead.
type u64 uint64

func (v *u64) UnmarshalJSON(b []byte) error {
	var n uint64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = u64(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("vectors: cannot decode u64 from %s", b)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*v = u64(n)
	return nil
}

// i64 is the signed counterpart of u64, used for gas fields.
type i64 int64

func (v *i64) UnmarshalJSON(b []byte) error {
	var n int64
	if err := json.Unmarshal(b, &n); err == nil {
		*v = i64(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("vectors: cannot decode i64 from %s", b)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*v = i64(n)
	return nil
}

// byteSeq decodes a JSON array of small integers as a byte slice. Vector
// fixtures spell out program bytes and memory contents as plain JSON number
// arrays, not base64 (encoding/json's default for a bare []byte field), so
// this type overrides that default; it also accepts a base64 string for
// generators that do emit one.
type byteSeq []byte

func (b *byteSeq) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err == nil {
		out := make([]byte, len(ints))
		for i, v := range ints {
			out[i] = byte(v)
		}
		*b = out
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		decoded, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return err
		}
		*b = decoded
		return nil
	}
	return fmt.Errorf("vectors: cannot decode byte sequence from %s", data)
}

// PageMapEntry describes one initial page's access class.
type PageMapEntry struct {
	Address    uint32 `json:"address"`
	Length     uint32 `json:"length"`
	IsWritable bool   `json:"is-writable"`
}

// MemoryChunk is a contiguous initial or expected memory region.
type MemoryChunk struct {
	Address  uint32  `json:"address"`
	Contents byteSeq `json:"contents"`
}

// Vector is one PVM test case per spec.md §6's external JSON schema.
type Vector struct {
	Name           string                 `json:"name,omitempty"`
	Program        byteSeq                `json:"program"`
	InitialRegs    [pvm.NumRegisters]u64  `json:"initial-regs"`
	InitialPC      uint32         `json:"initial-pc"`
	InitialGas     i64            `json:"initial-gas"`
	InitialPageMap []PageMapEntry `json:"initial-page-map,omitempty"`
	InitialMemory  []MemoryChunk  `json:"initial-memory,omitempty"`

	ExpectedStatus string                 `json:"expected-status"`
	ExpectedPC     *uint32                `json:"expected-pc,omitempty"`
	ExpectedGas    *i64                   `json:"expected-gas,omitempty"`
	ExpectedRegs   *[pvm.NumRegisters]u64 `json:"expected-regs,omitempty"`
	ExpectedMemory []MemoryChunk          `json:"expected-memory,omitempty"`
	ExpectedFault  *uint32                `json:"expected-page-fault-address,omitempty"`
}

// Decode parses a single JSON vector document.
func Decode(data []byte) (Vector, error) {
	var v Vector
	if err := json.Unmarshal(data, &v); err != nil {
		return Vector{}, err
	}
	return v, nil
}

// DecodeAll parses a JSON array of vectors.
func DecodeAll(data []byte) ([]Vector, error) {
	var vs []Vector
	if err := json.Unmarshal(data, &vs); err != nil {
		return nil, err
	}
	return vs, nil
}

// statusName maps a pvm.Status to the vector schema's status strings,
// which differ from pvm.Status.String() only in the FAULT case
// ("page-fault" vs. the internal "fault").
func statusName(s pvm.Status) string {
	if s == pvm.FAULT {
		return "page-fault"
	}
	return s.String()
}

// Outcome is the observable result of running a Vector.
type Outcome struct {
	Status pvm.Status
	State  *pvm.State
}

// Run builds a PVM state from v, executes it to completion (resuming past
// any HOST suspension immediately with no host-call side effects, since
// vectors exercise the bare interpreter, not the host ABI), and returns the
// resulting Outcome.
func Run(v Vector) (Outcome, error) {
	prog, err := pvm.Parse(v.Program)
	if err != nil {
		return Outcome{}, err
	}

	s := pvm.NewState(int64(v.InitialGas))
	s.PC = v.InitialPC
	for i, r := range v.InitialRegs {
		s.Registers[i] = uint64(r)
	}

	for _, pm := range v.InitialPageMap {
		access := pvm.ReadOnly
		if pm.IsWritable {
			access = pvm.ReadWrite
		}
		s.Memory.InitPage(pm.Address, int(pm.Length), access)
	}
	for _, chunk := range v.InitialMemory {
		s.Memory.WriteInit(chunk.Address, chunk.Contents)
	}

	pvm.Run(s, prog)
	for s.Status == pvm.HOST {
		// Vectors have no host-ABI wiring; treat every ECALLI as an
		// immediate no-op resumption so execution can reach its terminal
		// status.
		s.Status = pvm.OK
		pvm.Run(s, prog)
	}

	return Outcome{Status: s.Status, State: s}, nil
}

// Check reports whether Outcome matches v's expected-* fields.
func Check(v Vector, o Outcome) error {
	if got := statusName(o.Status); got != v.ExpectedStatus {
		return fmt.Errorf("vectors: status = %s, want %s", got, v.ExpectedStatus)
	}
	if v.ExpectedPC != nil && o.State.PC != *v.ExpectedPC {
		return fmt.Errorf("vectors: pc = %d, want %d", o.State.PC, *v.ExpectedPC)
	}
	if v.ExpectedGas != nil && o.State.Gas != int64(*v.ExpectedGas) {
		return fmt.Errorf("vectors: gas = %d, want %d", o.State.Gas, *v.ExpectedGas)
	}
	if v.ExpectedRegs != nil {
		for i, want := range v.ExpectedRegs {
			if o.State.Registers[i] != uint64(want) {
				return fmt.Errorf("vectors: register[%d] = %d, want %d", i, o.State.Registers[i], want)
			}
		}
	}
	if v.ExpectedFault != nil && o.State.ExitArg != uint64(*v.ExpectedFault) {
		return fmt.Errorf("vectors: fault address = %d, want %d", o.State.ExitArg, *v.ExpectedFault)
	}
	for _, chunk := range v.ExpectedMemory {
		got, err := o.State.Memory.ReadBytes(chunk.Address, len(chunk.Contents))
		if err != nil {
			return fmt.Errorf("vectors: expected-memory at %d unreadable: %w", chunk.Address, err)
		}
		for i := range chunk.Contents {
			if got[i] != chunk.Contents[i] {
				return fmt.Errorf("vectors: memory at %d differs from expected", chunk.Address+uint32(i))
			}
		}
	}
	return nil
}
