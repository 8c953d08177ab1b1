// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package state implements the service-account arena (spec §4.9: "Cyclic
// graphs... represent as an arena... keyed by U32 service id") and the
// recent-history snapshot log the block-transition pipeline reads and
// mutates, generalized from the teacher's content-addressed state
// interfaces to JAM's concrete Service account schema (spec §3).
package state

import "github.com/luxfi/jam/codec"

// RequestStatus is a preimage-request's timeslot history: each entry is a
// timeslot, and how many there are marks the request's stage (spec §3). The FORGET state
// machine in hostcall.Dispatcher only ever grows this to length 3 before
// collapsing it, per spec.md §4.5.
type RequestStatus []uint32

func (r RequestStatus) clone() RequestStatus {
	if r == nil {
		return nil
	}
	out := make(RequestStatus, len(r))
	copy(out, r)
	return out
}

// requestKey identifies one requests[hash][length] slot. hash is a bare
// [32]byte, not codec.H32, so the Accounts methods built around it match
// hostcall.Accounts's parameter types exactly (Go interface satisfaction
// requires identical types, not just mutually assignable ones).
type requestKey struct {
	hash   [32]byte
	length uint32
}

// ServiceAccount is the content-addressed service account schema (spec
// §3): `{codeHash, balance, minAccGas, minMemoGas, octets, gratis, items,
// created, lastAcc, parent, storage, preimages, requests}`.
type ServiceAccount struct {
	CodeHash   codec.H32
	Balance    uint64
	MinAccGas  uint64
	MinMemoGas uint64
	Octets     uint64
	Gratis     uint64
	Items      uint32
	Created    uint32
	LastAcc    uint32
	Parent     uint32

	storage   map[string][]byte
	preimages map[[32]byte][]byte
	requests  map[requestKey]RequestStatus
}

// NewServiceAccount returns an empty account seeded with the given
// immutable fields; storage/preimages/requests start empty.
func NewServiceAccount(codeHash codec.H32, balance, minAccGas, minMemoGas, gratis uint64, created, parent uint32) *ServiceAccount {
	return &ServiceAccount{
		CodeHash:   codeHash,
		Balance:    balance,
		MinAccGas:  minAccGas,
		MinMemoGas: minMemoGas,
		Gratis:     gratis,
		Created:    created,
		LastAcc:    created,
		Parent:     parent,
		storage:    make(map[string][]byte),
		preimages:  make(map[[32]byte][]byte),
		requests:   make(map[requestKey]RequestStatus),
	}
}

// clone returns a deep copy, used by Accounts.Snapshot for copy-on-write
// isolation between independent engine.Transition calls (spec §4.9
// "Global mutable state" design note).
func (a *ServiceAccount) clone() *ServiceAccount {
	out := &ServiceAccount{
		CodeHash:   a.CodeHash,
		Balance:    a.Balance,
		MinAccGas:  a.MinAccGas,
		MinMemoGas: a.MinMemoGas,
		Octets:     a.Octets,
		Gratis:     a.Gratis,
		Items:      a.Items,
		Created:    a.Created,
		LastAcc:    a.LastAcc,
		Parent:     a.Parent,
		storage:    make(map[string][]byte, len(a.storage)),
		preimages:  make(map[[32]byte][]byte, len(a.preimages)),
		requests:   make(map[requestKey]RequestStatus, len(a.requests)),
	}
	for k, v := range a.storage {
		out.storage[k] = append([]byte(nil), v...)
	}
	for k, v := range a.preimages {
		out.preimages[k] = append([]byte(nil), v...)
	}
	for k, v := range a.requests {
		out.requests[k] = v.clone()
	}
	return out
}

// infoBlob encodes the 96-byte service-info struct INFO returns (spec.md
// §4.5, "96 when length>0"). spec.md publishes only the 96-byte total
// size, not a field-by-field layout; this encodes the schema's scalar
// fields in declaration order, canonical-width, zero-padded to exactly 96
// bytes, the same documented-continuation convention used by
// hostcall.SystemConstants for its own undocumented tail.
func (a *ServiceAccount) infoBlob() [96]byte {
	w := codec.NewWriter(96)
	w.WriteBytes(a.CodeHash[:])
	w.WriteFixed(a.Balance, 8)
	w.WriteFixed(a.MinAccGas, 8)
	w.WriteFixed(a.MinMemoGas, 8)
	w.WriteFixed(a.Octets, 8)
	w.WriteFixed(a.Gratis, 8)
	w.WriteFixed(uint64(a.Items), 4)
	w.WriteFixed(uint64(a.Created), 4)
	w.WriteFixed(uint64(a.LastAcc), 4)
	w.WriteFixed(uint64(a.Parent), 4)

	var out [96]byte
	copy(out[:], w.Bytes())
	return out
}
