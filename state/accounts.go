// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"sync"

	"github.com/luxfi/jam/hostcall"
)

// minBalance computes min_balance(items, octets, gratis) (spec.md §4.5
// "Accounting"), using the three GP-fixed deposit-rate constants
// hostcall.SystemConstants also exposes over the wire.
func minBalance(items, octets, gratis uint64) uint64 {
	threshold := uint64(hostcall.GPBaseDeposit) +
		uint64(hostcall.GPPerItemDeposit)*items +
		uint64(hostcall.GPPerOctetDeposit)*octets
	if gratis >= threshold {
		return 0
	}
	return threshold - gratis
}

// accounting recomputes items/octets from an account's current maps. Items
// counts every storage/preimage/request slot; octets sums the byte size
// of stored keys, values, and preimage blobs (spec.md names items/octets
// as WRITE/SOLICIT-maintained counters but does not give a byte-exact
// formula beyond "key ‖ value" style accounting used elsewhere in the
// wire format, so this recomputation is a documented, self-consistent
// choice rather than incremental bookkeeping prone to drifting out of
// sync with the maps it describes).
func accounting(a *ServiceAccount) (items, octets uint64) {
	for k, v := range a.storage {
		items++
		octets += uint64(len(k) + len(v))
	}
	for _, v := range a.preimages {
		items++
		octets += uint64(len(v))
	}
	items += uint64(len(a.requests))
	return items, octets
}

// Accounts is the in-memory, content-addressed service-account arena
// (spec §4.9), keyed by U32 service id. It implements hostcall.Accounts.
type Accounts struct {
	mu   sync.RWMutex
	byID map[uint32]*ServiceAccount
}

// NewAccounts returns an empty arena.
func NewAccounts() *Accounts {
	return &Accounts{byID: make(map[uint32]*ServiceAccount)}
}

// Put installs or replaces the account for srvId.
func (a *Accounts) Put(srvId uint32, acc *ServiceAccount) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.byID[srvId] = acc
}

// Get returns the account for srvId, if any.
func (a *Accounts) Get(srvId uint32) (*ServiceAccount, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	acc, ok := a.byID[srvId]
	return acc, ok
}

// Snapshot deep-copies the arena, giving engine.Transition a private
// copy-on-write working set per call (spec §4.9's "Global mutable state"
// design note: "no package-level mutable state is held").
func (a *Accounts) Snapshot() *Accounts {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := NewAccounts()
	for id, acc := range a.byID {
		out.byID[id] = acc.clone()
	}
	return out
}

func (a *Accounts) Exists(srvId uint32) bool {
	_, ok := a.Get(srvId)
	return ok
}

func (a *Accounts) ReadStorage(srvId uint32, key []byte) ([]byte, bool) {
	acc, ok := a.Get(srvId)
	if !ok {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := acc.storage[string(key)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (a *Accounts) WriteStorage(srvId uint32, key, value []byte) hostcall.StorageWrite {
	acc, ok := a.Get(srvId)
	if !ok {
		return hostcall.StorageWrite{Result: hostcall.WriteNoSuchService}
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	k := string(key)
	prev, existed := acc.storage[k]

	trial := acc.clone()
	if len(value) == 0 {
		delete(trial.storage, k)
	} else {
		trial.storage[k] = append([]byte(nil), value...)
	}
	items, octets := accounting(trial)
	if minBalance(items, octets, trial.Gratis) > trial.Balance {
		return hostcall.StorageWrite{PrevLen: len(prev), Existed: existed, Result: hostcall.WriteFull}
	}

	if len(value) == 0 {
		delete(acc.storage, k)
	} else {
		acc.storage[k] = append([]byte(nil), value...)
	}
	acc.Items, acc.Octets = items, octets

	return hostcall.StorageWrite{PrevLen: len(prev), Existed: existed, Result: hostcall.WriteOK}
}

func (a *Accounts) Preimage(srvId uint32, hash [32]byte) ([]byte, bool) {
	acc, ok := a.Get(srvId)
	if !ok {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	blob, ok := acc.preimages[hash]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), blob...), true
}

// SolicitPreimage inserts a preimage blob, applying the same min_balance
// accounting WriteStorage does (spec.md §4.5 "Accounting": "WRITE and
// SOLICIT update items and octets").
func (a *Accounts) SolicitPreimage(srvId uint32, hash [32]byte, blob []byte) hostcall.WriteResult {
	acc, ok := a.Get(srvId)
	if !ok {
		return hostcall.WriteNoSuchService
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	trial := acc.clone()
	trial.preimages[hash] = append([]byte(nil), blob...)
	items, octets := accounting(trial)
	if minBalance(items, octets, trial.Gratis) > trial.Balance {
		return hostcall.WriteFull
	}

	acc.preimages[hash] = append([]byte(nil), blob...)
	acc.Items, acc.Octets = items, octets
	return hostcall.WriteOK
}

func (a *Accounts) ServiceInfo(srvId uint32) ([96]byte, bool) {
	acc, ok := a.Get(srvId)
	if !ok {
		return [96]byte{}, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	return acc.infoBlob(), true
}

func (a *Accounts) RequestStatus(srvId uint32, hash [32]byte, length uint32) ([]uint32, bool) {
	acc, ok := a.Get(srvId)
	if !ok {
		return nil, false
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	status, ok := acc.requests[requestKey{hash: hash, length: length}]
	if !ok {
		return nil, false
	}
	return append(RequestStatus(nil), status...), true
}

func (a *Accounts) SetRequestStatus(srvId uint32, hash [32]byte, length uint32, status []uint32) hostcall.WriteResult {
	acc, ok := a.Get(srvId)
	if !ok {
		return hostcall.WriteNoSuchService
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := requestKey{hash: hash, length: length}
	trial := acc.clone()
	trial.requests[key] = append(RequestStatus(nil), status...)
	items, octets := accounting(trial)
	if minBalance(items, octets, trial.Gratis) > trial.Balance {
		return hostcall.WriteFull
	}

	acc.requests[key] = append(RequestStatus(nil), status...)
	acc.Items, acc.Octets = items, octets
	return hostcall.WriteOK
}

func (a *Accounts) DeleteRequestStatus(srvId uint32, hash [32]byte, length uint32) hostcall.WriteResult {
	acc, ok := a.Get(srvId)
	if !ok {
		return hostcall.WriteNoSuchService
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	delete(acc.requests, requestKey{hash: hash, length: length})
	acc.Items, acc.Octets = accounting(acc)
	return hostcall.WriteOK
}
