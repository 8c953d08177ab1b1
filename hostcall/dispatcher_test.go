// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hostcall

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/pvm"
)

// mockAccounts is a minimal in-memory Accounts used to exercise Dispatcher
// without the full state package.
type mockAccounts struct {
	storage   map[uint32]map[string][]byte
	preimages map[uint32]map[[32]byte][]byte
	info      map[uint32][96]byte
	requests  map[uint32]map[string][]uint32
	full      bool // force every mutating call to report WriteFull
}

func newMockAccounts() *mockAccounts {
	return &mockAccounts{
		storage:   make(map[uint32]map[string][]byte),
		preimages: make(map[uint32]map[[32]byte][]byte),
		info:      make(map[uint32][96]byte),
		requests:  make(map[uint32]map[string][]uint32),
	}
}

func requestKey(hash [32]byte, length uint32) string {
	return string(hash[:]) + string([]byte{byte(length), byte(length >> 8), byte(length >> 16), byte(length >> 24)})
}

func (m *mockAccounts) Exists(srvID uint32) bool {
	_, ok := m.storage[srvID]
	return ok
}

func (m *mockAccounts) ReadStorage(srvID uint32, key []byte) ([]byte, bool) {
	v, ok := m.storage[srvID][string(key)]
	return v, ok
}

func (m *mockAccounts) WriteStorage(srvID uint32, key []byte, value []byte) StorageWrite {
	if m.full {
		return StorageWrite{Result: WriteFull}
	}
	if m.storage[srvID] == nil {
		m.storage[srvID] = make(map[string][]byte)
	}
	prev, existed := m.storage[srvID][string(key)]
	if value == nil {
		delete(m.storage[srvID], string(key))
	} else {
		m.storage[srvID][string(key)] = value
	}
	return StorageWrite{PrevLen: len(prev), Existed: existed, Result: WriteOK}
}

func (m *mockAccounts) Preimage(srvID uint32, hash [32]byte) ([]byte, bool) {
	v, ok := m.preimages[srvID][hash]
	return v, ok
}

func (m *mockAccounts) ServiceInfo(srvID uint32) ([96]byte, bool) {
	v, ok := m.info[srvID]
	return v, ok
}

func (m *mockAccounts) RequestStatus(srvID uint32, hash [32]byte, length uint32) ([]uint32, bool) {
	v, ok := m.requests[srvID][requestKey(hash, length)]
	return v, ok
}

func (m *mockAccounts) SetRequestStatus(srvID uint32, hash [32]byte, length uint32, status []uint32) WriteResult {
	if m.full {
		return WriteFull
	}
	if m.requests[srvID] == nil {
		m.requests[srvID] = make(map[string][]uint32)
	}
	m.requests[srvID][requestKey(hash, length)] = status
	return WriteOK
}

func (m *mockAccounts) DeleteRequestStatus(srvID uint32, hash [32]byte, length uint32) WriteResult {
	delete(m.requests[srvID], requestKey(hash, length))
	return WriteOK
}

func newState() *pvm.State {
	s := pvm.NewState(1_000_000)
	s.Memory.InitPage(0, 4096, pvm.ReadWrite)
	return s
}

func TestFetchSelectorZeroTinyPrefix(t *testing.T) {
	d := New(newMockAccounts(), config.TinyConfig)
	s := newState()
	s.Registers[7] = 0   // selector
	s.Registers[8] = 256 // outOff
	s.Registers[9] = 0   // fromOff
	s.Registers[10] = SystemConstantsLen

	d.Call(s, 1, 0)
	require.Equal(t, uint64(SystemConstantsLen), s.Registers[7])

	got, err := s.Memory.ReadBytes(256, SystemConstantsLen)
	require.NoError(t, err)
	require.Len(t, got, SystemConstantsLen)

	want := []byte{
		0x0a, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x64, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x20, 0x00, 0x00, 0x00, 0x0c, 0x00,
	}
	require.Equal(t, want, got[:32])
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	accounts := newMockAccounts()
	d := New(accounts, config.TinyConfig)
	s := newState()

	key := []byte("k")
	value := []byte("hello")
	s.Memory.WriteInit(0, key)
	s.Memory.WriteInit(16, value)

	// WRITE srvId=1 key=[0,1) value=[16,21)
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = uint64(len(key))
	s.Registers[10] = 16
	s.Registers[11] = uint64(len(value))
	d.Call(s, 1, 2)
	require.Equal(t, ResultNone, s.Registers[7]) // new entry

	// READ it back into [64,...)
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = uint64(len(key))
	s.Registers[10] = 64
	s.Registers[11] = 0
	s.Registers[12] = uint64(len(value))
	d.Call(s, 1, 1)
	require.Equal(t, uint64(len(value)), s.Registers[7])
	got, err := s.Memory.ReadBytes(64, len(value))
	require.NoError(t, err)
	require.Equal(t, value, got)

	// WRITE again with valueLen=0 (delete): returns previous length.
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = uint64(len(key))
	s.Registers[10] = 0
	s.Registers[11] = 0
	d.Call(s, 1, 2)
	require.Equal(t, uint64(len(value)), s.Registers[7])

	// Subsequent READ returns NONE.
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = uint64(len(key))
	s.Registers[10] = 64
	s.Registers[11] = 0
	s.Registers[12] = uint64(len(value))
	d.Call(s, 1, 1)
	require.Equal(t, ResultNone, s.Registers[7])
}

func TestWriteFullOnMinBalanceViolation(t *testing.T) {
	accounts := newMockAccounts()
	accounts.full = true
	d := New(accounts, config.TinyConfig)
	s := newState()
	s.Memory.WriteInit(0, []byte("k"))

	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = 1
	s.Registers[10] = 0
	s.Registers[11] = 0
	d.Call(s, 1, 2)
	require.Equal(t, ResultFull, s.Registers[7])
}

func TestSolicitThenForgetStateMachine(t *testing.T) {
	accounts := newMockAccounts()
	d := New(accounts, config.TinyConfig)
	s := newState()

	var hash [32]byte
	hash[0] = 0xab
	s.Memory.WriteInit(0, hash[:])

	// SOLICIT at t=10: fresh entry -> OK, status becomes [10].
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = 5
	s.Registers[10] = 10
	d.Call(s, 1, 5)
	require.Equal(t, ResultOK, s.Registers[7])

	// Re-SOLICIT: single timeslot already present -> HUH.
	s.Registers[7] = 1
	d.Call(s, 1, 5)
	require.Equal(t, ResultHuh, s.Registers[7])

	// FORGET at t=20, expungePeriod=5: status=[10] -> append -> [10,20], OK.
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = 5
	s.Registers[10] = 20
	s.Registers[11] = 5
	d.Call(s, 1, 6)
	require.Equal(t, ResultOK, s.Registers[7])

	// FORGET again at t=21: status=[10,20]; 20 >= 21-5=16, too recent -> HUH.
	s.Registers[7] = 1
	s.Registers[10] = 21
	d.Call(s, 1, 6)
	require.Equal(t, ResultHuh, s.Registers[7])

	// FORGET at t=30: 20 < 30-5=25 -> delete, OK.
	s.Registers[7] = 1
	s.Registers[10] = 30
	d.Call(s, 1, 6)
	require.Equal(t, ResultOK, s.Registers[7])

	// QUERY now reports the entry as gone entirely (deleted, not merely
	// empty): missing requests report NONE, per spec.md's QUERY table.
	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = 5
	d.Call(s, 1, 7)
	require.Equal(t, ResultNone, s.Registers[7])
	require.Equal(t, uint64(0), s.Registers[8])
}

func TestQueryPackedEncoding(t *testing.T) {
	accounts := newMockAccounts()
	d := New(accounts, config.TinyConfig)
	s := newState()

	var hash [32]byte
	hash[1] = 0xcd
	s.Memory.WriteInit(0, hash[:])
	accounts.requests[1] = map[string][]uint32{
		requestKey(hash, 7): {3, 9},
	}

	s.Registers[7] = 1
	s.Registers[8] = 0
	s.Registers[9] = 7
	d.Call(s, 1, 7)
	require.Equal(t, uint64(2)+uint64(3)<<32, s.Registers[7])
	require.Equal(t, uint64(9), s.Registers[8])
}

func TestLookupSelfSentinel(t *testing.T) {
	accounts := newMockAccounts()
	d := New(accounts, config.TinyConfig)
	s := newState()

	var hash [32]byte
	hash[0] = 1
	accounts.preimages[42] = map[[32]byte][]byte{hash: []byte("preimage-bytes")}
	s.Memory.WriteInit(0, hash[:])

	s.Registers[7] = SelfSentinel
	s.Registers[8] = 0
	s.Registers[9] = 64
	s.Registers[10] = 0
	s.Registers[11] = 64
	d.Call(s, 42, 3)
	require.Equal(t, uint64(len("preimage-bytes")), s.Registers[7])
	got, err := s.Memory.ReadBytes(64, len("preimage-bytes"))
	require.NoError(t, err)
	require.Equal(t, []byte("preimage-bytes"), got)
}

func TestUnknownHandlerTraps(t *testing.T) {
	d := New(newMockAccounts(), config.TinyConfig)
	s := newState()
	d.Call(s, 1, 99)
	require.Equal(t, pvm.PANIC, s.Status)
}
