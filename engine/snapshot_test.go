// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/block"
	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/safrole"
)

func TestNewSnapshotIsEmpty(t *testing.T) {
	snap := NewSnapshot()
	require.NotNil(t, snap.Accounts)
	require.NotNil(t, snap.History)
	require.Empty(t, snap.History.Entries())
}

func TestRecordHistoryAppends(t *testing.T) {
	snap := NewSnapshot()
	snap.RecordHistory(block.RecentHistoryEntry{HeaderHash: codec.H32{0x01}})
	snap.RecordHistory(block.RecentHistoryEntry{HeaderHash: codec.H32{0x02}})

	entries := snap.History.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, codec.H32{0x02}, entries[1].HeaderHash)
}

func TestSnapshotCloneIsIndependent(t *testing.T) {
	snap := NewSnapshot()
	snap.Safrole.ActiveSet = []safrole.Validator{{Bandersnatch: [32]byte{1}}}
	snap.Accounts.Put(3, newAccountForTest(100))

	clone := snap.Clone()
	clone.Safrole.ActiveSet[0].Bandersnatch[0] = 0xff
	clone.Safrole.ActiveSet = append(clone.Safrole.ActiveSet, safrole.Validator{Bandersnatch: [32]byte{2}})

	require.Len(t, snap.Safrole.ActiveSet, 1, "appending to the clone must not grow the original")
	require.Equal(t, [32]byte{1}, snap.Safrole.ActiveSet[0].Bandersnatch, "mutating the clone must not touch the original")

	_, ok := snap.Accounts.Get(3)
	require.True(t, ok)
	_, ok = clone.Accounts.Get(3)
	require.True(t, ok, "clone must carry over existing accounts")
}
