// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/block"
	"github.com/luxfi/jam/codec"
)

func sampleEntry(n byte) block.RecentHistoryEntry {
	var h, a, s codec.H32
	h[0], a[0], s[0] = n, n+1, n+2
	return block.RecentHistoryEntry{
		HeaderHash:          h,
		AccountLogSuperPeak: a,
		StateRoot:           s,
		ReportedPackages:    map[codec.H32]codec.H32{h: s},
	}
}

func TestHistoryAppendAndEviction(t *testing.T) {
	h := NewHistory(2)
	h.Append(sampleEntry(1))
	h.Append(sampleEntry(2))
	h.Append(sampleEntry(3))

	entries := h.Entries()
	require.Len(t, entries, 2)
	require.Equal(t, byte(2), entries[0].HeaderHash[0])
	require.Equal(t, byte(3), entries[1].HeaderHash[0])

	latest, ok := h.Latest()
	require.True(t, ok)
	require.Equal(t, byte(3), latest.HeaderHash[0])
}

func TestHistoryLatestEmpty(t *testing.T) {
	h := NewHistory(4)
	_, ok := h.Latest()
	require.False(t, ok)
}

func TestHistoryCompactRoundTrip(t *testing.T) {
	h := NewHistory(8)
	h.Append(sampleEntry(1))
	h.Append(sampleEntry(2))

	blob, err := h.Compact()
	require.NoError(t, err)
	require.NotEmpty(t, blob)

	got, err := DecompactHistory(blob)
	require.NoError(t, err)
	require.Equal(t, h.Entries(), got)
}
