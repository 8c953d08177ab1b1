// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/codec"
)

func TestHeaderEncodeDecodeRoundTrip(t *testing.T) {
	h := Header{
		Parent:         codec.H32{1},
		PriorStateRoot: codec.H32{2},
		ExtrinsicHash:  codec.H32{3},
		Timeslot:       42,
		EpochMark: &EpochMark{
			Entropy:        codec.H32{4},
			TicketsEntropy: codec.H32{5},
			Validators:     []ValidatorKey{{Bandersnatch: [32]byte{6}}},
		},
		WinnersMark:   &WinnersMark{TicketIDs: []codec.H32{{7}, {8}}},
		OffendersMark: []codec.H32{{9}},
		AuthorIndex:   3,
	}

	w := codec.NewWriter(512)
	h.Encode(w)
	r := codec.NewReader(w.Bytes())
	got, err := DecodeHeader(r)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Empty(t, r.Remaining())
}

func TestHeaderEncodeUnsignedExcludesSeal(t *testing.T) {
	h := Header{Timeslot: 1, SealSig: [96]byte{0xff}}
	withSeal := h
	withSeal.SealSig = [96]byte{0xaa}
	require.Equal(t, h.EncodeUnsigned(), withSeal.EncodeUnsigned())
}

func TestRecentHistoryEntryEncodeDecodeRoundTrip(t *testing.T) {
	e := RecentHistoryEntry{
		HeaderHash:          codec.H32{1},
		AccountLogSuperPeak: codec.H32{2},
		StateRoot:           codec.H32{3},
		ReportedPackages: map[codec.H32]codec.H32{
			{4}: {5},
			{6}: {7},
		},
	}
	w := codec.NewWriter(256)
	e.Encode(w)
	r := codec.NewReader(w.Bytes())
	got, err := DecodeRecentHistoryEntry(r)
	require.NoError(t, err)
	require.Equal(t, e, got)
	require.Empty(t, r.Remaining())
}
