// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erasure

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// subset picks the shards/indices named by which from a full EncodedData,
// simulating erasure of all other shards.
func subset(enc EncodedData, which []int) EncodedData {
	shards := make([][]byte, len(which))
	indices := make([]int, len(which))
	for i, w := range which {
		shards[i] = enc.Shards[w]
		indices[i] = enc.Indices[w]
	}
	return EncodedData{
		OriginalLength: enc.OriginalLength,
		K:              enc.K,
		N:              enc.N,
		Shards:         shards,
		Indices:        indices,
	}
}

func TestEncodeDecodeRoundTripFullShards(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, repeated so the segment spans more than one block")
	enc, err := Encode(data, 4, 8)
	require.NoError(t, err)
	require.Len(t, enc.Shards, 8)

	got, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestDecodeFromAnyKOfNShards(t *testing.T) {
	data := make([]byte, BlockSize*4*3+17)
	for i := range data {
		data[i] = byte(i * 7)
	}
	enc, err := Encode(data, 4, 8)
	require.NoError(t, err)

	// Only the parity shards survive (drop all systematic ones) — still
	// decodable, since any k of n shards suffice.
	got, err := Decode(subset(enc, []int{4, 5, 6, 7}))
	require.NoError(t, err)
	require.Equal(t, data, got)

	// A different surviving set of k shards also reconstructs the data.
	got2, err := Decode(subset(enc, []int{0, 2, 5, 7}))
	require.NoError(t, err)
	require.Equal(t, data, got2)
}

func TestEncodeSystematicShardsEqualDataWhenUnpadded(t *testing.T) {
	k, n := 3, 6
	data := make([]byte, BlockSize*k)
	for i := range data {
		data[i] = byte(i)
	}
	enc, err := Encode(data, k, n)
	require.NoError(t, err)

	for j := 0; j < k; j++ {
		require.Equal(t, data[j*BlockSize:(j+1)*BlockSize], enc.Shards[j])
	}
}

func TestEncodePadsToBlockBoundary(t *testing.T) {
	data := []byte("short")
	k, n := 2, 4
	enc, err := Encode(data, k, n)
	require.NoError(t, err)

	for _, s := range enc.Shards {
		require.Zero(t, len(s)%BlockSize)
	}
	got, err := Decode(enc)
	require.NoError(t, err)
	require.Equal(t, data, got)
}

func TestEncodeEmptyInput(t *testing.T) {
	enc, err := Encode(nil, 2, 4)
	require.NoError(t, err)
	got, err := Decode(enc)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestDecodeTooFewShardsErrors(t *testing.T) {
	data := make([]byte, BlockSize*4)
	enc, err := Encode(data, 4, 8)
	require.NoError(t, err)

	_, err = Decode(subset(enc, []int{0, 1, 2}))
	require.ErrorIs(t, err, ErrNotEnoughShards)
}

func TestEncodeRejectsInvalidShardCounts(t *testing.T) {
	_, err := Encode([]byte("x"), 0, 4)
	require.ErrorIs(t, err, ErrInvalidShardCount)

	_, err = Encode([]byte("x"), 4, 4)
	require.ErrorIs(t, err, ErrInvalidShardCount)
}
