// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package erasure

import "errors"

// BlockSize is the blocking unit spec §4.7 mandates: 684 bytes, i.e. 342
// 16-bit words, the symbol width GF(2^16) arithmetic operates on.
const BlockSize = 684

const wordsPerBlock = BlockSize / 2

var (
	ErrInvalidShardCount  = errors.New("erasure: require 0 < k < n")
	ErrNotEnoughShards    = errors.New("erasure: not enough shards to decode")
	ErrShardSizeMismatch  = errors.New("erasure: shard size mismatch")
	ErrIndexCountMismatch = errors.New("erasure: shard/index count mismatch")
)

// EncodedData is the output of Encode and the input Decode reconstructs
// from: n shards of equal length, any k of which (named by Indices, the
// row each shard occupies in the systematic generator matrix) suffice to
// recover the original bytes (spec §4.7: "any subset of k shards suffices
// for decoding").
type EncodedData struct {
	OriginalLength int
	K              int
	N              int
	Shards         [][]byte
	Indices        []int
}

// Encode splits data into k systematic shards and n-k parity shards, each
// BlockSize-aligned, using a Reed-Solomon generator matrix over GF(2^16).
// data is zero-padded up to a multiple of BlockSize*k before splitting;
// OriginalLength records the pre-padding length so Decode can trim it back
// off.
func Encode(data []byte, k, n int) (EncodedData, error) {
	if k <= 0 || n <= k {
		return EncodedData{}, ErrInvalidShardCount
	}
	originalLength := len(data)

	segmentSize := BlockSize * k
	padded := len(data)
	if rem := padded % segmentSize; rem != 0 || padded == 0 {
		padded += segmentSize - rem
	}
	buf := make([]byte, padded)
	copy(buf, data)

	gen, err := buildSystematic(n, k)
	if err != nil {
		return EncodedData{}, err
	}

	numSegments := padded / segmentSize
	shards := make([][]byte, n)
	for i := range shards {
		shards[i] = make([]byte, numSegments*BlockSize)
	}

	dataVec := make([]uint16, k)
	for seg := 0; seg < numSegments; seg++ {
		segOff := seg * segmentSize
		for w := 0; w < wordsPerBlock; w++ {
			for j := 0; j < k; j++ {
				off := segOff + j*BlockSize + w*2
				dataVec[j] = uint16(buf[off]) | uint16(buf[off+1])<<8
			}
			outVec := gen.mulVec(dataVec)
			shardOff := seg*BlockSize + w*2
			for i := 0; i < n; i++ {
				shards[i][shardOff] = byte(outVec[i])
				shards[i][shardOff+1] = byte(outVec[i] >> 8)
			}
		}
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	return EncodedData{
		OriginalLength: originalLength,
		K:              k,
		N:              n,
		Shards:         shards,
		Indices:        indices,
	}, nil
}

// Decode reconstructs the original bytes from any k (or more, the first k
// are used) of enc's shards, identified by their Indices into the
// systematic generator matrix's rows.
func Decode(enc EncodedData) ([]byte, error) {
	if len(enc.Shards) < enc.K {
		return nil, ErrNotEnoughShards
	}
	if len(enc.Indices) != len(enc.Shards) {
		return nil, ErrIndexCountMismatch
	}

	shards := enc.Shards[:enc.K]
	idx := enc.Indices[:enc.K]

	blockLen := len(shards[0])
	for _, s := range shards {
		if len(s) != blockLen {
			return nil, ErrShardSizeMismatch
		}
	}

	gen, err := buildSystematic(enc.N, enc.K)
	if err != nil {
		return nil, err
	}

	sub := newMatrix(enc.K, enc.K)
	for i, id := range idx {
		if id < 0 || id >= enc.N {
			return nil, ErrIndexCountMismatch
		}
		copy(sub[i], gen[id])
	}
	subInv, err := sub.invert()
	if err != nil {
		return nil, err
	}

	numSegments := blockLen / BlockSize
	out := make([]byte, numSegments*BlockSize*enc.K)

	recVec := make([]uint16, enc.K)
	for seg := 0; seg < numSegments; seg++ {
		for w := 0; w < wordsPerBlock; w++ {
			off := seg*BlockSize + w*2
			for j, s := range shards {
				recVec[j] = uint16(s[off]) | uint16(s[off+1])<<8
			}
			dataVec := subInv.mulVec(recVec)
			for j := 0; j < enc.K; j++ {
				dataOff := seg*enc.K*BlockSize + j*BlockSize + w*2
				out[dataOff] = byte(dataVec[j])
				out[dataOff+1] = byte(dataVec[j] >> 8)
			}
		}
	}

	if enc.OriginalLength > len(out) {
		return nil, errors.New("erasure: original length exceeds decoded length")
	}
	return out[:enc.OriginalLength], nil
}
