// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pvm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/codec"
)

func buildBlob(t *testing.T, jumpTable []uint32, elementSize uint8, code []byte, bitmask []byte) []byte {
	t.Helper()
	w := codec.NewWriter(64)
	w.WriteNat(uint64(len(jumpTable)))
	w.WriteByte(elementSize)
	w.WriteNat(uint64(len(code)))
	for _, e := range jumpTable {
		w.WriteFixed(uint64(e), int(elementSize))
	}
	w.WriteBytes(code)
	w.WriteBytes(bitmask)
	return w.Bytes()
}

func TestParseRoundTrip(t *testing.T) {
	code := []byte{byte(LoadImm), 1, 5, byte(TRAP)}
	bitmask := []byte{0b0000_1001} // bits 0 and 3 are instruction starts
	blob := buildBlob(t, []uint32{10, 20}, 4, code, bitmask)

	prog, err := Parse(blob)
	require.NoError(t, err)
	require.Equal(t, uint32(len(code)), prog.CodeLength)
	require.Equal(t, code, prog.Code)
	require.Equal(t, []uint32{10, 20}, prog.JumpTable)
	require.Equal(t, uint8(4), prog.ElementSize)
	require.True(t, prog.isInstructionStart(0))
	require.True(t, prog.isInstructionStart(3))
	require.False(t, prog.isInstructionStart(1))
}

func TestParseRejectsBadElementSize(t *testing.T) {
	blob := buildBlob(t, nil, 3, []byte{0}, []byte{0})
	_, err := Parse(blob)
	require.ErrorIs(t, err, ErrInvalidProgram)
}
