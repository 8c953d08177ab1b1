// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vectors

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/codec"
)

// buildBlob assembles a program blob in the same deblob format pvm.Parse
// expects (spec.md §4.4), with no jump table.
func buildBlob(t *testing.T, code, bitmask []byte) []byte {
	t.Helper()
	w := codec.NewWriter(32)
	w.WriteNat(0)
	w.WriteByte(4)
	w.WriteNat(uint64(len(code)))
	w.WriteBytes(code)
	w.WriteBytes(bitmask)
	return w.Bytes()
}

func asJSONInts(t *testing.T, b []byte) string {
	t.Helper()
	ints := make([]int, len(b))
	for i, x := range b {
		ints[i] = int(x)
	}
	out, err := json.Marshal(ints)
	require.NoError(t, err)
	return string(out)
}

func TestDecodeAndRunTrapVector(t *testing.T) {
	// LoadImm r1,5 ; TRAP
	code := []byte{17, 1, 5, 0}
	bitmask := []byte{0b0000_1001}
	blob := buildBlob(t, code, bitmask)

	doc := fmt.Sprintf(`{
		"program": %s,
		"initial-regs": [0,0,0,0,0,0,0,0,0,0,0,0,0],
		"initial-pc": 0,
		"initial-gas": "1000",
		"expected-status": "panic",
		"expected-regs": [0,5,0,0,0,0,0,0,0,0,0,0,0]
	}`, asJSONInts(t, blob))

	v, err := Decode([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, uint32(0), v.InitialPC)
	require.Equal(t, i64(1000), v.InitialGas)

	out, err := Run(v)
	require.NoError(t, err)
	require.NoError(t, Check(v, out))
}

func TestDecodeAllRejectsMismatch(t *testing.T) {
	code := []byte{17, 1, 5, 0}
	bitmask := []byte{0b0000_1001}
	blob := buildBlob(t, code, bitmask)

	doc := fmt.Sprintf(`[{
		"program": %s,
		"initial-regs": [0,0,0,0,0,0,0,0,0,0,0,0,0],
		"initial-pc": 0,
		"initial-gas": 1000,
		"expected-status": "halt"
	}]`, asJSONInts(t, blob))

	vs, err := DecodeAll([]byte(doc))
	require.NoError(t, err)
	require.Len(t, vs, 1)

	out, err := Run(vs[0])
	require.NoError(t, err)
	require.Error(t, Check(vs[0], out))
}
