// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package audit implements the post-execution audit tranche selector
// (spec §4.6): a deterministic Fisher-Yates shuffle of per-core work
// reports, seeded by a VRF output, used to pick up to 10 non-empty cores
// for sampling.
package audit

import (
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// prng is a ChaCha20-keystream-backed deterministic random source, the
// stream-cipher PRNG spec §4.6 step 1 calls for ("seed a ChaCha-style
// deterministic PRNG from the VRF bytes"), grounded on the same
// chacha20/chacha20poly1305 family already in the dependency graph via
// crypto/ringvrf's sibling packages.
type prng struct {
	cipher *chacha20.Cipher
}

// newPRNG seeds a prng from a 32-byte VRF output. ChaCha20 requires a
// 12-byte nonce; a zero nonce is used throughout since the key alone (the
// VRF output, unique per block/tranche by construction) already provides
// the uniqueness the shuffle needs.
func newPRNG(seed [32]byte) *prng {
	cipher, err := chacha20.NewUnauthenticatedCipher(seed[:], make([]byte, chacha20.NonceSize))
	if err != nil {
		// Only a wrong-length key or nonce can fail construction; both are
		// fixed-size arrays here, so this can never happen.
		panic(err)
	}
	return &prng{cipher: cipher}
}

func (p *prng) uint64() uint64 {
	var buf [8]byte
	p.cipher.XORKeyStream(buf[:], buf[:])
	return binary.LittleEndian.Uint64(buf[:])
}

// intn returns a value in [0, n). The modulo reduction carries the usual
// small, deterministic bias against a uniform distribution; that bias is
// irrelevant here since shuffle determinism, not sampling fairness, is the
// property spec §4.6 requires ("same VRF ⇒ same shuffled sequence").
func (p *prng) intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(p.uint64() % uint64(n))
}

// fisherYates shuffles s in place using p, the standard backward
// Fisher-Yates walk.
func fisherYates[T any](s []T, p *prng) {
	for i := len(s) - 1; i > 0; i-- {
		j := p.intn(i + 1)
		s[i], s[j] = s[j], s[i]
	}
}
