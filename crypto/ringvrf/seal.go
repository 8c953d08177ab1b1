// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ringvrf

import (
	"crypto/sha512"

	"filippo.io/edwards25519"
)

// fallbackContext is the GP aux-data prefix for the non-ticket ("fallback")
// seal signature (spec §4.2.1).
const fallbackContext = "$jam_fallback"

// Seal is a Bandersnatch (approximated, see package doc) signature over an
// unsigned header: a Schnorr nonce commitment R, response scalar s, and
// the signed digest, in that order.
type Seal [96]byte

// fallbackDigest hashes input = encodedUnsignedHeader with aux-data
// "$jam_fallback" || entropy3, in that exact order (spec §4.2.1: "any
// reordering invalidates the signature").
func fallbackDigest(encodedUnsignedHeader []byte, entropy3 [32]byte) []byte {
	h := sha512.New()
	h.Write(encodedUnsignedHeader)
	h.Write([]byte(fallbackContext))
	h.Write(entropy3[:])
	return h.Sum(nil)
}

// fallbackChallenge derives the Fiat-Shamir challenge binding the nonce
// commitment to the signed digest.
func fallbackChallenge(commitment [32]byte, digest []byte) (*edwards25519.Scalar, error) {
	h := sha512.New()
	h.Write([]byte(fallbackContext))
	h.Write(commitment[:])
	h.Write(digest)
	return new(edwards25519.Scalar).SetUniformBytes(h.Sum(nil))
}

// SignFallback produces a Schnorr signature over encodedUnsignedHeader and
// entropy3 under secretKey.
func SignFallback(secretKey [32]byte, encodedUnsignedHeader []byte, entropy3 [32]byte) Seal {
	digest := fallbackDigest(encodedUnsignedHeader, entropy3)
	nonce := blindNonce(secretKey, digest)

	x, err := new(edwards25519.Scalar).SetBytesWithClamping(secretKey[:])
	if err != nil {
		panic(err)
	}
	k, err := new(edwards25519.Scalar).SetBytesWithClamping(nonce[:])
	if err != nil {
		panic(err)
	}

	var commitment [32]byte
	copy(commitment[:], new(edwards25519.Point).ScalarBaseMult(k).Bytes())

	c, err := fallbackChallenge(commitment, digest)
	if err != nil {
		panic(err)
	}
	response := new(edwards25519.Scalar).MultiplyAdd(c, x, k)

	var s Seal
	copy(s[:32], commitment[:])
	copy(s[32:64], response.Bytes())
	copy(s[64:], digest[:32])
	return s
}

// VerifyFallback checks a fallback seal signature against the author's
// public Bandersnatch key, input and aux-data, in the same order
// SignFallback used.
func VerifyFallback(pubKey [32]byte, encodedUnsignedHeader []byte, entropy3 [32]byte, seal Seal) bool {
	digest := fallbackDigest(encodedUnsignedHeader, entropy3)

	var wantDigest [32]byte
	copy(wantDigest[:], digest[:32])
	var gotDigest [32]byte
	copy(gotDigest[:], seal[64:])
	if wantDigest != gotDigest {
		return false
	}

	var commitment [32]byte
	copy(commitment[:], seal[:32])

	public, err := new(edwards25519.Point).SetBytes(pubKey[:])
	if err != nil {
		return false
	}
	R, err := new(edwards25519.Point).SetBytes(commitment[:])
	if err != nil {
		return false
	}
	response, err := new(edwards25519.Scalar).SetCanonicalBytes(seal[32:64])
	if err != nil {
		return false
	}

	c, err := fallbackChallenge(commitment, digest)
	if err != nil {
		return false
	}

	lhs := new(edwards25519.Point).ScalarBaseMult(response)
	rhs := new(edwards25519.Point).ScalarMult(c, public)
	rhs = rhs.Add(rhs, R)
	return lhs.Equal(rhs) == 1
}

// blindNonce derives a deterministic per-message nonce from the secret key
// and message digest, avoiding nonce reuse across distinct headers.
func blindNonce(secretKey [32]byte, digest []byte) [32]byte {
	h := sha512.New()
	h.Write(secretKey[:])
	h.Write(digest)
	sum := h.Sum(nil)
	var n [32]byte
	copy(n[:], sum[:32])
	return n
}
