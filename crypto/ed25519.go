// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package crypto collects the signature primitives shared by the disputes
// judgement engine (Ed25519) and, via the ringvrf subpackage, Safrole.
// The teacher's own crypto/bls package is a stub (Sign/Verify return
// constants), so real verification is grounded on the corpus's audited,
// side-channel-hardened circl implementation rather than crypto/ed25519.
package crypto

import "github.com/cloudflare/circl/sign/ed25519"

// VerifyEd25519 checks sig over msg under the 32-byte public key pub.
func VerifyEd25519(pub [32]byte, msg []byte, sig [64]byte) bool {
	return ed25519.Verify(ed25519.PublicKey(pub[:]), msg, sig[:])
}

// SignEd25519 signs msg under the 64-byte expanded private key priv. It
// exists for symmetry with VerifyEd25519 and for test fixture generation;
// the engine itself only ever verifies.
func SignEd25519(priv ed25519.PrivateKey, msg []byte) [64]byte {
	var out [64]byte
	copy(out[:], ed25519.Sign(priv, msg))
	return out
}
