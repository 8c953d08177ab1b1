// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package block defines the concrete Block/Header/Body schema (spec §3)
// and the narrowed lifecycle the engine drives, generalized from this
// package's original opaque []byte-backed Block/ChainVM interfaces:
// BuildBlock/ParseBlock/GetBlock becomes engine.Transition's decode →
// apply → commit pipeline, and Accept/Reject/Verify becomes Validate plus
// the transactional commit/discard step described in spec §5.
package block

import (
	"errors"

	"github.com/luxfi/jam/codec"
)

// Status names where a Block sits in the local chain, mirrored from the
// original Accepted/Rejected/Verified vocabulary but attached to values
// rather than an opaque interface.
type Status uint8

const (
	Unknown Status = iota
	Processing
	Rejected
	Accepted
	Verified
)

func (s Status) String() string {
	switch s {
	case Processing:
		return "processing"
	case Rejected:
		return "rejected"
	case Accepted:
		return "accepted"
	case Verified:
		return "verified"
	default:
		return "unknown"
	}
}

// ErrExtrinsicHashMismatch is returned by Validate when the header's
// extrinsicHash does not match the body it is paired with (spec §3's
// invariant).
var ErrExtrinsicHashMismatch = errors.New("block: extrinsicHash mismatch")

// Block is header ‖ body (spec §6 "Block wire format").
type Block struct {
	Header Header
	Body   Body
}

// Encode writes encode(header) ‖ encode(body).
func (b Block) Encode(w *codec.Writer) {
	b.Header.Encode(w)
	b.Body.Encode(w)
}

// DecodeBlock decodes a Block.
func DecodeBlock(r *codec.Reader) (Block, error) {
	var blk Block
	var err error
	if blk.Header, err = DecodeHeader(r); err != nil {
		return blk, err
	}
	blk.Body, err = DecodeBody(r)
	return blk, err
}

// Validate checks the header/body extrinsicHash invariant from spec §3.
// It does not verify seals, entropy, or any extrinsic's internal
// validity — those are the job of safrole.Engine and disputes.Engine,
// which the caller invokes separately against the decoded body.
func (b Block) Validate() error {
	if b.Body.ExtrinsicHash() != b.Header.ExtrinsicHash {
		return ErrExtrinsicHashMismatch
	}
	return nil
}

// Seal produces a header carrying the computed extrinsicHash for body,
// leaving every other header field as given by h. Callers fill in the
// seal/VRF signatures afterwards, over EncodeUnsigned().
func Seal(h Header, body Body) Header {
	h.ExtrinsicHash = body.ExtrinsicHash()
	return h
}