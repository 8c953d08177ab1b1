// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package block

import (
	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/disputes"
	"github.com/luxfi/jam/safrole"
)

// Preimage is a body extrinsic requesting a blob be associated with a
// service's preimage store (spec §3 body.preimages).
type Preimage struct {
	Service uint32
	Blob    []byte
}

func (p Preimage) Encode(w *codec.Writer) {
	w.WriteNat(uint64(p.Service))
	w.WriteBlob(p.Blob)
}

func DecodePreimage(r *codec.Reader) (Preimage, error) {
	var p Preimage
	svc, err := r.ReadNat()
	if err != nil {
		return p, err
	}
	p.Service = uint32(svc)
	p.Blob, err = r.ReadBlob()
	return p, err
}

// Guarantee is a body extrinsic carrying a guarantor-signed work-report.
// spec §1 excludes the distribution/gossip transport that produces these
// (CE-131/132); the work-report's own internal schema (refine context,
// segment roots, result codes) is likewise out of this core's scope, so
// only the opaque encoded report and its guarantor credentials are kept
// here — enough to round-trip the block body and feed extrinsicHash.
type Guarantee struct {
	CoreIndex  uint32
	Report     []byte
	Credential []uint32
	Signatures [][64]byte
}

func (g Guarantee) Encode(w *codec.Writer) {
	w.WriteNat(uint64(g.CoreIndex))
	w.WriteBlob(g.Report)
	codec.WriteSeq(w, g.Credential, func(w *codec.Writer, idx uint32) { w.WriteNat(uint64(idx)) })
	codec.WriteSeq(w, g.Signatures, func(w *codec.Writer, sig [64]byte) { w.WriteBytes(sig[:]) })
}

func DecodeGuarantee(r *codec.Reader) (Guarantee, error) {
	var g Guarantee
	core, err := r.ReadNat()
	if err != nil {
		return g, err
	}
	g.CoreIndex = uint32(core)
	if g.Report, err = r.ReadBlob(); err != nil {
		return g, err
	}
	g.Credential, err = codec.ReadSeq(r, func(r *codec.Reader) (uint32, error) {
		n, err := r.ReadNat()
		return uint32(n), err
	})
	if err != nil {
		return g, err
	}
	g.Signatures, err = codec.ReadSeq(r, func(r *codec.Reader) ([64]byte, error) {
		var s [64]byte
		b, err := r.ReadBytes(64)
		if err != nil {
			return s, err
		}
		copy(s[:], b)
		return s, nil
	})
	return g, err
}

// Assurance is a body extrinsic: a validator's bitfield attesting to
// availability of the work-reports pending on each core at the given
// parent anchor (spec §3 body.assurances).
type Assurance struct {
	Anchor      codec.H32
	ValidatorID uint32
	Bitfield    []byte
	Signature   [64]byte
}

func (a Assurance) Encode(w *codec.Writer) {
	w.WriteBytes(a.Anchor[:])
	w.WriteNat(uint64(a.ValidatorID))
	w.WriteBlob(a.Bitfield)
	w.WriteBytes(a.Signature[:])
}

func DecodeAssurance(r *codec.Reader) (Assurance, error) {
	var a Assurance
	b, err := r.ReadBytes(32)
	if err != nil {
		return a, err
	}
	copy(a.Anchor[:], b)
	v, err := r.ReadNat()
	if err != nil {
		return a, err
	}
	a.ValidatorID = uint32(v)
	if a.Bitfield, err = r.ReadBlob(); err != nil {
		return a, err
	}
	if b, err = r.ReadBytes(64); err != nil {
		return a, err
	}
	copy(a.Signature[:], b)
	return a, nil
}

// Body is the block body (spec §3): the five extrinsic sequences whose
// blake_many digest, re-encoded and re-hashed, produces the header's
// extrinsicHash.
type Body struct {
	Tickets    []safrole.TicketProof
	Preimages  []Preimage
	Guarantees []Guarantee
	Assurances []Assurance
	Disputes   []disputes.Set
}

func (b Body) Encode(w *codec.Writer) {
	codec.WriteSeq(w, b.Tickets, func(w *codec.Writer, t safrole.TicketProof) { t.Encode(w) })
	codec.WriteSeq(w, b.Preimages, func(w *codec.Writer, p Preimage) { p.Encode(w) })
	codec.WriteSeq(w, b.Guarantees, func(w *codec.Writer, g Guarantee) { g.Encode(w) })
	codec.WriteSeq(w, b.Assurances, func(w *codec.Writer, a Assurance) { a.Encode(w) })
	codec.WriteSeq(w, b.Disputes, func(w *codec.Writer, d disputes.Set) { d.Encode(w) })
}

func DecodeBody(r *codec.Reader) (Body, error) {
	var b Body
	var err error
	if b.Tickets, err = codec.ReadSeq(r, safrole.DecodeTicketProof); err != nil {
		return b, err
	}
	if b.Preimages, err = codec.ReadSeq(r, DecodePreimage); err != nil {
		return b, err
	}
	if b.Guarantees, err = codec.ReadSeq(r, DecodeGuarantee); err != nil {
		return b, err
	}
	if b.Assurances, err = codec.ReadSeq(r, DecodeAssurance); err != nil {
		return b, err
	}
	if b.Disputes, err = codec.ReadSeq(r, disputes.DecodeSet); err != nil {
		return b, err
	}
	return b, nil
}

// elementHashes returns blake_many(body): one Blake2b-256 digest per
// top-level extrinsic element, in body field order (spec §4.1).
func (b Body) elementHashes() []codec.H32 {
	var hashes []codec.H32
	hashOne := func(enc func(*codec.Writer)) codec.H32 {
		w := codec.NewWriter(64)
		enc(w)
		return codec.Blake2b256(w.Bytes())
	}
	for _, t := range b.Tickets {
		t := t
		hashes = append(hashes, hashOne(func(w *codec.Writer) { t.Encode(w) }))
	}
	for _, p := range b.Preimages {
		p := p
		hashes = append(hashes, hashOne(func(w *codec.Writer) { p.Encode(w) }))
	}
	for _, g := range b.Guarantees {
		g := g
		hashes = append(hashes, hashOne(func(w *codec.Writer) { g.Encode(w) }))
	}
	for _, a := range b.Assurances {
		a := a
		hashes = append(hashes, hashOne(func(w *codec.Writer) { a.Encode(w) }))
	}
	for _, d := range b.Disputes {
		d := d
		hashes = append(hashes, hashOne(func(w *codec.Writer) { d.Encode(w) }))
	}
	return hashes
}

// ExtrinsicHash computes header.extrinsicHash = Blake2b(encode(blake_many(body)))
// per spec §3's invariant and §6's block wire-format rule.
func (b Body) ExtrinsicHash() codec.H32 {
	hashes := b.elementHashes()
	w := codec.NewWriter(32 * (len(hashes) + 1))
	codec.EncodeHashSeq(w, hashes)
	return codec.Blake2b256(w.Bytes())
}
