// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package safrole implements the per-slot / per-epoch block-production
// state transition (spec §4.2): VRF ticket ingestion, validator rotation,
// ring-VRF epoch root, and fallback seal derivation.
package safrole

import (
	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/set"
)

// Ticket is a sealed entry in the ticket accumulator (spec §3).
type Ticket struct {
	ID         codec.H32
	EntryIndex uint8
}

// Encode writes id (32) ‖ entryIndex (var-nat).
func (t Ticket) Encode(w *codec.Writer) {
	w.WriteBytes(t.ID[:])
	w.WriteNat(uint64(t.EntryIndex))
}

// DecodeTicket decodes a Ticket.
func DecodeTicket(r *codec.Reader) (Ticket, error) {
	var t Ticket
	b, err := r.ReadBytes(32)
	if err != nil {
		return t, err
	}
	copy(t.ID[:], b)
	idx, err := r.ReadNat()
	if err != nil {
		return t, err
	}
	if idx > 255 {
		return t, codec.ErrOverflowingNat
	}
	t.EntryIndex = uint8(idx)
	return t, nil
}

// TicketProof is a block-body extrinsic: an unverified ring-VRF proof of a
// ticket submission (spec §3 Block.body.tickets).
type TicketProof struct {
	EntryIndex uint8
	Proof      []byte // ring-VRF proof bytes, opaque to the codec
}

func (p TicketProof) Encode(w *codec.Writer) {
	w.WriteNat(uint64(p.EntryIndex))
	w.WriteBlob(p.Proof)
}

func DecodeTicketProof(r *codec.Reader) (TicketProof, error) {
	var p TicketProof
	idx, err := r.ReadNat()
	if err != nil {
		return p, err
	}
	if idx > 255 {
		return p, codec.ErrOverflowingNat
	}
	p.EntryIndex = uint8(idx)
	p.Proof, err = r.ReadBlob()
	return p, err
}

// Validator is a single active/pending/previous/staging set member. The
// full key material lives in block.ValidatorKey; safrole only needs the
// Bandersnatch and Ed25519 public keys to verify tickets and judgments, so
// Validator stores those directly to avoid an import cycle on package
// block (which itself embeds Safrole-produced EpochMarks).
type Validator struct {
	Bandersnatch [32]byte
	Ed25519      [32]byte
}

// IsNull reports whether this is a padding ("null") validator slot.
func (v Validator) IsNull() bool {
	return v.Bandersnatch == [32]byte{} && v.Ed25519 == [32]byte{}
}

// State is the Safrole component of the overall protocol state (spec §3).
type State struct {
	PendingSet        []Validator
	ActiveSet         []Validator
	PreviousSet       []Validator
	StagingSet        []Validator
	EpochRoot         [144]byte
	SealTickets       []Ticket
	TicketAccumulator []Ticket
	Entropy           [4]codec.H32
	Offenders         set.Set[[32]byte]
}

// Encode writes the Safrole state schema from spec §4.1's table: pending
// (len=N_val) ‖ epochRoot (144) ‖ sealTickets (len=E) ‖ ticketAccumulator
// (var-seq). The remaining fields (active/previous/staging/entropy/
// offenders) are carried alongside in the full protocol state and encoded
// the same way for snapshotting.
func (s State) Encode(w *codec.Writer) {
	encodeValidatorSlice(w, s.PendingSet)
	w.WriteBytes(s.EpochRoot[:])
	codec.WriteSeq(w, s.SealTickets, func(w *codec.Writer, t Ticket) { t.Encode(w) })
	codec.WriteSeq(w, s.TicketAccumulator, func(w *codec.Writer, t Ticket) { t.Encode(w) })
	encodeValidatorSlice(w, s.ActiveSet)
	encodeValidatorSlice(w, s.PreviousSet)
	encodeValidatorSlice(w, s.StagingSet)
	for _, e := range s.Entropy {
		w.WriteBytes(e[:])
	}
	offenders := make([]codec.H32, 0, s.Offenders.Len())
	for _, k := range s.Offenders.List() {
		offenders = append(offenders, codec.H32(k))
	}
	codec.EncodeHashSeq(w, offenders)
}

func encodeValidatorSlice(w *codec.Writer, vs []Validator) {
	codec.WriteSeq(w, vs, func(w *codec.Writer, v Validator) {
		w.WriteBytes(v.Bandersnatch[:])
		w.WriteBytes(v.Ed25519[:])
	})
}

func decodeValidatorSlice(r *codec.Reader) ([]Validator, error) {
	return codec.ReadSeq(r, func(r *codec.Reader) (Validator, error) {
		var v Validator
		b, err := r.ReadBytes(32)
		if err != nil {
			return v, err
		}
		copy(v.Bandersnatch[:], b)
		b, err = r.ReadBytes(32)
		if err != nil {
			return v, err
		}
		copy(v.Ed25519[:], b)
		return v, nil
	})
}

// DecodeState decodes a Safrole State.
func DecodeState(r *codec.Reader) (State, error) {
	var s State
	var err error
	if s.PendingSet, err = decodeValidatorSlice(r); err != nil {
		return s, err
	}
	b, err := r.ReadBytes(144)
	if err != nil {
		return s, err
	}
	copy(s.EpochRoot[:], b)
	if s.SealTickets, err = codec.ReadSeq(r, DecodeTicket); err != nil {
		return s, err
	}
	if s.TicketAccumulator, err = codec.ReadSeq(r, DecodeTicket); err != nil {
		return s, err
	}
	if s.ActiveSet, err = decodeValidatorSlice(r); err != nil {
		return s, err
	}
	if s.PreviousSet, err = decodeValidatorSlice(r); err != nil {
		return s, err
	}
	if s.StagingSet, err = decodeValidatorSlice(r); err != nil {
		return s, err
	}
	for i := range s.Entropy {
		b, err := r.ReadBytes(32)
		if err != nil {
			return s, err
		}
		copy(s.Entropy[i][:], b)
	}
	offenders, err := codec.DecodeHashSeq(r)
	if err != nil {
		return s, err
	}
	s.Offenders = make(set.Set[[32]byte], len(offenders))
	for _, h := range offenders {
		s.Offenders.Add([32]byte(h))
	}
	return s, nil
}
