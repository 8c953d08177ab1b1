// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package block defines the concrete Block/Header/Body schema (spec §3)
// that the engine decodes and validates. It declares no lifecycle
// interfaces: Block is a plain struct of Header and Body.
package block

import "github.com/luxfi/jam/codec"

// ValidatorKey is the validator key quadruple from spec §3.
type ValidatorKey struct {
	Bandersnatch [32]byte
	Ed25519      [32]byte
	BLS          [144]byte
	Metadata     [128]byte
}

// Encode writes the quadruple in field order: bandersnatch, ed25519, bls,
// metadata.
func (v ValidatorKey) Encode(w *codec.Writer) {
	w.WriteBytes(v.Bandersnatch[:])
	w.WriteBytes(v.Ed25519[:])
	w.WriteBytes(v.BLS[:])
	w.WriteBytes(v.Metadata[:])
}

// DecodeValidatorKey decodes a ValidatorKey.
func DecodeValidatorKey(r *codec.Reader) (ValidatorKey, error) {
	var v ValidatorKey
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
	b, err = r.ReadBytes(144)
	if err != nil {
		return v, err
	}
	copy(v.BLS[:], b)
	b, err = r.ReadBytes(128)
	if err != nil {
		return v, err
	}
	copy(v.Metadata[:], b)
	return v, nil
}

// EpochMark is published by Safrole on epoch rotation (spec §4.2 step 5).
type EpochMark struct {
	Entropy        codec.H32
	TicketsEntropy codec.H32
	Validators     []ValidatorKey
}

func (m EpochMark) Encode(w *codec.Writer) {
	w.WriteBytes(m.Entropy[:])
	w.WriteBytes(m.TicketsEntropy[:])
	codec.WriteSeq(w, m.Validators, func(w *codec.Writer, v ValidatorKey) { v.Encode(w) })
}

func DecodeEpochMark(r *codec.Reader) (EpochMark, error) {
	var m EpochMark
	b, err := r.ReadBytes(32)
	if err != nil {
		return m, err
	}
	copy(m.Entropy[:], b)
	b, err = r.ReadBytes(32)
	if err != nil {
		return m, err
	}
	copy(m.TicketsEntropy[:], b)
	vs, err := codec.ReadSeq(r, DecodeValidatorKey)
	if err != nil {
		return m, err
	}
	m.Validators = vs
	return m, nil
}

// WinnersMark carries the epoch's winning ticket ids once the ticket
// accumulator has filled (spec §4.2 step 6).
type WinnersMark struct {
	TicketIDs []codec.H32
}

func (m WinnersMark) Encode(w *codec.Writer) {
	codec.EncodeHashSeq(w, m.TicketIDs)
}

func DecodeWinnersMark(r *codec.Reader) (WinnersMark, error) {
	ids, err := codec.DecodeHashSeq(r)
	if err != nil {
		return WinnersMark{}, err
	}
	return WinnersMark{TicketIDs: ids}, nil
}

// Header is the block header (spec §3).
type Header struct {
	Parent         codec.H32
	PriorStateRoot codec.H32
	ExtrinsicHash  codec.H32
	Timeslot       uint32
	EpochMark      *EpochMark
	WinnersMark    *WinnersMark
	OffendersMark  []codec.H32
	AuthorIndex    uint16
	VRFSig         [96]byte
	SealSig        [96]byte
}

// encodeUnsigned writes every field except SealSig, which is what gets
// signed to produce it (spec §4.2.1 "encode_unsigned_header").
func (h Header) encodeUnsigned(w *codec.Writer) {
	w.WriteBytes(h.Parent[:])
	w.WriteBytes(h.PriorStateRoot[:])
	w.WriteBytes(h.ExtrinsicHash[:])
	w.WriteFixed(uint64(h.Timeslot), 4)
	codec.WriteOpt(w, h.EpochMark, func(w *codec.Writer, m EpochMark) { m.Encode(w) })
	codec.WriteOpt(w, h.WinnersMark, func(w *codec.Writer, m WinnersMark) { m.Encode(w) })
	codec.EncodeHashSeq(w, h.OffendersMark)
	w.WriteFixed(uint64(h.AuthorIndex), 2)
	w.WriteBytes(h.VRFSig[:])
}

// EncodeUnsigned returns encode_unsigned_header(H), the exact bytes that
// are signed to produce the Bandersnatch seal and VRF signatures.
func (h Header) EncodeUnsigned() []byte {
	w := codec.NewWriter(256)
	h.encodeUnsigned(w)
	return w.Bytes()
}

// Encode writes the full header, including the seal signature.
func (h Header) Encode(w *codec.Writer) {
	h.encodeUnsigned(w)
	w.WriteBytes(h.SealSig[:])
}

// DecodeHeader decodes a Header.
func DecodeHeader(r *codec.Reader) (Header, error) {
	var h Header
	b, err := r.ReadBytes(32)
	if err != nil {
		return h, err
	}
	copy(h.Parent[:], b)
	if b, err = r.ReadBytes(32); err != nil {
		return h, err
	}
	copy(h.PriorStateRoot[:], b)
	if b, err = r.ReadBytes(32); err != nil {
		return h, err
	}
	copy(h.ExtrinsicHash[:], b)
	ts, err := r.ReadFixed(4)
	if err != nil {
		return h, err
	}
	h.Timeslot = uint32(ts)
	h.EpochMark, err = codec.ReadOpt(r, DecodeEpochMark)
	if err != nil {
		return h, err
	}
	h.WinnersMark, err = codec.ReadOpt(r, DecodeWinnersMark)
	if err != nil {
		return h, err
	}
	h.OffendersMark, err = codec.DecodeHashSeq(r)
	if err != nil {
		return h, err
	}
	ai, err := r.ReadFixed(2)
	if err != nil {
		return h, err
	}
	h.AuthorIndex = uint16(ai)
	if b, err = r.ReadBytes(96); err != nil {
		return h, err
	}
	copy(h.VRFSig[:], b)
	if b, err = r.ReadBytes(96); err != nil {
		return h, err
	}
	copy(h.SealSig[:], b)
	return h, nil
}

// RecentHistoryEntry is owned by the `recent` state vector (spec §3);
// hashes are stored by value, never by back-reference.
type RecentHistoryEntry struct {
	HeaderHash          codec.H32
	AccountLogSuperPeak codec.H32
	StateRoot           codec.H32
	ReportedPackages    map[codec.H32]codec.H32
}

func (e RecentHistoryEntry) Encode(w *codec.Writer) {
	w.WriteBytes(e.HeaderHash[:])
	w.WriteBytes(e.AccountLogSuperPeak[:])
	w.WriteBytes(e.StateRoot[:])
	entries := make([]codec.MapEntry[codec.H32], 0, len(e.ReportedPackages))
	for k, v := range e.ReportedPackages {
		k, v := k, v
		entries = append(entries, codec.MapEntry[codec.H32]{KeyBytes: k[:], Value: v})
	}
	codec.WriteMap(w, entries, func(w *codec.Writer, h codec.H32) { w.WriteBytes(h[:]) })
}

// DecodeRecentHistoryEntry decodes a RecentHistoryEntry.
func DecodeRecentHistoryEntry(r *codec.Reader) (RecentHistoryEntry, error) {
	var e RecentHistoryEntry
	b, err := r.ReadBytes(32)
	if err != nil {
		return e, err
	}
	copy(e.HeaderHash[:], b)
	if b, err = r.ReadBytes(32); err != nil {
		return e, err
	}
	copy(e.AccountLogSuperPeak[:], b)
	if b, err = r.ReadBytes(32); err != nil {
		return e, err
	}
	copy(e.StateRoot[:], b)

	decodeKey := func(r *codec.Reader) (codec.H32, error) {
		var k codec.H32
		b, err := r.ReadBytes(32)
		if err != nil {
			return k, err
		}
		copy(k[:], b)
		return k, nil
	}
	decodeValue := func(r *codec.Reader) (codec.H32, error) {
		var v codec.H32
		b, err := r.ReadBytes(32)
		if err != nil {
			return v, err
		}
		copy(v[:], b)
		return v, nil
	}
	entries, keys, err := codec.ReadMap(r, decodeKey, decodeValue)
	if err != nil {
		return e, err
	}
	e.ReportedPackages = make(map[codec.H32]codec.H32, len(entries))
	for i, k := range keys {
		e.ReportedPackages[k] = entries[i].Value
	}
	return e, nil
}
