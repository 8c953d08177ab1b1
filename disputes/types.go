// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package disputes implements the verdict/culprit/fault judgement engine
// (spec §4.3): validating a Dispute batch and computing additions to the
// Safrole offender set.
package disputes

import "github.com/luxfi/jam/codec"

// Judgment is a single validator's signed vote on a disputed target
// (spec §3).
type Judgment struct {
	Vote      bool
	Index     uint32
	Signature [64]byte
}

func (j Judgment) Encode(w *codec.Writer) {
	w.WriteBool(j.Vote)
	w.WriteFixed(uint64(j.Index), 4)
	w.WriteBytes(j.Signature[:])
}

func DecodeJudgment(r *codec.Reader) (Judgment, error) {
	var j Judgment
	var err error
	if j.Vote, err = r.ReadBool(); err != nil {
		return j, err
	}
	idx, err := r.ReadFixed(4)
	if err != nil {
		return j, err
	}
	j.Index = uint32(idx)
	b, err := r.ReadBytes(64)
	if err != nil {
		return j, err
	}
	copy(j.Signature[:], b)
	return j, nil
}

// Verdict is a supermajority of Judgments about one disputed work-report
// target (spec §3).
type Verdict struct {
	Target codec.H32
	Age    uint32
	Votes  []Judgment
}

func (v Verdict) Encode(w *codec.Writer) {
	w.WriteBytes(v.Target[:])
	w.WriteFixed(uint64(v.Age), 4)
	codec.WriteSeq(w, v.Votes, func(w *codec.Writer, j Judgment) { j.Encode(w) })
}

func DecodeVerdict(r *codec.Reader) (Verdict, error) {
	var v Verdict
	b, err := r.ReadBytes(32)
	if err != nil {
		return v, err
	}
	copy(v.Target[:], b)
	age, err := r.ReadFixed(4)
	if err != nil {
		return v, err
	}
	v.Age = uint32(age)
	v.Votes, err = codec.ReadSeq(r, DecodeJudgment)
	return v, err
}

// Culprit names a validator who guaranteed a work-report later found
// invalid (spec §3).
type Culprit struct {
	Target    codec.H32
	Key       [32]byte
	Signature [64]byte
}

func (c Culprit) Encode(w *codec.Writer) {
	w.WriteBytes(c.Target[:])
	w.WriteBytes(c.Key[:])
	w.WriteBytes(c.Signature[:])
}

func DecodeCulprit(r *codec.Reader) (Culprit, error) {
	var c Culprit
	b, err := r.ReadBytes(32)
	if err != nil {
		return c, err
	}
	copy(c.Target[:], b)
	if b, err = r.ReadBytes(32); err != nil {
		return c, err
	}
	copy(c.Key[:], b)
	if b, err = r.ReadBytes(64); err != nil {
		return c, err
	}
	copy(c.Signature[:], b)
	return c, nil
}

// Fault names an auditor whose negative (or positive) judgment was
// contradicted by the eventual verdict (spec §3).
type Fault struct {
	Target    codec.H32
	Vote      bool
	Key       [32]byte
	Signature [64]byte
}

func (f Fault) Encode(w *codec.Writer) {
	w.WriteBytes(f.Target[:])
	w.WriteBool(f.Vote)
	w.WriteBytes(f.Key[:])
	w.WriteBytes(f.Signature[:])
}

func DecodeFault(r *codec.Reader) (Fault, error) {
	var f Fault
	b, err := r.ReadBytes(32)
	if err != nil {
		return f, err
	}
	copy(f.Target[:], b)
	if f.Vote, err = r.ReadBool(); err != nil {
		return f, err
	}
	if b, err = r.ReadBytes(32); err != nil {
		return f, err
	}
	copy(f.Key[:], b)
	if b, err = r.ReadBytes(64); err != nil {
		return f, err
	}
	copy(f.Signature[:], b)
	return f, nil
}

// Set is a Dispute extrinsic batch (spec §3).
type Set struct {
	Verdicts []Verdict
	Culprits []Culprit
	Faults   []Fault
}

func (d Set) Encode(w *codec.Writer) {
	codec.WriteSeq(w, d.Verdicts, func(w *codec.Writer, v Verdict) { v.Encode(w) })
	codec.WriteSeq(w, d.Culprits, func(w *codec.Writer, c Culprit) { c.Encode(w) })
	codec.WriteSeq(w, d.Faults, func(w *codec.Writer, f Fault) { f.Encode(w) })
}

func DecodeSet(r *codec.Reader) (Set, error) {
	var d Set
	var err error
	if d.Verdicts, err = codec.ReadSeq(r, DecodeVerdict); err != nil {
		return d, err
	}
	if d.Culprits, err = codec.ReadSeq(r, DecodeCulprit); err != nil {
		return d, err
	}
	if d.Faults, err = codec.ReadSeq(r, DecodeFault); err != nil {
		return d, err
	}
	return d, nil
}
