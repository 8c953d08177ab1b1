// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package disputes

import (
	"sort"

	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/crypto"
	"github.com/luxfi/jam/internal/xerrs"
	"github.com/luxfi/jam/safrole"
	"github.com/luxfi/jam/set"
)

// validMessage and invalidMessage are the domain-separation prefixes a
// judgement's signature covers, per spec §4.3 ("each Judgment signs over
// a domain tag plus the disputed target's hash").
var (
	validMessage     = []byte("jam_valid")
	invalidMessage   = []byte("jam_invalid")
	guaranteeMessage = []byte("jam_guarantee")
)

// Epoch names which validator set a Verdict's age refers to (spec §4.3).
type Epoch int

const (
	CurrentEpoch Epoch = iota
	PreviousEpoch
)

// Engine validates Dispute batches against a pair of validator sets and
// computes the resulting offender delta, grounded on safrole.Engine's
// stateless, explicit-state pattern.
type Engine struct {
	cfg config.Config
}

// New returns a disputes Engine configured with cfg.
func New(cfg config.Config) *Engine {
	return &Engine{cfg: cfg}
}

// Outcome is the result of successfully validating a Set: the work-report
// targets that reached a positive or negative verdict this block, and the
// Ed25519 keys newly identified as offenders.
type Outcome struct {
	Good      []codec.H32
	Bad       []codec.H32
	Offenders [][32]byte
}

// Validate checks a Dispute batch against the current (kappa) and
// previous (lambda) validator sets and the set of targets already judged
// in prior blocks, per spec §4.3's verdict/culprit/fault algorithm.
//
// currentEpoch/previousEpoch give the raw epoch index each age value is
// compared against; a Verdict whose age matches neither is rejected.
// existingOffenders holds keys already recorded as offenders in prior
// blocks; a Culprit or Fault naming one is rejected, per spec §4.3's
// eligible-key set κ ∪ λ \ offenders.
func (e *Engine) Validate(d Set, kappa, lambda []safrole.Validator, currentEpoch, previousEpoch uint32, alreadyJudged map[codec.H32]bool, existingOffenders set.Set[[32]byte]) (Outcome, error) {
	if err := checkOrdered(d); err != nil {
		return Outcome{}, err
	}

	var out Outcome
	verdictSign := make(map[codec.H32]bool, len(d.Verdicts))
	seenTargets := make(map[codec.H32]bool, len(d.Verdicts))

	for _, v := range d.Verdicts {
		if seenTargets[v.Target] {
			return Outcome{}, ErrDuplicateTarget
		}
		seenTargets[v.Target] = true
		if alreadyJudged[v.Target] {
			return Outcome{}, ErrAlreadyJudged
		}

		var set []safrole.Validator
		switch v.Age {
		case currentEpoch:
			set = kappa
		case previousEpoch:
			set = lambda
		default:
			return Outcome{}, ErrBadJudgementAge
		}

		positive, err := e.tallyVerdict(v, set)
		if err != nil {
			return Outcome{}, err
		}
		verdictSign[v.Target] = positive
		if positive {
			out.Good = append(out.Good, v.Target)
		} else {
			out.Bad = append(out.Bad, v.Target)
		}
	}

	offenders := make(map[[32]byte]bool)

	for _, c := range d.Culprits {
		positive, ok := verdictSign[c.Target]
		if !ok || positive {
			return Outcome{}, ErrCulpritWithoutVerdict
		}
		if (!keyInSet(c.Key, kappa) && !keyInSet(c.Key, lambda)) || existingOffenders.Contains(c.Key) {
			return Outcome{}, ErrBadGuarantorKey
		}
		if !crypto.VerifyEd25519(c.Key, append(append([]byte{}, guaranteeMessage...), c.Target[:]...), c.Signature) {
			return Outcome{}, ErrBadSignature
		}
		offenders[c.Key] = true
	}

	for _, f := range d.Faults {
		positive, ok := verdictSign[f.Target]
		if !ok {
			return Outcome{}, ErrCulpritWithoutVerdict
		}
		if f.Vote == positive {
			// The auditor's claimed vote agrees with the final verdict:
			// nothing to fault.
			continue
		}
		if (!keyInSet(f.Key, kappa) && !keyInSet(f.Key, lambda)) || existingOffenders.Contains(f.Key) {
			return Outcome{}, ErrBadAuditorKey
		}
		msg := validMessage
		if !f.Vote {
			msg = invalidMessage
		}
		if !crypto.VerifyEd25519(f.Key, append(append([]byte{}, msg...), f.Target[:]...), f.Signature) {
			return Outcome{}, ErrBadSignature
		}
		offenders[f.Key] = true
	}

	for k := range offenders {
		out.Offenders = append(out.Offenders, k)
	}
	sort.Slice(out.Offenders, func(i, j int) bool {
		return lessKey(out.Offenders[i], out.Offenders[j])
	})
	return out, nil
}

// tallyVerdict checks that v carries a supermajority of Judgments in one
// direction, each validly signed by a distinct member of set, and reports
// whether the supermajority was positive.
func (e *Engine) tallyVerdict(v Verdict, set []safrole.Validator) (bool, error) {
	threshold := e.cfg.SupermajorityThreshold()
	var errs xerrs.Errs
	seen := make(map[uint32]bool, len(v.Votes))
	positives, negatives := 0, 0

	for _, j := range v.Votes {
		if seen[j.Index] {
			errs.Add(ErrBadJudgementKey)
			continue
		}
		seen[j.Index] = true
		if int(j.Index) >= len(set) {
			errs.Add(ErrBadJudgementKey)
			continue
		}
		key := set[j.Index].Ed25519
		msg := validMessage
		if !j.Vote {
			msg = invalidMessage
		}
		if !crypto.VerifyEd25519(key, append(append([]byte{}, msg...), v.Target[:]...), j.Signature) {
			errs.Add(ErrBadSignature)
			continue
		}
		if j.Vote {
			positives++
		} else {
			negatives++
		}
	}
	if errs.Errored() {
		return false, errs.First()
	}

	switch {
	case positives >= threshold:
		return true, nil
	case negatives >= threshold:
		return false, nil
	default:
		return false, ErrInsufficientVotes
	}
}

func keyInSet(key [32]byte, set []safrole.Validator) bool {
	for _, v := range set {
		if v.Ed25519 == key {
			return true
		}
	}
	return false
}

func lessKey(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// checkOrdered verifies the canonical ordering guarantee from spec §5:
// verdicts sorted by target, culprits and faults each sorted by (target,
// key).
func checkOrdered(d Set) error {
	for i := 1; i < len(d.Verdicts); i++ {
		if !lessH32(d.Verdicts[i-1].Target, d.Verdicts[i].Target) {
			return ErrNotOrdered
		}
	}
	for i := 1; i < len(d.Culprits); i++ {
		if !culpritLess(d.Culprits[i-1], d.Culprits[i]) {
			return ErrNotOrdered
		}
	}
	for i := 1; i < len(d.Faults); i++ {
		if !faultLess(d.Faults[i-1], d.Faults[i]) {
			return ErrNotOrdered
		}
	}
	return nil
}

func lessH32(a, b codec.H32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func culpritLess(a, b Culprit) bool {
	if a.Target != b.Target {
		return lessH32(a.Target, b.Target)
	}
	return lessKey(a.Key, b.Key)
}

func faultLess(a, b Fault) bool {
	if a.Target != b.Target {
		return lessH32(a.Target, b.Target)
	}
	return lessKey(a.Key, b.Key)
}
