// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package disputes

import "errors"

var (
	// ErrBadJudgementAge is returned when a Verdict's age does not match
	// either the current or the previous validator set epoch (spec §4.3).
	ErrBadJudgementAge = errors.New("disputes: judgement age out of range")

	// ErrBadJudgementKey is returned when a Judgment's index is duplicated
	// or out of range within the validator set its age selects.
	ErrBadJudgementKey = errors.New("disputes: bad judgement index")

	// ErrBadGuarantorKey is returned when a Culprit names a key not found
	// in the relevant validator set.
	ErrBadGuarantorKey = errors.New("disputes: unknown guarantor key")

	// ErrBadAuditorKey is returned when a Fault names a key not found in
	// the relevant validator set.
	ErrBadAuditorKey = errors.New("disputes: unknown auditor key")

	// ErrBadSignature is returned when an Ed25519 signature fails to
	// verify against the claimed key and message.
	ErrBadSignature = errors.New("disputes: bad signature")

	// ErrInsufficientVotes is returned when a Verdict does not carry a
	// supermajority of votes in either direction.
	ErrInsufficientVotes = errors.New("disputes: insufficient votes for verdict")

	// ErrDuplicateTarget is returned when two Verdicts name the same
	// target within one batch.
	ErrDuplicateTarget = errors.New("disputes: duplicate verdict target")

	// ErrAlreadyJudged is returned when a target has already reached a
	// final verdict in a prior block.
	ErrAlreadyJudged = errors.New("disputes: target already judged")

	// ErrCulpritWithoutVerdict is returned when a Culprit or Fault names a
	// target with no corresponding (negative) Verdict in the same batch.
	ErrCulpritWithoutVerdict = errors.New("disputes: culprit/fault without matching verdict")

	// ErrNotOrdered is returned when Verdicts, Culprits, or Faults are not
	// sorted per spec §5's ordering guarantee.
	ErrNotOrdered = errors.New("disputes: batch not canonically ordered")
)
