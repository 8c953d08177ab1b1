// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package codec implements the canonical, bit-exact serialization rules
// for every protocol object: variable-length naturals, fixed-width
// integers, discriminated unions, dictionaries, option-types and
// variable-length sequences.
package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when fewer bytes remain than a value requires.
	ErrTruncated = errors.New("codec: truncated input")

	// ErrOverflowingNat is returned when a variable-length natural would not
	// fit in the requested integer width.
	ErrOverflowingNat = errors.New("codec: overflowing natural")

	// ErrNonCanonicalNat is returned when a variable-length natural is
	// encoded with more bytes than the minimal canonical form requires.
	ErrNonCanonicalNat = errors.New("codec: non-canonical natural")
)

// ErrUnknownTag is returned when a discriminated union's tag byte does not
// match any known variant.
type ErrUnknownTag struct {
	Tag byte
}

func (e *ErrUnknownTag) Error() string {
	return fmt.Sprintf("codec: unknown tag %d", e.Tag)
}

// ErrLengthMismatch is returned when a decoded length does not match what
// the caller expected (e.g. a fixed-size vector of validators).
type ErrLengthMismatch struct {
	Expected int
	Found    int
}

func (e *ErrLengthMismatch) Error() string {
	return fmt.Sprintf("codec: length mismatch: expected %d, found %d", e.Expected, e.Found)
}
