package safrole

import "errors"

var (
	// ErrInvalidSlot is returned when the incoming slot does not exceed the
	// current timeslot.
	ErrInvalidSlot = errors.New("safrole: invalid slot")
	// ErrTooManyExtrinsics is returned when a block carries more ticket
	// proofs than the configured maximum.
	ErrTooManyExtrinsics = errors.New("safrole: too many extrinsics")
	// ErrInvalidEntryIndex is returned when a ticket's entry index is out
	// of range.
	ErrInvalidEntryIndex = errors.New("safrole: invalid entry index")
	// ErrDuplicateTicket is returned when a ticket id already exists in the
	// accumulator.
	ErrDuplicateTicket = errors.New("safrole: duplicate ticket")
	// ErrInvalidRingVRF is returned when a ticket proof fails ring-VRF
	// verification.
	ErrInvalidRingVRF = errors.New("safrole: invalid ring VRF proof")
	// ErrInvalidSealSig is returned when the fallback seal signature fails
	// verification.
	ErrInvalidSealSig = errors.New("safrole: invalid seal signature")
	// ErrInvalidEpochMark is returned when a published EpochMark does not
	// match the freshly computed rotation.
	ErrInvalidEpochMark = errors.New("safrole: invalid epoch mark")
)
