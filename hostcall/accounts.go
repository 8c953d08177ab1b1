// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hostcall

// WriteResult is the outcome of a mutating Accounts method, letting the
// accounting rules (min_balance enforcement, §4.5 "Accounting") live in the
// Accounts implementation while the handler-level result code translation
// stays in Dispatcher.
type WriteResult int

const (
	WriteOK WriteResult = iota
	WriteFull
	WriteNoSuchService
)

// StorageWrite is the result of Accounts.WriteStorage.
type StorageWrite struct {
	PrevLen int
	Existed bool
	Result  WriteResult
}

// Accounts is the service-account store a Dispatcher operates against. It
// is implemented by state.Accounts; Dispatcher only depends on this
// interface so the host ABI can be tested without the full state package.
type Accounts interface {
	// Exists reports whether srvId names a live service account.
	Exists(srvId uint32) bool

	// ReadStorage reads a storage entry (key already hashed by the
	// caller per spec.md's "Read service storage (key hashed)").
	ReadStorage(srvId uint32, key []byte) (value []byte, ok bool)

	// WriteStorage inserts, updates, or (value == nil) deletes a storage
	// entry, applying the min_balance check itself and reverting with
	// WriteFull if it fails.
	WriteStorage(srvId uint32, key []byte, value []byte) StorageWrite

	// Preimage returns a previously provided preimage blob by its hash.
	Preimage(srvId uint32, hash [32]byte) (blob []byte, ok bool)

	// ServiceInfo returns the 96-byte encoded service-info blob (spec.md
	// §4.5 INFO).
	ServiceInfo(srvId uint32) (info [96]byte, ok bool)

	// RequestStatus returns requests[hash][length], the preimage-request
	// timeslot history (spec.md §4.5 FORGET state machine).
	RequestStatus(srvId uint32, hash [32]byte, length uint32) (status []uint32, ok bool)

	// SetRequestStatus stores a new status for requests[hash][length],
	// applying the same min_balance accounting as WriteStorage.
	SetRequestStatus(srvId uint32, hash [32]byte, length uint32, status []uint32) WriteResult

	// DeleteRequestStatus removes requests[hash][length] entirely.
	DeleteRequestStatus(srvId uint32, hash [32]byte, length uint32) WriteResult
}
