// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package safrole

import (
	"testing"

	"filippo.io/edwards25519"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/crypto/ringvrf"
	"github.com/luxfi/jam/log"
	"github.com/luxfi/jam/set"
)

// bandersnatchPubKey derives the public key belonging to secretKey, the
// same way ringvrf.Prove does, so test fixtures double as a ring a real
// proof can be verified against.
func bandersnatchPubKey(secretKey [32]byte) [32]byte {
	x, err := new(edwards25519.Scalar).SetBytesWithClamping(secretKey[:])
	if err != nil {
		panic(err)
	}
	var pub [32]byte
	copy(pub[:], new(edwards25519.Point).ScalarBaseMult(x).Bytes())
	return pub
}

func testConfig() config.Config {
	return config.Config{
		NumValidators:          3,
		EpochDuration:          4,
		TicketsPerValidator:    2,
		MaxTicketsPerExtrinsic: 6,
	}
}

func testState(cfg config.Config) State {
	vs := make([]Validator, cfg.NumValidators)
	for i := range vs {
		secret := [32]byte{byte(i + 1)}
		vs[i] = Validator{Bandersnatch: bandersnatchPubKey(secret), Ed25519: [32]byte{byte(i + 10)}}
	}
	return State{
		PendingSet:  append([]Validator(nil), vs...),
		ActiveSet:   append([]Validator(nil), vs...),
		PreviousSet: append([]Validator(nil), vs...),
		StagingSet:  append([]Validator(nil), vs...),
		Offenders:   make(set.Set[[32]byte]),
	}
}

func proofFor(t *testing.T, s State, entryIndex uint8) TicketProof {
	t.Helper()
	root, err := ringvrf.EpochRoot(activeBandersnatchKeys(s.ActiveSet))
	require.NoError(t, err)
	secret := [32]byte{byte(entryIndex + 1)}
	nonce := [32]byte{byte(entryIndex + 99)}
	proof := ringvrf.Prove(root, entryIndex, secret, nonce)
	var raw []byte
	raw = append(raw, proof.Commitment[:]...)
	raw = append(raw, proof.Public[:]...)
	raw = append(raw, proof.Response[:]...)
	raw = append(raw, proof.Output[:]...)
	return TicketProof{EntryIndex: entryIndex, Proof: raw}
}

func TestApplyRejectsNonAdvancingSlot(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)
	_, err := e.Apply(&s, 5, SlotInput{Slot: 5})
	require.ErrorIs(t, err, ErrInvalidSlot)
}

func TestApplyRejectsTooManyExtrinsics(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)
	proofs := make([]TicketProof, cfg.MaxTicketsPerExtrinsic+1)
	_, err := e.Apply(&s, 0, SlotInput{Slot: 1, TicketExtrinsic: proofs})
	require.ErrorIs(t, err, ErrTooManyExtrinsics)
}

func TestApplyIngestsTicketsAndSorts(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)

	p1 := proofFor(t, s, 0)
	p2 := proofFor(t, s, 1)

	res, err := e.Apply(&s, 0, SlotInput{Slot: 1, TicketExtrinsic: []TicketProof{p1, p2}})
	require.NoError(t, err)
	require.Equal(t, Sealed, res.Phase)
	require.Len(t, s.TicketAccumulator, 2)
	require.True(t, lessH32(s.TicketAccumulator[0].ID, s.TicketAccumulator[1].ID))
}

func TestApplyRejectsDuplicateTicket(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)

	p := proofFor(t, s, 0)
	_, err := e.Apply(&s, 0, SlotInput{Slot: 1, TicketExtrinsic: []TicketProof{p, p}})
	require.ErrorIs(t, err, ErrDuplicateTicket)
}

func TestApplyLeavesStateUnchangedOnError(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)
	before := s

	_, err := e.Apply(&s, 0, SlotInput{Slot: 1, TicketExtrinsic: []TicketProof{{EntryIndex: 0, Proof: []byte("bad")}}})
	require.ErrorIs(t, err, ErrInvalidRingVRF)
	require.Equal(t, before.TicketAccumulator, s.TicketAccumulator)
}

func TestApplyRotatesEpochAndProducesEpochMark(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)

	res, err := e.Apply(&s, 0, SlotInput{Slot: uint32(cfg.EpochDuration)})
	require.NoError(t, err)
	require.Equal(t, Sealed, res.Phase)
	require.NotNil(t, res.EpochMark)
	require.Len(t, s.PendingSet, cfg.NumValidators)
}

func TestApplyRejectsEntryIndexAtOrAboveLimit(t *testing.T) {
	cfg := testConfig()
	e := New(cfg, log.NoOp())
	s := testState(cfg)

	p := proofFor(t, s, uint8(cfg.TicketsPerValidator))
	_, err := e.Apply(&s, 0, SlotInput{Slot: 1, TicketExtrinsic: []TicketProof{p}})
	require.ErrorIs(t, err, ErrInvalidEntryIndex)
}

func TestApplyMixesIncomingEntropyIntoEpochRotation(t *testing.T) {
	cfg := testConfig()

	s1 := testState(cfg)
	e1 := New(cfg, log.NoOp())
	res1, err := e1.Apply(&s1, 0, SlotInput{Slot: uint32(cfg.EpochDuration), IncomingEntropy: codec.H32{0x01}})
	require.NoError(t, err)

	s2 := testState(cfg)
	e2 := New(cfg, log.NoOp())
	res2, err := e2.Apply(&s2, 0, SlotInput{Slot: uint32(cfg.EpochDuration), IncomingEntropy: codec.H32{0x02}})
	require.NoError(t, err)

	require.NotEqual(t, res1.EpochMark.Entropy, res2.EpochMark.Entropy,
		"distinct IncomingEntropy must produce distinct post-rotation entropy")
}

func TestTicketEncodeDecodeRoundTrip(t *testing.T) {
	tk := Ticket{ID: codec.H32{1, 2, 3}, EntryIndex: 5}
	w := codec.NewWriter(0)
	tk.Encode(w)
	r := codec.NewReader(w.Bytes())
	got, err := DecodeTicket(r)
	require.NoError(t, err)
	require.Equal(t, tk, got)
	require.Empty(t, r.Remaining())
}
