package safrole

import (
	"sort"

	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/crypto/ringvrf"
	"github.com/luxfi/jam/log"
	"github.com/luxfi/jam/set"
)

// Phase names the Safrole per-slot state machine (spec §4.2 "State
// machine"), grounded on engine/pulsar.Engine's explicit State enum.
type Phase int

const (
	Idle Phase = iota
	SlotApplied
	EpochRotated
	Sealed
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case SlotApplied:
		return "slot-applied"
	case EpochRotated:
		return "epoch-rotated"
	case Sealed:
		return "sealed"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Engine drives the per-slot Safrole transition. It carries no
// package-level mutable state (spec §4.9's "Global mutable state" design
// note): every call is given the state it operates on explicitly.
type Engine struct {
	cfg config.Config
	log log.Logger
}

// New returns an Engine configured with cfg. A nil logger is replaced with
// a no-op logger.
func New(cfg config.Config, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NoOp()
	}
	return &Engine{cfg: cfg, log: logger}
}

// SlotInput is everything a single Apply call needs beyond the current
// State (spec §4.2 "Per-slot transition").
type SlotInput struct {
	Slot            uint32
	IncomingEntropy codec.H32
	TicketExtrinsic []TicketProof

	// EncodedUnsignedHeader and author identity are used only for the
	// fallback seal verification path (spec §4.2.1).
	EncodedUnsignedHeader []byte
	AuthorIndex           uint32
	SealSig               [96]byte
}

// Result bundles the Phase reached and the marks produced, if any.
type Result struct {
	Phase       Phase
	EpochMark   *EpochMarkResult
	WinnersMark *WinnersMarkResult
}

// EpochMarkResult carries the data a block header's EpochMark field needs.
type EpochMarkResult struct {
	Entropy        codec.H32
	TicketsEntropy codec.H32
	Validators     []Validator
}

// WinnersMarkResult carries the first E ticket ids once the accumulator
// fills (spec §4.2 step 6).
type WinnersMarkResult struct {
	TicketIDs []codec.H32
}

// Apply advances s by one slot in place and returns the reached Phase. On
// any error s is left unmodified (spec §5's transactional guarantee): the
// function validates into a working copy and only commits on success.
func (e *Engine) Apply(s *State, tau uint32, in SlotInput) (Result, error) {
	working := cloneState(*s)

	if in.Slot <= tau {
		return Result{Phase: Rejected}, ErrInvalidSlot
	}
	if len(in.TicketExtrinsic) > e.cfg.MaxTicketsPerExtrinsic {
		return Result{Phase: Rejected}, ErrTooManyExtrinsics
	}

	currentEpoch := tau / uint32(e.cfg.EpochDuration)
	newEpoch := in.Slot / uint32(e.cfg.EpochDuration)
	rotating := newEpoch > currentEpoch

	if err := e.ingestTickets(&working, in.TicketExtrinsic); err != nil {
		return Result{Phase: Rejected}, err
	}

	result := Result{Phase: SlotApplied}

	if rotating {
		mark := e.rotateEpoch(&working, in.Slot, in.IncomingEntropy)
		result.Phase = EpochRotated
		result.EpochMark = &mark
	}

	if len(working.TicketAccumulator) >= e.cfg.EpochDuration {
		winners := working.TicketAccumulator[:e.cfg.EpochDuration]
		carry := append([]Ticket(nil), working.TicketAccumulator[e.cfg.EpochDuration:]...)
		ids := make([]codec.H32, len(winners))
		for i, t := range winners {
			ids[i] = t.ID
		}
		result.WinnersMark = &WinnersMarkResult{TicketIDs: ids}
		working.SealTickets = append([]Ticket(nil), winners...)
		working.TicketAccumulator = carry
	}

	result.Phase = Sealed
	*s = working
	e.log.Debug("safrole: slot applied", "slot", in.Slot, "phase", result.Phase.String())
	return result, nil
}

// ingestTickets implements spec §4.2 step 4: verify each proof against the
// active set's ring root and insert into the accumulator, preserving
// sorted-unique-by-id order. Block-body order is used for duplicate
// detection (spec §5 ordering guarantee b); the final accumulator is
// re-sorted by id.
func (e *Engine) ingestTickets(s *State, proofs []TicketProof) error {
	seen := make(set.Set[codec.H32], len(s.TicketAccumulator))
	for _, t := range s.TicketAccumulator {
		seen.Add(t.ID)
	}

	members := activeBandersnatchKeys(s.ActiveSet)
	root, err := ringvrf.EpochRoot(members)
	if err != nil {
		return ErrInvalidRingVRF
	}

	for _, p := range proofs {
		if int(p.EntryIndex) >= e.cfg.TicketsPerValidator {
			return ErrInvalidEntryIndex
		}
		proof, err := decodeRingProof(p.Proof)
		if err != nil {
			return ErrInvalidRingVRF
		}
		id, err := ringvrf.Verify(root, members, p.EntryIndex, proof)
		if err != nil {
			return ErrInvalidRingVRF
		}
		var idH codec.H32 = id
		if seen.Contains(idH) {
			return ErrDuplicateTicket
		}
		seen.Add(idH)
		s.TicketAccumulator = append(s.TicketAccumulator, Ticket{ID: idH, EntryIndex: p.EntryIndex})
	}

	sort.Slice(s.TicketAccumulator, func(i, j int) bool {
		return lessH32(s.TicketAccumulator[i].ID, s.TicketAccumulator[j].ID)
	})
	return nil
}

// rotateEpoch implements spec §4.2 step 5.
func (e *Engine) rotateEpoch(s *State, slot uint32, incomingEntropy codec.H32) EpochMarkResult {
	s.PreviousSet = s.ActiveSet
	s.ActiveSet = s.PendingSet

	staging := make([]Validator, 0, e.cfg.NumValidators)
	for _, v := range s.StagingSet {
		if s.Offenders.Contains(v.Ed25519) {
			continue
		}
		staging = append(staging, v)
	}
	for len(staging) < e.cfg.NumValidators {
		staging = append(staging, Validator{})
	}
	s.PendingSet = staging

	if root, err := ringvrf.EpochRoot(activeBandersnatchKeys(s.ActiveSet)); err == nil {
		var r [144]byte = root
		s.EpochRoot = r
	}

	s.TicketAccumulator = nil

	prevEntropy := s.Entropy[0]
	mixed := codec.Blake2b256(append(append(append([]byte{}, prevEntropy[:]...), encodeU32(slot)...), incomingEntropy[:]...))
	s.Entropy[3] = s.Entropy[2]
	s.Entropy[2] = s.Entropy[1]
	s.Entropy[1] = s.Entropy[0]
	s.Entropy[0] = mixed

	return EpochMarkResult{
		Entropy:        s.Entropy[0],
		TicketsEntropy: s.Entropy[1],
		Validators:     append([]Validator(nil), s.ActiveSet...),
	}
}

func cloneState(s State) State {
	c := s
	c.PendingSet = append([]Validator(nil), s.PendingSet...)
	c.ActiveSet = append([]Validator(nil), s.ActiveSet...)
	c.PreviousSet = append([]Validator(nil), s.PreviousSet...)
	c.StagingSet = append([]Validator(nil), s.StagingSet...)
	c.SealTickets = append([]Ticket(nil), s.SealTickets...)
	c.TicketAccumulator = append([]Ticket(nil), s.TicketAccumulator...)
	c.Offenders = s.Offenders.Clone()
	return c
}

func activeBandersnatchKeys(vs []Validator) [][32]byte {
	out := make([][32]byte, len(vs))
	for i, v := range vs {
		out[i] = v.Bandersnatch
	}
	return out
}

func lessH32(a, b codec.H32) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func encodeU32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}

// decodeRingProof reinterprets a TicketProof's opaque proof bytes as a
// ringvrf.Proof (commitment || public || response || output, 128 bytes).
func decodeRingProof(b []byte) (ringvrf.Proof, error) {
	var p ringvrf.Proof
	if len(b) != 128 {
		return p, ErrInvalidRingVRF
	}
	copy(p.Commitment[:], b[0:32])
	copy(p.Public[:], b[32:64])
	copy(p.Response[:], b[64:96])
	copy(p.Output[:], b[96:128])
	return p, nil
}

// VerifyFallbackSeal checks the fallback seal signature per spec §4.2.1.
func VerifyFallbackSeal(authorKey [32]byte, in SlotInput, entropy3 codec.H32) bool {
	var seal ringvrf.Seal = in.SealSig
	return ringvrf.VerifyFallback(authorKey, in.EncodedUnsignedHeader, entropy3, seal)
}
