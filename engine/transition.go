// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package engine implements the block-level state-transition glue (spec
// §2's "Glue" row and §5, Concurrency & Resource Model): decode a block,
// apply Safrole, validate disputes, execute each core's refinement
// program through the host ABI, and run the audit tranche selector —
// rolling back every mutation if any phase fails, generalized from the
// teacher's ChainVM/Block lifecycle (block/block.go) to JAM's concrete
// pipeline.
package engine

import (
	"fmt"

	"github.com/luxfi/jam/audit"
	"github.com/luxfi/jam/block"
	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/disputes"
	"github.com/luxfi/jam/hostcall"
	"github.com/luxfi/jam/log"
	"github.com/luxfi/jam/pvm"
	"github.com/luxfi/jam/safrole"
	"github.com/luxfi/jam/state"
)

// Phase names where a Transition.Apply call reached, mirroring
// safrole.Phase's State{Idle, SlotApplied, EpochRotated, Sealed, Rejected}
// pattern one level up the pipeline.
type Phase int

const (
	Idle Phase = iota
	Decoded
	SafroleApplied
	DisputesApplied
	CoresExecuted
	AuditSelected
	Committed
	Rejected
)

func (p Phase) String() string {
	switch p {
	case Decoded:
		return "decoded"
	case SafroleApplied:
		return "safrole-applied"
	case DisputesApplied:
		return "disputes-applied"
	case CoresExecuted:
		return "cores-executed"
	case AuditSelected:
		return "audit-selected"
	case Committed:
		return "committed"
	case Rejected:
		return "rejected"
	default:
		return "idle"
	}
}

// CoreExecution is one core's refinement job: a PVM program to run against
// a target service account through the host ABI (spec §2's "per core
// PVM+HostABI" glue step). The full work-report/refine-context schema that
// produces these in a live network is out of this core's scope (spec.md
// §1 excludes guarantee distribution/gossip, CE-131/132); Transition only
// needs the program and entry state to execute and account for gas.
type CoreExecution struct {
	CoreIndex uint32
	Service   uint32
	Program   []byte
	EntryPC   uint32
	Gas       int64
	Registers [pvm.NumRegisters]uint64
}

// CoreResult is one core's refinement outcome: the terminal PVM status
// plus whatever output bytes it produced, folded into a
// audit.CoreWorkReports entry so audit.Select can run over the
// same block's results.
type CoreResult struct {
	CoreIndex uint32
	Status    pvm.Status
	Registers [pvm.NumRegisters]uint64
	GasUsed   int64
	Reports   [][]byte
}

// Input is everything a single Apply call needs beyond the state snapshot
// it operates on.
type Input struct {
	BlockBytes      []byte
	Tau             uint32
	IncomingEntropy codec.H32
	CoreWork        []CoreExecution
	TrancheIndex    uint32
	VRFOutput       [32]byte
	AlreadyJudged   map[codec.H32]bool
}

// Output bundles every phase's result.
type Output struct {
	Phase           Phase
	Block           block.Block
	SafroleResult   safrole.Result
	DisputesOutcome disputes.Outcome
	CoreResults     []CoreResult
	Tranche         audit.Tranche
}

// Transition drives block decoding → safrole Engine.Apply → disputes
// Engine.Validate → (per core) PVM+HostABI → audit.Select (spec §2, §5). It carries
// no package-level mutable state (spec §4.9): every Apply call is given
// the snapshot it operates on explicitly.
type Transition struct {
	cfg      config.Config
	safrole  *safrole.Engine
	disputes *disputes.Engine
	log      log.Logger
	metrics  *Metrics
}

// New returns a Transition configured with cfg. A nil logger is replaced
// with a no-op logger.
func New(cfg config.Config, logger log.Logger) *Transition {
	if logger == nil {
		logger = log.NoOp()
	}
	return &Transition{
		cfg:      cfg,
		safrole:  safrole.New(cfg, logger),
		disputes: disputes.New(cfg),
		log:      logger,
	}
}

// WithMetrics attaches m so Apply reports gas/host-call/core counters
// into it; passing nil detaches instrumentation. Returns t for chaining.
func (t *Transition) WithMetrics(m *Metrics) *Transition {
	t.metrics = m
	return t
}

// Apply runs one block's full transition against snap. On success snap's
// Accounts and Safrole fields are committed in place and Phase reaches
// Committed; on any error snap is left byte-for-byte unmodified and Phase
// is Rejected (spec §5's transactional guarantee — "Transitions... are
// atomic; failure discards all mutations").
func (t *Transition) Apply(snap *Snapshot, in Input) (Output, error) {
	out := Output{Phase: Idle}

	blk, err := decodeBlock(in.BlockBytes)
	if err != nil {
		return Output{Phase: Rejected}, fmt.Errorf("engine: decode: %w", err)
	}
	if err := blk.Validate(); err != nil {
		return Output{Phase: Rejected}, fmt.Errorf("engine: validate: %w", err)
	}
	out.Block = blk
	out.Phase = Decoded

	workingSafrole := snap.Safrole
	safroleResult, err := t.safrole.Apply(&workingSafrole, in.Tau, safrole.SlotInput{
		Slot:                  blk.Header.Timeslot,
		IncomingEntropy:       in.IncomingEntropy,
		TicketExtrinsic:       blk.Body.Tickets,
		EncodedUnsignedHeader: blk.Header.EncodeUnsigned(),
		AuthorIndex:           uint32(blk.Header.AuthorIndex),
		SealSig:               blk.Header.SealSig,
	})
	if err != nil {
		return Output{Phase: Rejected}, fmt.Errorf("engine: safrole: %w", err)
	}
	out.SafroleResult = safroleResult
	out.Phase = SafroleApplied

	disputesOutcome, newOffenders, err := t.applyDisputes(blk, &workingSafrole, in)
	if err != nil {
		return Output{Phase: Rejected}, fmt.Errorf("engine: disputes: %w", err)
	}
	out.DisputesOutcome = disputesOutcome
	out.Phase = DisputesApplied

	accountsWorking := snap.Accounts.Snapshot()
	coreResults, err := t.executeCores(accountsWorking, in.CoreWork)
	if err != nil {
		return Output{Phase: Rejected}, fmt.Errorf("engine: core execution: %w", err)
	}
	out.CoreResults = coreResults
	out.Phase = CoresExecuted

	reports := make([]audit.CoreWorkReports, len(coreResults))
	for i, r := range coreResults {
		reports[i] = audit.CoreWorkReports{CoreIndex: r.CoreIndex, Reports: r.Reports}
	}
	out.Tranche = audit.Select(reports, in.VRFOutput, in.TrancheIndex, newOffenders)
	out.Phase = AuditSelected
	if t.metrics != nil {
		t.metrics.TranchesRun.Inc()
	}

	if workingSafrole.Offenders == nil {
		workingSafrole.Offenders = make(map[[32]byte]struct{})
	}
	workingSafrole.Offenders.Add(disputesOutcome.Offenders...)

	snap.Safrole = workingSafrole
	snap.Accounts = accountsWorking
	out.Phase = Committed

	return out, nil
}

func decodeBlock(raw []byte) (block.Block, error) {
	r := codec.NewReader(raw)
	return block.DecodeBlock(r)
}

// applyDisputes validates every Set in the body against the active and
// previous validator sets, merging their outcomes (spec §4.3; body.disputes
// is a Seq<Dispute Set>, so Transition folds each independently-valid Set's
// result together, rejecting on the first invalid one per §5's atomicity).
func (t *Transition) applyDisputes(blk block.Block, sf *safrole.State, in Input) (disputes.Outcome, map[uint32]bool, error) {
	var merged disputes.Outcome
	judged := make(map[codec.H32]bool, len(in.AlreadyJudged))
	for k := range in.AlreadyJudged {
		judged[k] = true
	}

	currentEpoch := in.Tau / uint32(t.cfg.EpochDuration)
	previousEpoch := currentEpoch
	if currentEpoch > 0 {
		previousEpoch = currentEpoch - 1
	}

	for _, d := range blk.Body.Disputes {
		outcome, err := t.disputes.Validate(d, sf.ActiveSet, sf.PreviousSet, currentEpoch, previousEpoch, judged, sf.Offenders)
		if err != nil {
			return disputes.Outcome{}, nil, err
		}
		merged.Good = append(merged.Good, outcome.Good...)
		merged.Bad = append(merged.Bad, outcome.Bad...)
		merged.Offenders = append(merged.Offenders, outcome.Offenders...)
		for _, target := range outcome.Good {
			judged[target] = true
		}
		for _, target := range outcome.Bad {
			judged[target] = true
		}
	}

	// newOffenders is keyed by core index for audit.Tranche1Plus, which
	// operates over cores, not validator keys (spec §4.6 "Properties");
	// the offender delta only names whether any core guaranteed a
	// disputed report this block, approximated here as "all cores with
	// a guarantee this block" once any offender was found — a
	// conservative over-approximation the glue layer documents rather
	// than invents detailed guarantor-to-core bookkeeping that spec.md's
	// scope narrowing (opaque Guarantee.Report) does not provide.
	newOffenders := make(map[uint32]bool)
	if len(merged.Offenders) > 0 {
		for _, g := range blk.Body.Guarantees {
			newOffenders[g.CoreIndex] = true
		}
	}
	return merged, newOffenders, nil
}

// executeCores runs every CoreExecution's program to completion, servicing
// HOST suspensions through a hostcall.Dispatcher bound to accts (spec §4.4
// "Execution loop" + §4.5's Host ABI).
func (t *Transition) executeCores(accts *state.Accounts, jobs []CoreExecution) ([]CoreResult, error) {
	dispatcher := hostcall.New(accts, t.cfg)
	results := make([]CoreResult, 0, len(jobs))

	for _, job := range jobs {
		prog, err := pvm.Parse(job.Program)
		if err != nil {
			return nil, fmt.Errorf("core %d: %w", job.CoreIndex, err)
		}

		s := pvm.NewState(job.Gas)
		s.PC = job.EntryPC
		s.Registers = job.Registers

		for s.Status == pvm.OK || s.Status == pvm.HOST {
			if s.Status == pvm.HOST {
				dispatcher.Call(s, job.Service, s.ExitArg)
				if t.metrics != nil {
					t.metrics.HostCalls.Inc()
				}
				if s.Status == pvm.HOST {
					s.Status = pvm.OK
				}
				continue
			}
			pvm.Run(s, prog)
		}

		result := CoreResult{
			CoreIndex: job.CoreIndex,
			Status:    s.Status,
			Registers: s.Registers,
			GasUsed:   job.Gas - s.Gas,
		}
		if s.Status == pvm.HALT {
			result.Reports = [][]byte{encodeRegisters(s.Registers)}
		}
		if t.metrics != nil {
			t.metrics.CoresRun.Inc()
			t.metrics.GasUsed.Add(float64(result.GasUsed))
			if s.Status == pvm.FAULT || s.Status == pvm.PANIC || s.Status == pvm.OOG {
				t.metrics.CoresFaulted.Inc()
			}
		}
		results = append(results, result)
	}

	return results, nil
}

func encodeRegisters(regs [pvm.NumRegisters]uint64) []byte {
	w := codec.NewWriter(pvm.NumRegisters * 8)
	for _, r := range regs {
		w.WriteFixed(r, 8)
	}
	return w.Bytes()
}
