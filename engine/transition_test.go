// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/jam/block"
	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/config"
	"github.com/luxfi/jam/log"
	"github.com/luxfi/jam/metrics"
	"github.com/luxfi/jam/pvm"
	"github.com/luxfi/jam/safrole"
	"github.com/luxfi/jam/state"
)

func newAccountForTest(balance uint64) *state.ServiceAccount {
	return state.NewServiceAccount(codec.H32{0xaa}, balance, 100, 50, 0, 1, 0)
}

// testValidators mirrors safrole's own test fixture (safrole/engine_test.go
// testState): single-byte Bandersnatch/Ed25519 keys that ringvrf.EpochRoot
// accepts as a non-empty ring.
func testValidators(n int) []safrole.Validator {
	vs := make([]safrole.Validator, n)
	for i := range vs {
		vs[i] = safrole.Validator{Bandersnatch: [32]byte{byte(i + 1)}, Ed25519: [32]byte{byte(i + 10)}}
	}
	return vs
}

func testConfig() config.Config {
	cfg := config.TinyConfig
	cfg.NumValidators = 3
	cfg.EpochDuration = 100
	return cfg
}

func newTestSnapshot(cfg config.Config) *Snapshot {
	snap := NewSnapshot()
	vs := testValidators(cfg.NumValidators)
	snap.Safrole.ActiveSet = append([]safrole.Validator(nil), vs...)
	snap.Safrole.PendingSet = append([]safrole.Validator(nil), vs...)
	snap.Safrole.PreviousSet = append([]safrole.Validator(nil), vs...)
	snap.Safrole.StagingSet = append([]safrole.Validator(nil), vs...)
	return snap
}

// sealedBlockBytes builds a minimal, internally-consistent encoded block
// (empty body, extrinsicHash matching per block.Seal) at the given
// timeslot.
func sealedBlockBytes(t *testing.T, timeslot uint32) []byte {
	t.Helper()
	body := block.Body{}
	header := block.Seal(block.Header{Timeslot: timeslot}, body)
	blk := block.Block{Header: header, Body: body}

	w := codec.NewWriter(256)
	blk.Encode(w)
	return w.Bytes()
}

func TestApplyRejectsUndecodableBytes(t *testing.T) {
	cfg := testConfig()
	tr := New(cfg, log.NoOp())
	snap := newTestSnapshot(cfg)

	_, err := tr.Apply(snap, Input{BlockBytes: []byte{0xff}, Tau: 0})
	require.Error(t, err)
}

func TestApplyRejectsExtrinsicHashMismatch(t *testing.T) {
	cfg := testConfig()
	tr := New(cfg, log.NoOp())
	snap := newTestSnapshot(cfg)

	blk := block.Block{Header: block.Header{Timeslot: 1}, Body: block.Body{}}
	// Leave Header.ExtrinsicHash zero, which won't match Body{}'s real hash.
	w := codec.NewWriter(256)
	blk.Encode(w)

	_, err := tr.Apply(snap, Input{BlockBytes: w.Bytes(), Tau: 0})
	require.ErrorIs(t, err, block.ErrExtrinsicHashMismatch)
}

func TestApplyLeavesSnapshotUnchangedOnSafroleError(t *testing.T) {
	cfg := testConfig()
	tr := New(cfg, log.NoOp())
	snap := newTestSnapshot(cfg)
	before := snap.Safrole.TicketAccumulator

	raw := sealedBlockBytes(t, 1)
	// Tau >= block timeslot trips safrole.ErrInvalidSlot.
	out, err := tr.Apply(snap, Input{BlockBytes: raw, Tau: 5})

	require.Error(t, err)
	require.Equal(t, Rejected, out.Phase)
	require.Equal(t, before, snap.Safrole.TicketAccumulator)
}

func TestApplyRunsFullPipelineAndCommits(t *testing.T) {
	cfg := testConfig()
	tr := New(cfg, log.NoOp())
	snap := newTestSnapshot(cfg)

	raw := sealedBlockBytes(t, 1)
	out, err := tr.Apply(snap, Input{
		BlockBytes:    raw,
		Tau:           0,
		TrancheIndex:  0,
		VRFOutput:     [32]byte{0x07},
		CoreWork:      nil,
		AlreadyJudged: nil,
	})

	require.NoError(t, err)
	require.Equal(t, Committed, out.Phase)
	require.Equal(t, safrole.Sealed, out.SafroleResult.Phase)
	require.Empty(t, out.CoreResults)
}

// haltOnlyProgram is the smallest valid program blob: zero-length code,
// so Step immediately reports HALT without executing any instruction.
func haltOnlyProgram(t *testing.T) []byte {
	t.Helper()
	w := codec.NewWriter(16)
	w.WriteNat(0) // jump table length
	w.WriteByte(1) // element size
	w.WriteNat(0)  // code length
	// no code bytes, no bitmask bytes (ceil(0/8) == 0)
	return w.Bytes()
}

func TestApplyExecutesCoreProgramToHalt(t *testing.T) {
	cfg := testConfig()
	tr := New(cfg, log.NoOp())
	snap := newTestSnapshot(cfg)
	snap.Accounts.Put(9, newAccountForTest(10_000))

	raw := sealedBlockBytes(t, 1)
	out, err := tr.Apply(snap, Input{
		BlockBytes: raw,
		Tau:        0,
		CoreWork: []CoreExecution{
			{CoreIndex: 0, Service: 9, Program: haltOnlyProgram(t), Gas: 1000},
		},
	})

	require.NoError(t, err)
	require.Equal(t, Committed, out.Phase)
	require.Len(t, out.CoreResults, 1)
	require.Equal(t, pvm.HALT, out.CoreResults[0].Status)
	require.Len(t, out.CoreResults[0].Reports, 1, "a halted core must contribute one report")
}

func TestApplyReportsCoreMetrics(t *testing.T) {
	cfg := testConfig()
	m := NewMetrics(metrics.NewRegistry())
	tr := New(cfg, log.NoOp()).WithMetrics(m)
	snap := newTestSnapshot(cfg)
	snap.Accounts.Put(9, newAccountForTest(10_000))

	raw := sealedBlockBytes(t, 1)
	_, err := tr.Apply(snap, Input{
		BlockBytes: raw,
		Tau:        0,
		CoreWork: []CoreExecution{
			{CoreIndex: 0, Service: 9, Program: haltOnlyProgram(t), Gas: 1000},
		},
	})

	require.NoError(t, err)
	require.Equal(t, int64(1), m.CoresRun.Read())
	require.Equal(t, int64(0), m.CoresFaulted.Read())
	require.Equal(t, int64(1), m.TranchesRun.Read())
}

func TestApplyRejectsUnparsableCoreProgram(t *testing.T) {
	cfg := testConfig()
	tr := New(cfg, log.NoOp())
	snap := newTestSnapshot(cfg)
	before := snap.Safrole.TicketAccumulator

	raw := sealedBlockBytes(t, 1)
	out, err := tr.Apply(snap, Input{
		BlockBytes: raw,
		Tau:        0,
		CoreWork: []CoreExecution{
			{CoreIndex: 0, Service: 9, Program: []byte{0xff}, Gas: 1000},
		},
	})

	require.Error(t, err)
	require.Equal(t, Rejected, out.Phase)
	require.Equal(t, before, snap.Safrole.TicketAccumulator, "a core-execution failure must not commit any safrole mutation")
}
