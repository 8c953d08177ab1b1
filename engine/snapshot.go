// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"github.com/luxfi/jam/block"
	"github.com/luxfi/jam/safrole"
	"github.com/luxfi/jam/state"
)

// recentHistoryDepth is how many recent-history entries Snapshot keeps
// (spec §3's `recent` state vector; GP fixes this at 8 entries per block).
const recentHistoryDepth = 8

// Snapshot is the private, copy-on-write working state a single
// Transition.Apply call operates over (spec §4.9's "Global mutable state"
// design note: "no package-level mutable state is held"; parallel forks
// are independent Apply calls over distinct Snapshots).
type Snapshot struct {
	Safrole  safrole.State
	Accounts *state.Accounts
	History  *state.History
}

// NewSnapshot returns an empty Snapshot ready for the genesis block.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Accounts: state.NewAccounts(),
		History:  state.NewHistory(recentHistoryDepth),
	}
}

// RecordHistory appends e to the snapshot's recent-history log. Computing
// e's StateRoot (a full state-trie Merkle root) is not modeled by any
// component this core implements, so callers derive it however their
// storage layer computes roots and pass the finished entry in; Transition
// itself only drives Codec/Safrole/Disputes/PVM/Audit (spec §2's Glue
// row), not state-root Merkleization.
func (s *Snapshot) RecordHistory(e block.RecentHistoryEntry) {
	s.History.Append(e)
}

// Clone returns a deep copy of the snapshot, for callers that want to fork
// a chain tip without touching the original (spec §5: "Parallel forks are
// modeled as independent engine.Transition calls over distinct
// snapshots").
func (s *Snapshot) Clone() *Snapshot {
	history := s.History
	if s.History != nil {
		history = state.NewHistory(recentHistoryDepth)
		for _, e := range s.History.Entries() {
			history.Append(e)
		}
	}
	return &Snapshot{
		Safrole:  cloneSafroleState(s.Safrole),
		Accounts: s.Accounts.Snapshot(),
		History:  history,
	}
}

func cloneSafroleState(s safrole.State) safrole.State {
	c := s
	c.PendingSet = append([]safrole.Validator(nil), s.PendingSet...)
	c.ActiveSet = append([]safrole.Validator(nil), s.ActiveSet...)
	c.PreviousSet = append([]safrole.Validator(nil), s.PreviousSet...)
	c.StagingSet = append([]safrole.Validator(nil), s.StagingSet...)
	c.SealTickets = append([]safrole.Ticket(nil), s.SealTickets...)
	c.TicketAccumulator = append([]safrole.Ticket(nil), s.TicketAccumulator...)
	if s.Offenders != nil {
		c.Offenders = s.Offenders.Clone()
	}
	return c
}
