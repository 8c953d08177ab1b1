// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"fmt"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/luxfi/jam/block"
	"github.com/luxfi/jam/codec"
)

// History holds the `recent` state vector (spec §3): the most recently
// accepted blocks' header/state-root/reported-package digests. Entries are
// kept in memory for fast access; Compact snapshots the log through zstd
// so a batch of digests can be persisted together (SPEC_FULL.md's `state`
// snapshot codec), grounded on the teacher's indirect `klauspost/compress`
// dependency. Nothing in package engine calls Compact.
type History struct {
	mu      sync.RWMutex
	entries []block.RecentHistoryEntry
	max     int
}

// NewHistory returns an empty log retaining at most max entries.
func NewHistory(max int) *History {
	if max <= 0 {
		max = 1
	}
	return &History{max: max}
}

// Append adds e, evicting the oldest entry once the log exceeds max.
func (h *History) Append(e block.RecentHistoryEntry) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, e)
	if over := len(h.entries) - h.max; over > 0 {
		h.entries = h.entries[over:]
	}
}

// Entries returns a copy of the current log, oldest first.
func (h *History) Entries() []block.RecentHistoryEntry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]block.RecentHistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Latest returns the most recently appended entry, if any.
func (h *History) Latest() (block.RecentHistoryEntry, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.entries) == 0 {
		return block.RecentHistoryEntry{}, false
	}
	return h.entries[len(h.entries)-1], true
}

// Compact encodes every entry in the log (headerHash ‖ stateRoot ‖
// accountLogSuperPeak ‖ reportedPackageHashes) and zstd-compresses the
// result, so a batch of recent-history digests can be persisted or shipped
// as a single blob instead of the log's raw multiple-of-32-bytes-times-N
// encoding.
func (h *History) Compact() ([]byte, error) {
	entries := h.Entries()

	w := codec.NewWriter(64 * len(entries))
	w.WriteNat(uint64(len(entries)))
	for _, e := range entries {
		e.Encode(w)
	}

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("state: zstd writer: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(w.Bytes(), nil), nil
}

// DecompactHistory reverses Compact, returning the decoded entries.
func DecompactHistory(compacted []byte) ([]block.RecentHistoryEntry, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("state: zstd reader: %w", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(compacted, nil)
	if err != nil {
		return nil, fmt.Errorf("state: zstd decode: %w", err)
	}

	r := codec.NewReader(raw)
	n, err := r.ReadNat()
	if err != nil {
		return nil, err
	}
	out := make([]block.RecentHistoryEntry, 0, n)
	for i := uint64(0); i < n; i++ {
		e, err := block.DecodeRecentHistoryEntry(r)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}
