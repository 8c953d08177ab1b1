// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package hostcall

import (
	"github.com/luxfi/jam/codec"
	"github.com/luxfi/jam/config"
)

// SystemConstantsLen is the fixed size of the FETCH selector=0 blob
// ("bit-exact bytes", spec.md §4.5).
const SystemConstantsLen = 134

// The three GP-fixed constants at the head of the system-constants blob,
// identical across the tiny and full presets (spec.md §8). Named here so
// state.minBalance can share them rather than re-deriving the same
// numbers: per-item and per-octet deposit rates plus the flat base
// deposit that together make up min_balance(items, octets, gratis).
const (
	GPPerItemDeposit  = 10
	GPPerOctetDeposit = 1
	GPBaseDeposit     = 100
)

// SystemConstants encodes the full system-constants struct FETCH's
// selector=0 returns. The leading 32 bytes reproduce the bit-exact layout
// spec.md §8 gives for the tiny and full presets: three GP-fixed u64
// constants, then NumCores (u16), PreimageExpungePeriod (u32) and
// EpochDuration (u16). spec.md only publishes that 32-byte prefix of the
// 134-byte struct ("hex prefix", not the full blob); the remaining fields
// below continue in the same encode_fixed field-by-field style with the
// rest of config.Config, padded with reserved zero bytes out to 134 so the
// documented prefix is reproduced exactly while the undocumented tail stays
// a deterministic, self-consistent continuation rather than a guess at
// GP's full field table.
func SystemConstants(cfg config.Config) []byte {
	w := codec.NewWriter(SystemConstantsLen)

	// GP-fixed constants, identical across presets per spec.md §8.
	w.WriteFixed(GPPerItemDeposit, 8)
	w.WriteFixed(GPPerOctetDeposit, 8)
	w.WriteFixed(GPBaseDeposit, 8)

	w.WriteFixed(uint64(cfg.NumCores), 2)
	w.WriteFixed(uint64(cfg.PreimageExpungePeriod), 4)
	w.WriteFixed(uint64(cfg.EpochDuration), 2)

	w.WriteFixed(uint64(cfg.NumValidators), 2)
	w.WriteFixed(uint64(cfg.TicketsPerValidator), 2)
	w.WriteFixed(uint64(cfg.MaxTicketsPerExtrinsic), 2)
	w.WriteFixed(uint64(cfg.MaxBlockGas), 8)
	w.WriteFixed(uint64(cfg.MaxRefineGas), 8)
	w.WriteFixed(uint64(cfg.SlotDuration), 2)
	w.WriteFixed(uint64(cfg.RotationPeriod), 2)
	w.WriteFixed(uint64(cfg.EcPieceSize), 4)
	w.WriteFixed(uint64(cfg.NumEcPiecesPerSegment), 4)
	w.WriteFixed(uint64(cfg.ContestDuration), 2)
	w.WriteFixed(uint64(cfg.MaxLookupAnchorage), 4)

	out := w.Bytes()
	if len(out) < SystemConstantsLen {
		out = append(out, make([]byte, SystemConstantsLen-len(out))...)
	}
	return out[:SystemConstantsLen]
}
