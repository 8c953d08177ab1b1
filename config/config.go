// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package config holds the protocol parameters the engine is configured
// with (spec §6, "Recognized configuration options"), grounded on the
// teacher's config.Builder/FromPreset pattern.
package config

import "fmt"

// Preset names a recognized configuration preset.
type Preset string

const (
	Tiny Preset = "tiny"
	Full Preset = "full"
)

// Config holds every recognized configuration option from spec §6.
type Config struct {
	NumCores               int
	NumValidators          int
	EpochDuration          int
	TicketsPerValidator    int
	MaxTicketsPerExtrinsic int
	MaxBlockGas            int64
	MaxRefineGas           int64
	PreimageExpungePeriod  uint32
	SlotDuration           int
	RotationPeriod         int
	EcPieceSize            int
	NumEcPiecesPerSegment  int
	ContestDuration        int
	MaxLookupAnchorage     uint32
}

// TinyConfig is the "tiny" test preset.
var TinyConfig = Config{
	NumCores:               2,
	NumValidators:          6,
	EpochDuration:          12,
	TicketsPerValidator:    3,
	MaxTicketsPerExtrinsic: 3,
	MaxBlockGas:            10_000_000,
	MaxRefineGas:           5_000_000,
	PreimageExpungePeriod:  32,
	SlotDuration:           6,
	RotationPeriod:         4,
	EcPieceSize:            684,
	NumEcPiecesPerSegment:  6,
	ContestDuration:        4,
	MaxLookupAnchorage:     14,
}

// FullConfig is the production "full" preset.
var FullConfig = Config{
	NumCores:               341,
	NumValidators:          1023,
	EpochDuration:          600,
	TicketsPerValidator:    2,
	MaxTicketsPerExtrinsic: 16,
	MaxBlockGas:            3_500_000_000,
	MaxRefineGas:           5_000_000_000,
	PreimageExpungePeriod:  19_200,
	SlotDuration:           6,
	RotationPeriod:         10,
	EcPieceSize:            684,
	NumEcPiecesPerSegment:  1026,
	ContestDuration:        500,
	MaxLookupAnchorage:     14_400,
}

// Builder constructs a Config from a preset plus overrides, mirroring the
// teacher's config.Builder fluent interface.
type Builder struct {
	cfg Config
	err error
}

// NewBuilder starts from the tiny preset.
func NewBuilder() *Builder {
	return &Builder{cfg: TinyConfig}
}

// FromPreset resets the builder to a named preset.
func (b *Builder) FromPreset(p Preset) *Builder {
	if b.err != nil {
		return b
	}
	switch p {
	case Tiny:
		b.cfg = TinyConfig
	case Full:
		b.cfg = FullConfig
	default:
		b.err = fmt.Errorf("config: unknown preset %q", p)
	}
	return b
}

// WithNumValidators overrides N_val.
func (b *Builder) WithNumValidators(n int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.NumValidators = n
	return b
}

// WithEpochDuration overrides E.
func (b *Builder) WithEpochDuration(e int) *Builder {
	if b.err != nil {
		return b
	}
	b.cfg.EpochDuration = e
	return b
}

// Build finalizes the Config, validating it.
func (b *Builder) Build() (Config, error) {
	if b.err != nil {
		return Config{}, b.err
	}
	if err := b.cfg.Valid(); err != nil {
		return Config{}, err
	}
	return b.cfg, nil
}

// Valid reports whether c's fields form a usable configuration.
func (c Config) Valid() error {
	switch {
	case c.NumValidators <= 0:
		return fmt.Errorf("config: NumValidators must be positive")
	case c.EpochDuration <= 0:
		return fmt.Errorf("config: EpochDuration must be positive")
	case c.MaxTicketsPerExtrinsic <= 0:
		return fmt.Errorf("config: MaxTicketsPerExtrinsic must be positive")
	case c.EcPieceSize <= 0:
		return fmt.Errorf("config: EcPieceSize must be positive")
	default:
		return nil
	}
}

// SupermajorityThreshold returns floor(2*N/3)+1, the minimum vote count a
// Verdict needs (spec §4.3).
func (c Config) SupermajorityThreshold() int {
	return (2*c.NumValidators)/3 + 1
}
