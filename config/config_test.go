package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuilderFromPreset(t *testing.T) {
	cfg, err := NewBuilder().FromPreset(Tiny).Build()
	require.NoError(t, err)
	require.Equal(t, TinyConfig, cfg)

	cfg, err = NewBuilder().FromPreset(Full).Build()
	require.NoError(t, err)
	require.Equal(t, FullConfig, cfg)
}

func TestBuilderUnknownPreset(t *testing.T) {
	_, err := NewBuilder().FromPreset("bogus").Build()
	require.Error(t, err)
}

func TestBuilderOverrides(t *testing.T) {
	cfg, err := NewBuilder().FromPreset(Tiny).WithNumValidators(5).WithEpochDuration(8).Build()
	require.NoError(t, err)
	require.Equal(t, 5, cfg.NumValidators)
	require.Equal(t, 8, cfg.EpochDuration)
}

func TestSupermajorityThreshold(t *testing.T) {
	cfg := Config{NumValidators: 5}
	require.Equal(t, 4, cfg.SupermajorityThreshold())
	cfg.NumValidators = 1023
	require.Equal(t, 683, cfg.SupermajorityThreshold())
}

func TestInvalidConfig(t *testing.T) {
	err := (Config{}).Valid()
	require.Error(t, err)
}
