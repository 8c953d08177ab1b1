// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package audit

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleReports(n int) []CoreWorkReports {
	reports := make([]CoreWorkReports, n)
	for i := 0; i < n; i++ {
		reports[i] = CoreWorkReports{CoreIndex: uint32(i)}
		if i%2 == 0 {
			reports[i].Reports = [][]byte{[]byte("report")}
		}
	}
	return reports
}

func vrfSeed() [32]byte {
	var seed [32]byte
	seed[0] = 0x12
	seed[1] = 0x34
	seed[31] = 0xf0
	return seed
}

// TestSelectDeterministic exercises the S4 property: "same VRF => same
// shuffled sequence; repeating the call returns identical selection."
func TestSelectDeterministic(t *testing.T) {
	reports := sampleReports(5)
	seed := vrfSeed()

	first := Select(reports, seed, 0, nil)
	second := Select(reports, seed, 0, nil)

	require.Equal(t, first.ShuffledSequence, second.ShuffledSequence)
	require.Equal(t, first.SelectedCores, second.SelectedCores)
}

func TestSelectFiltersEmptyCores(t *testing.T) {
	reports := sampleReports(5)
	tranche := Select(reports, vrfSeed(), 0, nil)

	for _, c := range tranche.SelectedCores {
		require.False(t, c.Empty(), "core %d selected but empty", c.CoreIndex)
	}
}

func TestSelectCoresAreSubsetOfShuffled(t *testing.T) {
	reports := sampleReports(20)
	tranche := Select(reports, vrfSeed(), 0, nil)

	require.Len(t, tranche.ShuffledSequence, len(reports))
	shuffledIdx := make(map[uint32]bool, len(tranche.ShuffledSequence))
	for _, c := range tranche.ShuffledSequence {
		shuffledIdx[c.CoreIndex] = true
	}
	for _, c := range tranche.SelectedCores {
		require.True(t, shuffledIdx[c.CoreIndex])
	}
	require.LessOrEqual(t, len(tranche.SelectedCores), MaxSelected)
}

func TestSelectTrancheOneUnionsNegativeJudgmentCores(t *testing.T) {
	// 15 cores, only core 1 (odd, so normally empty and never selected)
	// carries a negative judgment; tranche 0 must not include it, tranche
	// 1 must.
	reports := sampleReports(15)
	negative := map[uint32]bool{1: true}

	tranche0 := Select(reports, vrfSeed(), 0, negative)
	for _, c := range tranche0.SelectedCores {
		require.NotEqual(t, uint32(1), c.CoreIndex)
	}

	tranche1 := Select(reports, vrfSeed(), 1, negative)
	var found bool
	for _, c := range tranche1.SelectedCores {
		if c.CoreIndex == 1 {
			found = true
		}
	}
	require.True(t, found, "tranche >= 1 must union in cores bearing negative judgments")
}

func TestTranche1PlusIsIdempotentOnAlreadySelected(t *testing.T) {
	selected := []CoreWorkReports{{CoreIndex: 2, Reports: [][]byte{[]byte("r")}}}
	shuffled := []CoreWorkReports{selected[0], {CoreIndex: 5}}
	offenders := map[uint32]bool{2: true}

	out := Tranche1Plus(shuffled, selected, offenders)
	require.Len(t, out, 1, "a core already selected must not be duplicated")
}

func TestTranche1PlusAddsOffendingCoreNotInSelection(t *testing.T) {
	selected := []CoreWorkReports{{CoreIndex: 2, Reports: [][]byte{[]byte("r")}}}
	shuffled := []CoreWorkReports{selected[0], {CoreIndex: 5}}
	offenders := map[uint32]bool{5: true}

	out := Tranche1Plus(shuffled, selected, offenders)
	require.Len(t, out, 2)
	require.Equal(t, uint32(5), out[1].CoreIndex)
}

func TestSelectDifferentVRFProducesDifferentShuffle(t *testing.T) {
	reports := sampleReports(10)
	seedA := vrfSeed()
	seedB := vrfSeed()
	seedB[2] = 0xff

	a := Select(reports, seedA, 0, nil)
	b := Select(reports, seedB, 0, nil)
	require.NotEqual(t, a.ShuffledSequence, b.ShuffledSequence)
}
