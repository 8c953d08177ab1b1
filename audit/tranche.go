// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package audit

// MaxSelected is the maximum number of cores a single tranche selects
// (spec §4.6: "pick up to 10 'non-empty' cores").
const MaxSelected = 10

// CoreWorkReports is one core's post-execution work-report bundle, the
// shuffle's unit of selection (spec §4.6: "coreWorkReports:
// Seq<(coreIndex, reports)>").
type CoreWorkReports struct {
	CoreIndex uint32
	Reports   [][]byte
}

// Empty reports whether this core produced no work reports this block.
func (c CoreWorkReports) Empty() bool {
	return len(c.Reports) == 0
}

// Tranche is the result of one audit selection round (spec §4.6 step 4).
type Tranche struct {
	Index            uint32
	VRFOutput        [32]byte
	ShuffledSequence []CoreWorkReports
	SelectedCores    []CoreWorkReports
}

// Select runs the deterministic shuffle-and-pick algorithm (spec §4.6).
// For tranche index >= 1, any core named in negativeJudgmentCores is
// unioned into SelectedCores even if it fell outside the first 10
// non-empty shuffled entries (spec §4.6 "Properties": "Tranche ≥ 1
// additionally unions in any cores bearing negative judgments").
func Select(reports []CoreWorkReports, vrfOutput [32]byte, trancheIndex uint32, negativeJudgmentCores map[uint32]bool) Tranche {
	shuffled := make([]CoreWorkReports, len(reports))
	copy(shuffled, reports)
	fisherYates(shuffled, newPRNG(vrfOutput))

	selected := make([]CoreWorkReports, 0, MaxSelected)
	for _, c := range shuffled {
		if len(selected) >= MaxSelected {
			break
		}
		if c.Empty() {
			continue
		}
		selected = append(selected, c)
	}

	if trancheIndex >= 1 && len(negativeJudgmentCores) > 0 {
		selected = Tranche1Plus(shuffled, selected, negativeJudgmentCores)
	}

	return Tranche{
		Index:            trancheIndex,
		VRFOutput:        vrfOutput,
		ShuffledSequence: shuffled,
		SelectedCores:    selected,
	}
}

// Tranche1Plus unions any core in shuffled named by offenderDelta (the
// disputes engine's newly-offending-key delta, keyed here by core index
// rather than validator key once the glue layer has resolved one to the
// other) into selected, for cores the tranche-0-style top-10 pick left
// out (spec §4.6 "Properties": tranche >= 1 additionally unions in any
// cores bearing negative judgments).
func Tranche1Plus(shuffled, selected []CoreWorkReports, offenderDelta map[uint32]bool) []CoreWorkReports {
	chosen := make(map[uint32]bool, len(selected))
	out := make([]CoreWorkReports, len(selected))
	copy(out, selected)
	for _, c := range selected {
		chosen[c.CoreIndex] = true
	}
	for _, c := range shuffled {
		if offenderDelta[c.CoreIndex] && !chosen[c.CoreIndex] {
			out = append(out, c)
			chosen[c.CoreIndex] = true
		}
	}
	return out
}
