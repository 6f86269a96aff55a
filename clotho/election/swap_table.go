package election

import (
	"fmt"

	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/inter/pos"
	"github.com/Fantom-foundation/clotho-base/utils/detrand"
)

// MaxBadStakeThreshold bounds the weight of swappable leaders. Above 1/3 of
// the total weight, swapped leaders could form a quorum on their own.
const MaxBadStakeThreshold = 33

// LeaderSwapTable substitutes poorly performing leaders with good ones.
// The table is immutable once built and replaced wholesale at schedule
// window boundaries.
type LeaderSwapTable struct {
	// Round the table takes effect from.
	Round idx.Round
	// GoodNodes are the top scorers within the stake bound, candidates to
	// substitute a bad leader.
	GoodNodes []idx.Validator
	// BadNodes are the bottom scorers within the stake bound, leaders to be
	// swapped out.
	BadNodes map[idx.Validator]bool
}

// NewLeaderSwapTable derives a swap table from final reputation scores.
// It panics unless the scores are final and the threshold is within
// [0, MaxBadStakeThreshold]: both violations indicate an upstream
// sequencing bug, not an input condition.
func NewLeaderSwapTable(validators *pos.Validators, round idx.Round, scores *ReputationScores, badStakeThreshold uint64) *LeaderSwapTable {
	if !scores.FinalOfSchedule {
		panic("only final reputation scores can produce a leader swap table")
	}
	if badStakeThreshold > MaxBadStakeThreshold {
		panic(fmt.Sprintf("bad stake threshold %d%% is above %d%%", badStakeThreshold, MaxBadStakeThreshold))
	}

	good := firstNodes(validators, scores.ByScoreDesc(), badStakeThreshold)
	bad := firstNodes(validators, scores.ByScoreAsc(), badStakeThreshold)

	badNodes := make(map[idx.Validator]bool, len(bad))
	for _, v := range bad {
		badNodes[v] = true
	}

	return &LeaderSwapTable{
		Round:     round,
		GoodNodes: good,
		BadNodes:  badNodes,
	}
}

// firstNodes returns the prefix of the order whose cumulative weight stays
// within threshold% of the total weight.
func firstNodes(validators *pos.Validators, order []idx.Validator, threshold uint64) []idx.Validator {
	bound := uint64(validators.TotalWeight()) * threshold / 100
	nodes := make([]idx.Validator, 0, len(order))

	cumulative := uint64(0)
	for _, v := range order {
		cumulative += uint64(validators.GetWeightByIdx(v))
		if cumulative > bound {
			break
		}
		nodes = append(nodes, v)
	}
	return nodes
}

// Swap returns the substitute for a bad leader of the round, or the leader
// itself. The substitute is a function of the round alone, so every
// validator computes the identical one without communication.
func (t *LeaderSwapTable) Swap(leader idx.Validator, round idx.Round) idx.Validator {
	if t == nil || !t.BadNodes[leader] || len(t.GoodNodes) == 0 {
		return leader
	}
	r := detrand.New(uint64(round))
	return t.GoodNodes[r.Uint64n(uint64(len(t.GoodNodes)))]
}
