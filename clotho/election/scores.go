package election

import (
	"sort"

	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// ReputationScores rank authorities by the number of their blocks landed
// into committed sub-DAGs during one schedule window.
type ReputationScores struct {
	// Scores by validator index.
	Scores []uint64
	// FinalOfSchedule is raised when the window is complete and the scores
	// may produce a swap table.
	FinalOfSchedule bool
}

// NewReputationScores returns zero scores for a committee of num members.
func NewReputationScores(num idx.Validator) *ReputationScores {
	return &ReputationScores{
		Scores: make([]uint64, num),
	}
}

// Add increases the score of the validator.
func (s *ReputationScores) Add(v idx.Validator, diff uint64) {
	s.Scores[v] += diff
}

// Get returns the score of the validator.
func (s *ReputationScores) Get(v idx.Validator) uint64 {
	return s.Scores[v]
}

// ByScoreDesc returns validator indexes sorted by score descending. It is
// the exact reverse of ByScoreAsc, so that a prefix of one never overlaps
// an equally weighted prefix of the other.
func (s *ReputationScores) ByScoreDesc() []idx.Validator {
	asc := s.ByScoreAsc()
	desc := make([]idx.Validator, len(asc))
	for i, v := range asc {
		desc[len(asc)-1-i] = v
	}
	return desc
}

// ByScoreAsc returns validator indexes sorted by score ascending.
// Ties are broken by validator index ascending, for determinism.
func (s *ReputationScores) ByScoreAsc() []idx.Validator {
	order := make([]idx.Validator, len(s.Scores))
	for i := range order {
		order[i] = idx.Validator(i)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if s.Scores[a] != s.Scores[b] {
			return s.Scores[a] < s.Scores[b]
		}
		return a < b
	})
	return order
}
