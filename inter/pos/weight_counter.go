package pos

import (
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// WeightCounter counts weights of a set of distinct validators.
type WeightCounter struct {
	validators *Validators
	already    []bool // idx.Validator -> bool

	quorum Weight
	sum    Weight
}

// NewCounter constructs an empty counter.
func (vv *Validators) NewCounter() *WeightCounter {
	return &WeightCounter{
		validators: vv,
		already:    make([]bool, vv.Len()),
		quorum:     vv.Quorum(),
		sum:        0,
	}
}

// Count validator and return true if it hadn't been counted before.
func (s *WeightCounter) Count(v idx.Validator) bool {
	if s.already[v] {
		return false
	}
	s.already[v] = true
	s.sum += s.validators.GetWeightByIdx(v)
	return true
}

// CountByID validator and return true if it hadn't been counted before.
func (s *WeightCounter) CountByID(id idx.ValidatorID) bool {
	return s.Count(s.validators.GetIdx(id))
}

// Counted returns true if validator is counted.
func (s *WeightCounter) Counted(v idx.Validator) bool {
	return s.already[v]
}

// HasQuorum achieved.
func (s *WeightCounter) HasQuorum() bool {
	return s.sum >= s.quorum
}

// Sum of counted weights.
func (s *WeightCounter) Sum() Weight {
	return s.sum
}

// NumCounted returns the number of counted validators.
func (s *WeightCounter) NumCounted() int {
	num := 0
	for _, counted := range s.already {
		if counted {
			num++
		}
	}
	return num
}
