// Package election elects the leader authority of every round.
package election

import (
	"sync"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/inter/pos"
	"github.com/Fantom-foundation/clotho-base/utils/detrand"
)

// BlockView is a read-only view of the accepted blocks of one validator.
type BlockView interface {
	// BlockAt returns the accepted block of the author at the round, or nil.
	BlockAt(round idx.Round, author idx.Validator) *dag.Block
}

// LeaderSchedule elects the leader authority of every round. The election is
// a pure function of the round, the committee and the active swap table, so
// every honest validator elects the same leader without communication.
// The committee must not be empty.
type LeaderSchedule struct {
	validators *pos.Validators
	roundRobin bool

	mu   sync.RWMutex
	swap *LeaderSwapTable
}

// NewLeaderSchedule returns a schedule with stake-weighted election and no
// swap table yet.
func NewLeaderSchedule(validators *pos.Validators) *LeaderSchedule {
	return &LeaderSchedule{
		validators: validators,
	}
}

// NewRoundRobin returns a schedule that cycles through the committee
// regardless of weights. For test setups, where predictability of the
// leader sequence matters more than fair stake distribution.
func NewRoundRobin(validators *pos.Validators) *LeaderSchedule {
	return &LeaderSchedule{
		validators: validators,
		roundRobin: true,
	}
}

// Validators returns the committee of the schedule.
func (s *LeaderSchedule) Validators() *pos.Validators {
	return s.validators
}

// Leader returns the leader authority of the round.
func (s *LeaderSchedule) Leader(round idx.Round) idx.Validator {
	return s.SwapTable().Swap(s.baseLeader(round), round)
}

// baseLeader picks the round leader before any reputation swap,
// proportionally to validator weights.
func (s *LeaderSchedule) baseLeader(round idx.Round) idx.Validator {
	if s.roundRobin {
		return idx.Validator(uint64(round) % uint64(s.validators.Len()))
	}

	r := detrand.New(uint64(round))
	target := r.Uint64n(uint64(s.validators.TotalWeight()))

	cumulative := uint64(0)
	for v := idx.Validator(0); v < s.validators.Len(); v++ {
		cumulative += uint64(s.validators.GetWeightByIdx(v))
		if target < cumulative {
			return v
		}
	}
	return s.validators.Len() - 1 // unreachable while weights sum up to the total
}

// LeaderBlock returns the leader of the round and its accepted block, if the
// view already has one. Absence of the block is not an error, it may simply
// not have arrived yet.
func (s *LeaderSchedule) LeaderBlock(round idx.Round, view BlockView) (idx.Validator, *dag.Block) {
	leader := s.Leader(round)
	return leader, view.BlockAt(round, leader)
}

// SwapTable returns the active swap table, or nil if none was applied.
func (s *LeaderSchedule) SwapTable() *LeaderSwapTable {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.swap
}

// ApplySwapTable atomically replaces the active swap table.
func (s *LeaderSchedule) ApplySwapTable(t *LeaderSwapTable) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.swap = t
}
