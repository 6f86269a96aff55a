package clotho

import (
	"time"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// TryPropose decides whether this authority should build a block now. It
// walks the rounds from the newest accepted one down to the last proposed
// one and takes the first round which reached quorum. When the leader block
// of that round is still missing, the proposal is held back for up to
// MaxLeaderWait since the quorum. When nothing is ready, nil is returned
// together with the delay before the next attempt.
func (s *DagState) TryPropose() (*Proposal, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	retryIn := s.cfg.ProposeCheckInterval
	now := time.Now()

	for r := s.highestAccepted; ; r-- {
		if r < s.highestProposed {
			break
		}
		if infoI, ok := s.byRound.Get(r); ok {
			info := infoI.(*roundInfo)
			if !info.quorumAt.IsZero() {
				leader := s.schedule.Leader(r)
				waited := now.Sub(info.quorumAt)
				if info.authors.Counted(leader) || waited >= s.cfg.MaxLeaderWait {
					return s.buildProposal(r), retryIn
				}
				// the leader block may still arrive in time; the lower
				// rounds are superseded either way
				if remaining := s.cfg.MaxLeaderWait - waited; remaining < retryIn {
					retryIn = remaining
				}
				break
			}
		}
		if r == 0 {
			break
		}
	}
	return nil, retryIn
}

// buildProposal assembles the proposal on top of the parent round: the round
// number to use, and the latest accepted block of every authority at or
// below the parent round.
func (s *DagState) buildProposal(parentRound idx.Round) *Proposal {
	round := parentRound + 1
	parents := make([]dag.BlockRef, 0, s.validators.Len())
	maxTime := dag.Timestamp(0)

	for author := idx.Validator(0); author < s.validators.Len(); author++ {
		b := s.latestAtOrBelow(author, parentRound)
		parents = append(parents, b.Ref())
		if b.Time > maxTime {
			maxTime = b.Time
		}
	}

	s.highestProposed = round
	return &Proposal{
		Round:         round,
		Parents:       parents,
		MaxParentTime: maxTime,
	}
}
