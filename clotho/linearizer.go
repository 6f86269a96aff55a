package clotho

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/clotho/election"
	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// Linearizer expands a finalized leader sequence into committed sub-DAGs,
// advances the commit watermark, and feeds the reputation scores back into
// the leader schedule. It is the only writer of commits; call HandleCommit
// from one goroutine at a time.
type Linearizer struct {
	dagState *DagState
	schedule *election.LeaderSchedule
	store    BlockStore
	cfg      Config
	crit     func(error)

	scores *election.ReputationScores
}

// NewLinearizer creates a linearizer over the DAG state and restores the
// running reputation window from the store.
func NewLinearizer(dagState *DagState, schedule *election.LeaderSchedule) (*Linearizer, error) {
	l := &Linearizer{
		dagState: dagState,
		schedule: schedule,
		store:    dagState.store,
		cfg:      dagState.cfg,
		crit:     dagState.crit,
		scores:   election.NewReputationScores(dagState.validators.Len()),
	}
	if err := l.restore(); err != nil {
		return nil, err
	}
	return l, nil
}

// restore replays the commits of the running reputation window, and
// re-applies the swap table derived at the end of the last closed window.
func (l *Linearizer) restore() error {
	last := l.dagState.LastCommitIndex()
	if last == 0 {
		return nil
	}
	cps := l.cfg.CommitsPerSchedule

	closedEnd := last - last%cps
	if closedEnd > 0 {
		start := idx.Commit(1)
		if closedEnd > cps {
			start = closedEnd - cps + 1
		}
		commits, err := l.store.ScanCommits(start, closedEnd)
		if err != nil {
			return errors.Wrap(err, "scan commits")
		}
		if len(commits) > 0 {
			final := election.NewReputationScores(l.dagState.validators.Len())
			for _, c := range commits {
				for _, ref := range c.Refs {
					final.Add(ref.Author, 1)
				}
			}
			final.FinalOfSchedule = true
			swapRound := commits[len(commits)-1].Leader.Round + 1
			l.schedule.ApplySwapTable(election.NewLeaderSwapTable(l.dagState.validators, swapRound, final, l.cfg.BadStakeThreshold))
		}
	}

	if closedEnd < last {
		commits, err := l.store.ScanCommits(closedEnd+1, last)
		if err != nil {
			return errors.Wrap(err, "scan commits")
		}
		for _, c := range commits {
			for _, ref := range c.Refs {
				l.scores.Add(ref.Author, 1)
			}
		}
	}
	return nil
}

// HandleCommit expands every finalized leader into the sub-DAG of its causal
// history not covered by the previous commits, in input order. The watermark
// advances between the leaders, and the whole batch lands in one durable
// write.
func (l *Linearizer) HandleCommit(leaders dag.Blocks) ([]*CommittedSubDag, error) {
	if len(leaders) == 0 {
		return nil, nil
	}

	s := l.dagState
	s.mu.Lock()
	defer s.mu.Unlock()

	subDags := make([]*CommittedSubDag, 0, len(leaders))
	commits := make([]*Commit, 0, len(leaders))
	var blocks dag.Blocks

	for _, leader := range leaders {
		subDag, commit, err := l.collectSubDag(leader)
		if err != nil {
			l.crit(err)
			return nil, err
		}
		s.addCommit(commit)
		l.updateScores(commit)
		subDags = append(subDags, subDag)
		commits = append(commits, commit)
		blocks = append(blocks, subDag.Blocks...)
	}

	state := &CommitState{
		Index:           s.lastCommit,
		CommittedRounds: append([]idx.Round{}, s.committedRounds...),
	}
	if err := l.store.WriteCommits(commits, blocks, state); err != nil {
		// the in-memory watermark is already ahead of the durable one
		err = errors.Wrap(err, "commits write")
		l.crit(err)
		return nil, err
	}
	return subDags, nil
}

// collectSubDag gathers the not yet committed causal history of the leader.
// Every ancestor is either covered by the watermark or present in the DAG;
// anything else is a broken invariant.
func (l *Linearizer) collectSubDag(leader *dag.Block) (*CommittedSubDag, *Commit, error) {
	s := l.dagState
	leaderRef := leader.Ref()

	committedRounds := append([]idx.Round{}, s.committedRounds...)
	visited := map[dag.BlockRef]bool{leaderRef: true}
	stack := dag.Blocks{leader}
	var collected dag.Blocks

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		collected = append(collected, b)

		for _, p := range b.Parents {
			if visited[p] {
				continue
			}
			visited[p] = true
			if committedRounds[p.Author] >= p.Round {
				continue // covered by a previous commit
			}
			parent := s.blockByRef(p)
			if parent == nil {
				return nil, nil, errors.Errorf("ancestor %s of committed leader %s isn't in the DAG", p, leaderRef)
			}
			stack = append(stack, parent)
		}
	}

	collected.Sort()
	for _, b := range collected {
		if committedRounds[b.Author] < b.Round {
			committedRounds[b.Author] = b.Round
		}
	}

	commit := &Commit{
		Index:           s.lastCommit + 1,
		Leader:          leaderRef,
		Refs:            collected.Refs(),
		CommittedRounds: committedRounds,
	}
	subDag := &CommittedSubDag{
		Index:  commit.Index,
		Leader: leaderRef,
		Blocks: collected,
		Time:   leader.Time,
	}
	return subDag, commit, nil
}

// updateScores credits every committed block to its author, and rebuilds the
// leader swap table at the end of every reputation window.
func (l *Linearizer) updateScores(c *Commit) {
	for _, ref := range c.Refs {
		l.scores.Add(ref.Author, 1)
	}
	if c.Index%l.cfg.CommitsPerSchedule != 0 {
		return
	}
	l.scores.FinalOfSchedule = true
	table := election.NewLeaderSwapTable(l.dagState.validators, c.Leader.Round+1, l.scores, l.cfg.BadStakeThreshold)
	l.schedule.ApplySwapTable(table)
	log.Info("Leader schedule updated", "round", table.Round, "good", len(table.GoodNodes), "bad", len(table.BadNodes))
	l.scores = election.NewReputationScores(l.dagState.validators.Len())
}
