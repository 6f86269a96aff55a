package clotho

import (
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/clotho/election"
	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

const (
	FirstRound = idx.Round(1)
	FirstEpoch = idx.Epoch(1)
)

// ApplyCommitFn is called for every committed sub-DAG, in commit order.
type ApplyCommitFn func(*CommittedSubDag)

// Clotho sequences a BFT block DAG into a deterministic commit order.
// It's a wrapper around DagState and Linearizer which wires the leader
// schedule feedback and the commit callback. Use the lower-level types
// directly if the application drives them in a custom way.
type Clotho struct {
	store *Store
	cfg   Config
	me    idx.Validator
	crit  func(error)

	schedule   *election.LeaderSchedule
	dagState   *DagState
	linearizer *Linearizer

	applyCommitFn ApplyCommitFn
}

// New creates a Clotho instance over a store with an applied genesis.
func New(store *Store, me idx.Validator, cfg Config, crit func(error)) *Clotho {
	return &Clotho{
		store: store,
		cfg:   cfg,
		me:    me,
		crit:  crit,
	}
}

// Bootstrap restores the in-memory state from the store and arms the commit
// callback. Must be called once, before any other method.
func (c *Clotho) Bootstrap(applyCommit ApplyCommitFn) error {
	if c.dagState != nil {
		return errors.New("already bootstrapped")
	}
	c.applyCommitFn = applyCommit

	es := c.store.GetEpochState()
	if es == nil {
		return ErrNoGenesis
	}
	if c.cfg.RoundRobinLeaders {
		c.schedule = election.NewRoundRobin(es.Validators)
	} else {
		c.schedule = election.NewLeaderSchedule(es.Validators)
	}

	var err error
	c.dagState, err = NewDagState(c.store, es.Validators, c.schedule, c.me, c.cfg, c.crit)
	if err != nil {
		return err
	}
	c.linearizer, err = NewLinearizer(c.dagState, c.schedule)
	if err != nil {
		return err
	}
	return nil
}

// ProcessBlocks adds verified blocks to the DAG. See DagState.TryAccept.
func (c *Clotho) ProcessBlocks(blocks dag.Blocks) (int, error) {
	return c.dagState.TryAccept(blocks)
}

// SequenceCommits expands the finalized leaders into committed sub-DAGs and
// feeds them to the commit callback, in order.
func (c *Clotho) SequenceCommits(leaders dag.Blocks) error {
	subDags, err := c.linearizer.HandleCommit(leaders)
	if err != nil {
		return err
	}
	if c.applyCommitFn != nil {
		for _, sd := range subDags {
			c.applyCommitFn(sd)
		}
	}
	return nil
}

// DagState returns the DAG view. Nil until Bootstrap.
func (c *Clotho) DagState() *DagState {
	return c.dagState
}

// Linearizer returns the commit pipeline. Nil until Bootstrap.
func (c *Clotho) Linearizer() *Linearizer {
	return c.linearizer
}

// Schedule returns the leader schedule. Nil until Bootstrap.
func (c *Clotho) Schedule() *election.LeaderSchedule {
	return c.schedule
}
