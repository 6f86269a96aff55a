package clotho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/dag/tdag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/kvdb/memorydb"
)

func TestClothoBootstrap(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.ApplyGenesis(testEpochState(4)))

	c := New(store, 0, LiteConfig(), testCrit(t))
	require.Nil(t, c.DagState())

	var applied []*CommittedSubDag
	require.NoError(t, c.Bootstrap(func(sd *CommittedSubDag) {
		applied = append(applied, sd)
	}))
	require.Error(t, c.Bootstrap(nil))
	require.NotNil(t, c.DagState())
	require.NotNil(t, c.Linearizer())
	require.NotNil(t, c.Schedule())

	blocks, byRound := tdag.GenLayeredDag(4, 3)
	n, err := c.ProcessBlocks(blocks)
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	require.NoError(t, c.SequenceCommits(dag.Blocks{byRound[2][3]}))
	require.Len(t, applied, 1)
	sd := applied[0]
	assert.Equal(t, idx.Commit(1), sd.Index)
	assert.Equal(t, byRound[2][3].Ref(), sd.Leader)
	assert.Len(t, sd.Blocks, 9)
	assert.Equal(t, dag.Timestamp(30), sd.Time)

	assert.Equal(t, idx.Commit(1), c.DagState().LastCommitIndex())
	assert.Equal(t, idx.Validator(3), c.Schedule().Leader(3))
}

func TestClothoNoGenesis(t *testing.T) {
	var caught error
	crit := func(err error) {
		caught = err
	}
	store := NewStore(memorydb.New(), LiteStoreConfig(), crit)

	c := New(store, 0, LiteConfig(), crit)
	err := c.Bootstrap(nil)
	require.Error(t, err)
	assert.Equal(t, ErrNoGenesis, err)
	assert.Equal(t, ErrNoGenesis, caught)
}

func TestClothoRestart(t *testing.T) {
	db := memorydb.New()
	store := NewStore(db, LiteStoreConfig(), testCrit(t))
	require.NoError(t, store.ApplyGenesis(testEpochState(4)))

	c := New(store, 0, LiteConfig(), testCrit(t))
	require.NoError(t, c.Bootstrap(nil))

	blocks, byRound := tdag.GenLayeredDag(4, 6)
	n, err := c.ProcessBlocks(blocks)
	require.NoError(t, err)
	require.Equal(t, 24, n)
	require.NoError(t, c.SequenceCommits(dag.Blocks{byRound[2][3]}))
	require.NoError(t, c.DagState().Flush())

	// a fresh instance over the same db continues the sequence
	var applied []*CommittedSubDag
	reopened := New(NewStore(db, LiteStoreConfig(), testCrit(t)), 0, LiteConfig(), testCrit(t))
	require.NoError(t, reopened.Bootstrap(func(sd *CommittedSubDag) {
		applied = append(applied, sd)
	}))
	assert.Equal(t, idx.Commit(1), reopened.DagState().LastCommitIndex())
	assert.Equal(t, idx.Round(6), reopened.DagState().HighestAcceptedRound())

	require.NoError(t, reopened.SequenceCommits(dag.Blocks{byRound[5][2]}))
	require.Len(t, applied, 1)
	assert.Equal(t, idx.Commit(2), applied[0].Index)
	assert.Len(t, applied[0].Blocks, 12)
	assert.Equal(t, []idx.Round{5, 5, 6, 5}, reopened.DagState().CommittedRounds())
}
