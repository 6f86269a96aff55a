package clotho

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/dag/tdag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/inter/pos"
	"github.com/Fantom-foundation/clotho-base/kvdb/memorydb"
)

func testCrit(t *testing.T) func(error) {
	return func(err error) {
		t.Helper()
		t.Fatal(err)
	}
}

func testValidators(num idx.Validator) *pos.Validators {
	ids := make([]idx.ValidatorID, num)
	for i := range ids {
		ids[i] = idx.ValidatorID(i + 1)
	}
	return pos.EqualWeightValidators(ids, 1)
}

func testEpochState(num idx.Validator) *EpochState {
	return &EpochState{
		Epoch:      FirstEpoch,
		Validators: testValidators(num),
	}
}

func TestStoreGenesis(t *testing.T) {
	db := memorydb.New()
	s := NewStore(db, LiteStoreConfig(), testCrit(t))

	require.Error(t, s.ApplyGenesis(nil))
	require.Error(t, s.ApplyGenesis(&EpochState{Epoch: FirstEpoch}))
	require.NoError(t, s.ApplyGenesis(testEpochState(4)))
	require.Error(t, s.ApplyGenesis(testEpochState(4)))

	es := s.GetEpochState()
	require.NotNil(t, es)
	assert.Equal(t, FirstEpoch, es.Epoch)
	assert.Equal(t, idx.Validator(4), es.Validators.Len())

	// the genesis write is durable
	reopened := NewStore(db, LiteStoreConfig(), testCrit(t))
	es = reopened.GetEpochState()
	require.NotNil(t, es)
	assert.Equal(t, "1/[1:1,2:1,3:1,4:1]", es.String())
}

func TestStoreBlocks(t *testing.T) {
	db := memorydb.New()
	s := NewStore(db, LiteStoreConfig(), testCrit(t))

	blocks, _ := tdag.GenLayeredDag(3, 4)
	require.NoError(t, s.WriteBlocks(blocks))

	refs := blocks.Refs()
	exists, err := s.HasBlocks(refs)
	require.NoError(t, err)
	for i, ok := range exists {
		assert.True(t, ok, "block %s", refs[i])
	}

	unknown := tdag.ForgeBlock(9, 0).Ref()
	exists, err = s.HasBlocks([]dag.BlockRef{refs[0], unknown})
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false}, exists)

	got, err := s.GetBlocks([]dag.BlockRef{refs[5], unknown, refs[0]})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, refs[5], got[0].Ref())
	assert.Nil(t, got[1])
	assert.Equal(t, refs[0], got[2].Ref())

	// the scan walks one author in round order
	scanned, err := s.ScanBlocksByAuthor(1, FirstRound)
	require.NoError(t, err)
	require.Len(t, scanned, 4)
	for i, b := range scanned {
		assert.Equal(t, idx.Validator(1), b.Author)
		assert.Equal(t, idx.Round(i+1), b.Round)
	}

	scanned, err = s.ScanBlocksByAuthor(1, 3)
	require.NoError(t, err)
	require.Len(t, scanned, 2)
	assert.Equal(t, idx.Round(3), scanned[0].Round)

	// a reopened store decodes the identical blocks
	reopened := NewStore(db, LiteStoreConfig(), testCrit(t))
	got, err = reopened.GetBlocks(refs)
	require.NoError(t, err)
	for i, b := range got {
		require.NotNil(t, b)
		assert.Equal(t, refs[i], b.Ref())
		assert.Equal(t, blocks[i].Time, b.Time)
		assert.Equal(t, blocks[i].Parents, b.Parents)
	}
}

func TestStoreCommits(t *testing.T) {
	db := memorydb.New()
	s := NewStore(db, LiteStoreConfig(), testCrit(t))

	cs, err := s.GetCommitState()
	require.NoError(t, err)
	assert.Nil(t, cs)

	blocks, _ := tdag.GenLayeredDag(4, 2)
	commits := []*Commit{
		{Index: 1, Leader: blocks[0].Ref(), Refs: blocks[:1].Refs(), CommittedRounds: []idx.Round{1, 0, 0, 0}},
		{Index: 2, Leader: blocks[5].Ref(), Refs: blocks[1:6].Refs(), CommittedRounds: []idx.Round{1, 2, 1, 1}},
		{Index: 3, Leader: blocks[7].Ref(), Refs: blocks[6:].Refs(), CommittedRounds: []idx.Round{2, 2, 2, 2}},
	}
	state := &CommitState{Index: 3, CommittedRounds: []idx.Round{2, 2, 2, 2}}
	require.NoError(t, s.WriteCommits(commits, blocks, state))

	got, err := s.ScanCommits(1, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, commits[i].Index, c.Index)
		assert.Equal(t, commits[i].Leader, c.Leader)
		assert.Equal(t, commits[i].Refs, c.Refs)
		assert.Equal(t, commits[i].CommittedRounds, c.CommittedRounds)
	}

	got, err = s.ScanCommits(2, 2)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, idx.Commit(2), got[0].Index)

	got, err = s.ScanCommits(4, 10)
	require.NoError(t, err)
	assert.Empty(t, got)

	cs, err = s.GetCommitState()
	require.NoError(t, err)
	require.NotNil(t, cs)
	assert.Equal(t, idx.Commit(3), cs.Index)
	assert.Equal(t, []idx.Round{2, 2, 2, 2}, cs.CommittedRounds)

	// the whole batch is durable
	reopened := NewStore(db, LiteStoreConfig(), testCrit(t))
	cs, err = reopened.GetCommitState()
	require.NoError(t, err)
	require.NotNil(t, cs)
	assert.Equal(t, "3", cs.String())

	has, err := reopened.HasBlocks(blocks.Refs())
	require.NoError(t, err)
	for _, ok := range has {
		assert.True(t, ok)
	}
}
