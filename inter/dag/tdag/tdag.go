// Package tdag forges synthetic DAGs for tests.
package tdag

import (
	"github.com/Fantom-foundation/clotho-base/hash"
	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// ForgeBlock creates a block with a deterministic fake payload.
func ForgeBlock(round idx.Round, author idx.Validator, parents ...dag.BlockRef) *dag.Block {
	seed := int64(round)*1000 + int64(author)
	return dag.NewBlock(round, author, dag.Timestamp(round)*10, parents, hash.FakeHash(seed))
}

// GenDag builds a layered DAG, omitting the blocks the skip callback names.
// Every block refers to the latest existing block of every authority below
// its own round. The blocks are returned in round order, and also grouped
// by round (the genesis round excluded).
func GenDag(num idx.Validator, rounds idx.Round, skip func(round idx.Round, author idx.Validator) bool) (all dag.Blocks, byRound []dag.Blocks) {
	latest := dag.GenesisBlocks(num).Refs()
	byRound = make([]dag.Blocks, 0, rounds)
	for r := idx.Round(1); r <= rounds; r++ {
		parents := append([]dag.BlockRef{}, latest...)
		layer := make(dag.Blocks, 0, num)
		for a := idx.Validator(0); a < num; a++ {
			if skip != nil && skip(r, a) {
				continue
			}
			layer = append(layer, ForgeBlock(r, a, parents...))
		}
		for _, b := range layer {
			latest[b.Author] = b.Ref()
		}
		byRound = append(byRound, layer)
		all = append(all, layer...)
	}
	return all, byRound
}

// GenLayeredDag builds a fully connected DAG: every block of a round refers
// to all the blocks of the previous round, starting from the genesis ones.
func GenLayeredDag(num idx.Validator, rounds idx.Round) (all dag.Blocks, byRound []dag.Blocks) {
	return GenDag(num, rounds, nil)
}
