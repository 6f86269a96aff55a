package clotho

import (
	"fmt"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
	"github.com/Fantom-foundation/clotho-base/inter/pos"
)

// Commit is the durable record of one committed leader: the refs of its
// newly committed causal history in execution order, and the per-authority
// committed rounds raised by this commit.
type Commit struct {
	Index           idx.Commit
	Leader          dag.BlockRef
	Refs            []dag.BlockRef
	CommittedRounds []idx.Round
}

// CommittedSubDag is one commit resolved to whole blocks, in deterministic
// execution order. It is what the application layer consumes.
type CommittedSubDag struct {
	Index  idx.Commit
	Leader dag.BlockRef
	Blocks dag.Blocks
	// Time is the creation time of the leader block.
	Time dag.Timestamp
}

// CommitState is for persistent storing.
// It is the watermark of the commit pipeline: everything up to Index is
// durable, and CommittedRounds bounds the committed history of every
// authority.
type CommitState struct {
	// stored values
	Index           idx.Commit
	CommittedRounds []idx.Round
}

func (cs CommitState) String() string {
	return fmt.Sprintf("%d", cs.Index)
}

// EpochState is for persistent storing.
// These values change only after a change of epoch.
type EpochState struct {
	// stored values
	Epoch      idx.Epoch
	Validators *pos.Validators
}

func (es EpochState) String() string {
	return fmt.Sprintf("%d/%s", es.Epoch, es.Validators.String())
}
