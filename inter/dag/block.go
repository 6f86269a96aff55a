package dag

import (
	"fmt"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/Fantom-foundation/clotho-base/hash"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// Timestamp is a block creation time, in milliseconds since Unix epoch.
type Timestamp uint64

// BlockRef is a unique reference to an accepted block.
// Refs are ordered by round, then by author, then by digest.
type BlockRef struct {
	Round  idx.Round
	Author idx.Validator
	Digest hash.Hash
}

// Compare returns an integer comparing two refs in the canonical order.
func (r BlockRef) Compare(other BlockRef) int {
	if r.Round != other.Round {
		if r.Round < other.Round {
			return -1
		}
		return 1
	}
	if r.Author != other.Author {
		if r.Author < other.Author {
			return -1
		}
		return 1
	}
	return r.Digest.Compare(other.Digest)
}

// Less returns true if the ref precedes other in the canonical order.
func (r BlockRef) Less(other BlockRef) bool {
	return r.Compare(other) < 0
}

// String returns human readable representation.
func (r BlockRef) String() string {
	return fmt.Sprintf("%d:%d:%x", r.Round, r.Author, r.Digest[:4])
}

// Block is a vertex of the DAG: one proposal by one author at one round.
// Authorship and payload validity are checked before a block enters this
// package, so the block carries no signature.
type Block struct {
	Round   idx.Round
	Author  idx.Validator
	Time    Timestamp
	Parents []BlockRef
	Payload hash.Hash

	digest hash.Hash
}

// Blocks is a slice of blocks.
type Blocks []*Block

// NewBlock assembles a block and seals its digest.
func NewBlock(round idx.Round, author idx.Validator, time Timestamp, parents []BlockRef, payload hash.Hash) *Block {
	b := &Block{
		Round:   round,
		Author:  author,
		Time:    time,
		Parents: parents,
		Payload: payload,
	}
	b.digest = b.calcDigest()
	return b
}

// DecodeBlock decodes an RLP encoded block and restores its digest.
func DecodeBlock(buf []byte) (*Block, error) {
	b := &Block{}
	if err := rlp.DecodeBytes(buf, b); err != nil {
		return nil, err
	}
	b.digest = hash.FromBytes(crypto.Keccak256(buf))
	return b, nil
}

func (b *Block) calcDigest() hash.Hash {
	buf, err := rlp.EncodeToBytes(b)
	if err != nil {
		panic(err)
	}
	return hash.FromBytes(crypto.Keccak256(buf))
}

// Digest returns the block identity, a Keccak-256 over its encoding.
func (b *Block) Digest() hash.Hash {
	if b.digest.IsZero() {
		b.digest = b.calcDigest()
	}
	return b.digest
}

// Ref returns the reference to the block.
func (b *Block) Ref() BlockRef {
	return BlockRef{
		Round:  b.Round,
		Author: b.Author,
		Digest: b.Digest(),
	}
}

// String returns human readable representation.
func (b *Block) String() string {
	return fmt.Sprintf("{%s, parents=%d, t=%d}", b.Ref(), len(b.Parents), b.Time)
}

// Refs returns the references of the blocks, in the same order.
func (bb Blocks) Refs() []BlockRef {
	refs := make([]BlockRef, len(bb))
	for i, b := range bb {
		refs[i] = b.Ref()
	}
	return refs
}

// Sort orders the blocks by round, then author, then digest, in place.
func (bb Blocks) Sort() {
	sort.Slice(bb, func(i, j int) bool {
		return bb[i].Ref().Less(bb[j].Ref())
	})
}

// GenesisBlocks returns the implicit round 0 block of every validator
// of a committee with num members.
func GenesisBlocks(num idx.Validator) Blocks {
	blocks := make(Blocks, 0, num)
	for author := idx.Validator(0); author < num; author++ {
		blocks = append(blocks, NewBlock(0, author, 0, nil, hash.Zero))
	}
	return blocks
}
