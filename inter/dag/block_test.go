package dag

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/clotho-base/hash"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

func TestBlockDigest(t *testing.T) {
	parents := []BlockRef{
		{Round: 1, Author: 0, Digest: hash.FakeHash(1)},
		{Round: 1, Author: 1, Digest: hash.FakeHash(2)},
	}

	b1 := NewBlock(2, 0, 100, parents, hash.FakeHash(3))
	b2 := NewBlock(2, 0, 100, parents, hash.FakeHash(3))
	b3 := NewBlock(3, 0, 100, parents, hash.FakeHash(3))

	assert.Equal(t, b1.Digest(), b2.Digest())
	assert.NotEqual(t, b1.Digest(), b3.Digest())
	assert.False(t, b1.Digest().IsZero())

	assert.Equal(t, b1.Ref(), b2.Ref())
	assert.Equal(t, idx.Round(2), b1.Ref().Round)
	assert.Equal(t, idx.Validator(0), b1.Ref().Author)
}

func TestBlockEncoding(t *testing.T) {
	b := NewBlock(5, 2, 12345, []BlockRef{
		{Round: 4, Author: 0, Digest: hash.FakeHash(10)},
		{Round: 3, Author: 1, Digest: hash.FakeHash(11)},
	}, hash.FakeHash(12))

	buf, err := rlp.EncodeToBytes(b)
	require.NoError(t, err)

	got, err := DecodeBlock(buf)
	require.NoError(t, err)

	assert.Equal(t, b.Round, got.Round)
	assert.Equal(t, b.Author, got.Author)
	assert.Equal(t, b.Time, got.Time)
	assert.Equal(t, b.Parents, got.Parents)
	assert.Equal(t, b.Payload, got.Payload)
	assert.Equal(t, b.Digest(), got.Digest())

	_, err = DecodeBlock([]byte{0x01, 0x02})
	assert.Error(t, err)
}

func TestBlockRefOrder(t *testing.T) {
	small := hash.Hash{}
	big := hash.Hash{}
	big[0] = 0xff

	ordered := []BlockRef{
		{Round: 1, Author: 2, Digest: big},
		{Round: 2, Author: 0, Digest: big},
		{Round: 2, Author: 1, Digest: small},
		{Round: 2, Author: 1, Digest: big},
		{Round: 3, Author: 0, Digest: small},
	}

	for i := 0; i < len(ordered); i++ {
		assert.Equal(t, 0, ordered[i].Compare(ordered[i]))
		for j := i + 1; j < len(ordered); j++ {
			assert.True(t, ordered[i].Less(ordered[j]), "%s < %s", ordered[i], ordered[j])
			assert.False(t, ordered[j].Less(ordered[i]))
		}
	}
}

func TestBlocksSort(t *testing.T) {
	bb := Blocks{
		NewBlock(3, 1, 0, nil, hash.Zero),
		NewBlock(2, 3, 0, nil, hash.Zero),
		NewBlock(2, 0, 0, nil, hash.Zero),
		NewBlock(1, 2, 0, nil, hash.Zero),
	}
	bb.Sort()

	rounds := make([]idx.Round, len(bb))
	authors := make([]idx.Validator, len(bb))
	for i, b := range bb {
		rounds[i] = b.Round
		authors[i] = b.Author
	}
	assert.Equal(t, []idx.Round{1, 2, 2, 3}, rounds)
	assert.Equal(t, []idx.Validator{2, 0, 3, 1}, authors)

	assert.Len(t, bb.Refs(), 4)
}

func TestGenesisBlocks(t *testing.T) {
	gg := GenesisBlocks(4)
	require.Len(t, gg, 4)

	for i, g := range gg {
		assert.Equal(t, idx.Round(0), g.Round)
		assert.Equal(t, idx.Validator(i), g.Author)
		assert.Empty(t, g.Parents)
	}

	// distinct authors give distinct digests
	assert.NotEqual(t, gg[0].Digest(), gg[1].Digest())
}
