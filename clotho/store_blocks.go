package clotho

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

// blockKey is author + round + digest, so that a prefix scan by author walks
// the author's blocks in round order.
func blockKey(ref dag.BlockRef) []byte {
	key := make([]byte, 0, 44)
	key = append(key, ref.Author.Bytes()...)
	key = append(key, ref.Round.Bytes()...)
	key = append(key, ref.Digest.Bytes()...)
	return key
}

// WriteBlocks persists the accepted blocks.
func (s *Store) WriteBlocks(blocks dag.Blocks) error {
	for _, b := range blocks {
		if err := s.setBlock(b); err != nil {
			return err
		}
	}
	return s.Flush()
}

func (s *Store) setBlock(b *dag.Block) error {
	buf, err := rlp.EncodeToBytes(b)
	if err != nil {
		s.crit(err)
		return err
	}
	if err := s.table.Blocks.Put(blockKey(b.Ref()), buf); err != nil {
		return errors.Wrap(err, "blocks table")
	}
	s.cache.Blocks.Add(b.Ref(), b)
	return nil
}

// HasBlocks returns an existence flag for every ref, in order.
func (s *Store) HasBlocks(refs []dag.BlockRef) ([]bool, error) {
	res := make([]bool, len(refs))
	for i, ref := range refs {
		if s.cache.Blocks.Contains(ref) {
			res[i] = true
			continue
		}
		ok, err := s.table.Blocks.Has(blockKey(ref))
		if err != nil {
			return nil, errors.Wrap(err, "blocks table")
		}
		res[i] = ok
	}
	return res, nil
}

// GetBlocks returns the stored blocks of the refs, nil for the absent ones.
func (s *Store) GetBlocks(refs []dag.BlockRef) (dag.Blocks, error) {
	blocks := make(dag.Blocks, len(refs))
	for i, ref := range refs {
		if cached, ok := s.cache.Blocks.Get(ref); ok {
			blocks[i] = cached.(*dag.Block)
			continue
		}
		buf, err := s.table.Blocks.Get(blockKey(ref))
		if err != nil {
			return nil, errors.Wrap(err, "blocks table")
		}
		if buf == nil {
			continue
		}
		b, err := dag.DecodeBlock(buf)
		if err != nil {
			s.crit(err)
			return nil, err
		}
		blocks[i] = b
		s.cache.Blocks.Add(ref, b)
	}
	return blocks, nil
}

// ScanBlocksByAuthor returns the stored blocks of the author with
// round >= from, in round order.
func (s *Store) ScanBlocksByAuthor(author idx.Validator, from idx.Round) (dag.Blocks, error) {
	it := s.table.Blocks.NewIterator(author.Bytes(), from.Bytes())
	defer it.Release()

	var blocks dag.Blocks
	for it.Next() {
		b, err := dag.DecodeBlock(it.Value())
		if err != nil {
			s.crit(err)
			return nil, err
		}
		blocks = append(blocks, b)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "blocks iterator")
	}
	return blocks, nil
}
