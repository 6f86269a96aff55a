package clotho

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/inter/dag"
	"github.com/Fantom-foundation/clotho-base/inter/idx"
)

const csKey = "c"

// WriteCommits persists the commits, their blocks and the new commit state
// in one durable batch.
func (s *Store) WriteCommits(commits []*Commit, blocks dag.Blocks, state *CommitState) error {
	for _, c := range commits {
		buf, err := rlp.EncodeToBytes(c)
		if err != nil {
			s.crit(err)
			return err
		}
		if err := s.table.Commits.Put(c.Index.Bytes(), buf); err != nil {
			return errors.Wrap(err, "commits table")
		}
	}
	for _, b := range blocks {
		if err := s.setBlock(b); err != nil {
			return err
		}
	}
	if state != nil {
		s.setCommitState(state)
	}
	return s.Flush()
}

// ScanCommits returns the stored commits with index in [from, to], ascending.
func (s *Store) ScanCommits(from, to idx.Commit) ([]*Commit, error) {
	it := s.table.Commits.NewIterator(nil, from.Bytes())
	defer it.Release()

	var commits []*Commit
	for it.Next() {
		c := &Commit{}
		if err := rlp.DecodeBytes(it.Value(), c); err != nil {
			s.crit(err)
			return nil, err
		}
		if c.Index > to {
			break
		}
		commits = append(commits, c)
	}
	if err := it.Error(); err != nil {
		return nil, errors.Wrap(err, "commits iterator")
	}
	return commits, nil
}

func (s *Store) setCommitState(cs *CommitState) {
	s.set(s.table.CommitState, []byte(csKey), cs)
}

// GetCommitState returns the last stored commit state, or nil.
func (s *Store) GetCommitState() (*CommitState, error) {
	buf, err := s.table.CommitState.Get([]byte(csKey))
	if err != nil {
		return nil, errors.Wrap(err, "commit state table")
	}
	if buf == nil {
		return nil, nil
	}
	cs := &CommitState{}
	if err := rlp.DecodeBytes(buf, cs); err != nil {
		s.crit(err)
		return nil, err
	}
	return cs, nil
}
