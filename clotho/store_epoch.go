package clotho

import (
	"github.com/pkg/errors"
)

const esKey = "e"

// ApplyGenesis writes the initial epoch state.
func (s *Store) ApplyGenesis(g *EpochState) error {
	if g == nil {
		return errors.New("genesis config shouldn't be nil")
	}
	if g.Validators == nil || g.Validators.Len() == 0 {
		return errors.New("genesis validators shouldn't be empty")
	}
	if s.getEpochState() != nil {
		return errors.New("genesis is already written")
	}
	s.SetEpochState(g)
	return s.Flush()
}

// SetEpochState stores the epoch state.
func (s *Store) SetEpochState(e *EpochState) {
	s.cache.EpochState = e
	s.set(s.table.EpochState, []byte(esKey), e)
}

// GetEpochState returns the stored epoch state.
// Note: crit is called if the genesis was never applied.
func (s *Store) GetEpochState() *EpochState {
	if s.cache.EpochState != nil {
		return s.cache.EpochState
	}
	e := s.getEpochState()
	if e == nil {
		s.crit(ErrNoGenesis)
	}
	s.cache.EpochState = e
	return e
}

func (s *Store) getEpochState() *EpochState {
	w, exists := s.get(s.table.EpochState, []byte(esKey), &EpochState{}).(*EpochState)
	if !exists {
		return nil
	}
	return w
}
