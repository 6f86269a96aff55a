package clotho

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/kvdb"
	"github.com/Fantom-foundation/clotho-base/kvdb/flushable"
	"github.com/Fantom-foundation/clotho-base/kvdb/memorydb"
	"github.com/Fantom-foundation/clotho-base/kvdb/table"
)

// ErrNoGenesis is returned when the genesis wasn't written
var ErrNoGenesis = errors.New("genesis not applied")

// Store is a kvdb backed implementation of BlockStore. All the writes are
// buffered in memory and land in the parent DB in one batch per Flush.
type Store struct {
	cfg  StoreConfig
	crit func(error)

	mainDB *flushable.Flushable
	table  struct {
		EpochState  kvdb.Store `table:"e"`
		Blocks      kvdb.Store `table:"b"`
		Commits     kvdb.Store `table:"c"`
		CommitState kvdb.Store `table:"s"`
	}

	cache struct {
		Blocks     *lru.Cache // dag.BlockRef -> *dag.Block
		EpochState *EpochState
	}
}

// NewStore creates store over the key-value db.
func NewStore(mainDB kvdb.Store, cfg StoreConfig, crit func(error)) *Store {
	s := &Store{
		cfg:    cfg,
		crit:   crit,
		mainDB: flushable.Wrap(mainDB),
	}

	table.MigrateTables(&s.table, s.mainDB)

	var err error
	s.cache.Blocks, err = lru.New(cfg.Caches.BlocksNum)
	if err != nil {
		panic(err)
	}

	return s
}

// NewMemStore creates store over memorydb.
func NewMemStore() *Store {
	return NewStore(memorydb.New(), LiteStoreConfig(), panics("NewMemStore"))
}

// Flush persists all the buffered writes in one batch.
func (s *Store) Flush() error {
	if err := s.mainDB.Flush(); err != nil {
		return errors.Wrap(err, "flush")
	}
	return nil
}

// set RLP value
func (s *Store) set(table kvdb.Store, key []byte, val interface{}) {
	buf, err := rlp.EncodeToBytes(val)
	if err != nil {
		s.crit(err)
	}

	if err := table.Put(key, buf); err != nil {
		s.crit(err)
	}
}

// get RLP value
func (s *Store) get(table kvdb.Store, key []byte, to interface{}) interface{} {
	buf, err := table.Get(key)
	if err != nil {
		s.crit(err)
	}
	if buf == nil {
		return nil
	}

	err = rlp.DecodeBytes(buf, to)
	if err != nil {
		s.crit(err)
	}
	return to
}

func panics(name string) func(error) {
	return func(err error) {
		log.Crit(fmt.Sprintf("%s error", name), "err", err)
	}
}
