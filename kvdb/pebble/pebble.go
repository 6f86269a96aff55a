// Package pebble implements the kvdb.Store interface over Pebble.
package pebble

import (
	"github.com/cockroachdb/pebble"

	"github.com/Fantom-foundation/clotho-base/kvdb"
)

// Database is a persistent key-value store based on the Pebble storage engine.
type Database struct {
	fn    string     // filename for reporting
	db    *pebble.DB // Pebble instance
	cache *pebble.Cache
}

// New returns a wrapped Pebble object.
func New(path string, cache int, handles int) (*Database, error) {
	// Ensure we have some minimal caching and file guarantees.
	if cache < 16 {
		cache = 16
	}
	if handles < 16 {
		handles = 16
	}

	pCache := pebble.NewCache(int64(cache / 2 * 1024 * 1024))
	db, err := pebble.Open(path, &pebble.Options{
		Cache:        pCache,
		MaxOpenFiles: handles,
		MemTableSize: cache / 4 * 1024 * 1024, // Two of these are used internally
	})
	if err != nil {
		pCache.Unref()
		return nil, err
	}

	return &Database{
		fn:    path,
		db:    db,
		cache: pCache,
	}, nil
}

// Close flushes any pending data to disk and closes all io accesses to the
// underlying key-value store.
func (db *Database) Close() error {
	err := db.db.Close()
	db.cache.Unref()
	return err
}

// Has retrieves if a key is present in the key-value store.
func (db *Database) Has(key []byte) (bool, error) {
	dat, err := db.Get(key)
	if err != nil {
		return false, err
	}
	return dat != nil, nil
}

// Get retrieves the given key if it's present in the key-value store, or nil.
func (db *Database) Get(key []byte) ([]byte, error) {
	dat, closer, err := db.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, nil
		}
		return nil, err
	}
	ret := make([]byte, len(dat))
	copy(ret, dat)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return ret, nil
}

// Put inserts the given value into the key-value store.
func (db *Database) Put(key []byte, value []byte) error {
	return db.db.Set(key, value, pebble.Sync)
}

// Delete removes the key from the key-value store.
func (db *Database) Delete(key []byte) error {
	return db.db.Delete(key, pebble.Sync)
}

// NewBatch creates a write-only key-value store that buffers changes to its host
// database until a final write is called.
func (db *Database) NewBatch() kvdb.Batch {
	return &batch{
		db: db.db,
		b:  db.db.NewBatch(),
	}
}

// NewIterator creates a binary-alphabetical iterator over a subset
// of database content with a particular key prefix, starting at a particular
// initial key (or after, if it does not exist).
func (db *Database) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	it := db.db.NewIter(&pebble.IterOptions{
		LowerBound: append(append([]byte{}, prefix...), start...),
		UpperBound: upperBound(prefix),
	})
	return &iterator{it: it}
}

// upperBound returns the upper bound for the given prefix.
func upperBound(prefix []byte) []byte {
	var limit []byte
	for i := len(prefix) - 1; i >= 0; i-- {
		c := prefix[i]
		if c == 0xff {
			continue
		}
		limit = make([]byte, i+1)
		copy(limit, prefix)
		limit[i] = c + 1
		break
	}
	return limit
}

// keyvalue is a pending write operation of a batch.
type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// batch is a write-only batch that commits changes to its host database
// when Write is called. A batch cannot be used concurrently.
type batch struct {
	db     *pebble.DB
	b      *pebble.Batch
	writes []keyvalue
	size   int
}

// Put inserts the given value into the batch for later committing.
func (b *batch) Put(key, value []byte) error {
	if err := b.b.Set(key, value, nil); err != nil {
		return err
	}
	b.writes = append(b.writes, keyvalue{dupe(key), dupe(value), false})
	b.size += len(key) + len(value)
	return nil
}

// Delete inserts the key removal into the batch for later committing.
func (b *batch) Delete(key []byte) error {
	if err := b.b.Delete(key, nil); err != nil {
		return err
	}
	b.writes = append(b.writes, keyvalue{dupe(key), nil, true})
	b.size += len(key)
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *batch) ValueSize() int {
	return b.size
}

// Write flushes any accumulated data to disk.
func (b *batch) Write() error {
	return b.b.Commit(pebble.Sync)
}

// Reset resets the batch for reuse.
func (b *batch) Reset() {
	b.b.Reset()
	b.writes = b.writes[:0]
	b.size = 0
}

// Replay replays the batch contents.
func (b *batch) Replay(w kvdb.KeyValueWriter) error {
	for _, keyvalue := range b.writes {
		if keyvalue.delete {
			if err := w.Delete(keyvalue.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(keyvalue.key, keyvalue.value); err != nil {
			return err
		}
	}
	return nil
}

func dupe(b []byte) []byte {
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// iterator adapts a pebble iterator, which seeks eagerly, to the kvdb
// contract, which positions before the first pair.
type iterator struct {
	it    *pebble.Iterator
	moved bool
}

// Next moves the iterator to the next key/value pair. It returns whether the
// iterator is exhausted.
func (it *iterator) Next() bool {
	if it.it == nil {
		return false
	}
	if !it.moved {
		it.moved = true
		return it.it.First()
	}
	return it.it.Next()
}

// Error returns any accumulated error.
func (it *iterator) Error() error {
	if it.it == nil {
		return nil
	}
	return it.it.Error()
}

// Key returns the key of the current key/value pair, or nil if done.
func (it *iterator) Key() []byte {
	if it.it == nil || !it.it.Valid() {
		return nil
	}
	return it.it.Key()
}

// Value returns the value of the current key/value pair, or nil if done.
func (it *iterator) Value() []byte {
	if it.it == nil || !it.it.Valid() {
		return nil
	}
	return it.it.Value()
}

// Release releases associated resources. Release should always succeed and can
// be called multiple times without causing error.
func (it *iterator) Release() {
	if it.it != nil {
		_ = it.it.Close()
		it.it = nil
	}
}
