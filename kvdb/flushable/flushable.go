package flushable

import (
	"bytes"
	"sync"

	rbt "github.com/emirpasic/gods/trees/redblacktree"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/kvdb"
)

var (
	errClosed = errors.New("database closed")
)

// Flushable is a kvdb.Store wrapper around any kvdb.Store.
// On reading, it looks in memory cache first. If not found, it looks in a parent DB.
// On writing, it writes only in cache. Flush() flushes the cache into parent DB
// in one batch.
type Flushable struct {
	underlying kvdb.Store

	modified       *rbt.Tree // modified, comparing to parent, pairs. deleted values are nil
	sizeEstimation int

	lock sync.Mutex
}

// Wrap underlying db.
func Wrap(parent kvdb.Store) *Flushable {
	if parent == nil {
		panic("nil parent")
	}
	return &Flushable{
		underlying: parent,
		modified:   rbt.NewWithStringComparator(),
	}
}

// Put puts key-value pair into the cache.
func (w *Flushable) Put(key []byte, value []byte) error {
	if value == nil || key == nil {
		return errors.New("flushable: key or value is nil")
	}
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return errClosed
	}

	w.put(key, value)
	return nil
}

func (w *Flushable) put(key []byte, value []byte) {
	cp := make([]byte, len(value))
	copy(cp, value)
	w.modified.Put(string(key), &cp)
	w.sizeEstimation += len(key) + len(value)
}

// Has checks if key is in the exists.
func (w *Flushable) Has(key []byte) (bool, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return false, errClosed
	}

	if valI, ok := w.modified.Get(string(key)); ok {
		val, _ := valI.(*[]byte)
		return val != nil, nil
	}
	return w.underlying.Has(key)
}

// Get returns key-value pair by key.
func (w *Flushable) Get(key []byte) ([]byte, error) {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return nil, errClosed
	}

	if valI, ok := w.modified.Get(string(key)); ok {
		val, _ := valI.(*[]byte)
		if val == nil {
			return nil, nil
		}
		return common.CopyBytes(*val), nil
	}
	return w.underlying.Get(key)
}

// Delete removes key-value pair by key. The pair is deleted from the parent DB
// on the next Flush.
func (w *Flushable) Delete(key []byte) error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return errClosed
	}

	w.delete(key)
	return nil
}

func (w *Flushable) delete(key []byte) {
	w.modified.Put(string(key), nil)
	w.sizeEstimation += len(key)
}

// NotFlushedPairs returns the number of not flushed keys, including deleted keys.
func (w *Flushable) NotFlushedPairs() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return 0
	}
	return w.modified.Size()
}

// NotFlushedSizeEst returns the estimation of not flushed data, including deleted keys.
func (w *Flushable) NotFlushedSizeEst() int {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.sizeEstimation
}

// DropNotFlushed drops all the not flushed keys.
func (w *Flushable) DropNotFlushed() {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return
	}
	w.modified.Clear()
	w.sizeEstimation = 0
}

// Flush current cache into parent DB in one batch.
func (w *Flushable) Flush() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return errClosed
	}

	batch := w.underlying.NewBatch()
	defer batch.Reset()
	for it := w.modified.Iterator(); it.Next(); {
		var err error
		key := []byte(it.Key().(string))
		if valI := it.Value(); valI != nil {
			err = batch.Put(key, *valI.(*[]byte))
		} else {
			err = batch.Delete(key)
		}
		if err != nil {
			return err
		}
		if batch.ValueSize() > kvdb.IdealBatchSize {
			if err := batch.Write(); err != nil {
				return err
			}
			batch.Reset()
		}
	}
	if err := batch.Write(); err != nil {
		return err
	}

	w.modified.Clear()
	w.sizeEstimation = 0
	return nil
}

// Close drops the not flushed data and closes the parent DB.
func (w *Flushable) Close() error {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.modified == nil {
		return errClosed
	}

	w.modified = nil
	w.sizeEstimation = 0
	return w.underlying.Close()
}

// keyvalue is a pending write of the batch.
type keyvalue struct {
	key    []byte
	value  []byte
	delete bool
}

// NewBatch creates new batch which writes into the cache on Write.
func (w *Flushable) NewBatch() kvdb.Batch {
	return &cacheBatch{db: w}
}

// cacheBatch is a write-only batch on top of the Flushable cache.
type cacheBatch struct {
	db     *Flushable
	writes []keyvalue
	size   int
}

// Put inserts the given value into the batch for later committing.
func (b *cacheBatch) Put(key, value []byte) error {
	b.writes = append(b.writes, keyvalue{key: common.CopyBytes(key), value: common.CopyBytes(value)})
	b.size += len(key) + len(value)
	return nil
}

// Delete inserts a key removal into the batch for later committing.
func (b *cacheBatch) Delete(key []byte) error {
	b.writes = append(b.writes, keyvalue{key: common.CopyBytes(key), delete: true})
	b.size += len(key)
	return nil
}

// ValueSize retrieves the amount of data queued up for writing.
func (b *cacheBatch) ValueSize() int {
	return b.size
}

// Write applies the batched writes into the cache.
func (b *cacheBatch) Write() error {
	b.db.lock.Lock()
	defer b.db.lock.Unlock()
	if b.db.modified == nil {
		return errClosed
	}

	for _, kv := range b.writes {
		if kv.delete {
			b.db.delete(kv.key)
		} else {
			b.db.put(kv.key, kv.value)
		}
	}
	return nil
}

// Reset resets the batch for reuse.
func (b *cacheBatch) Reset() {
	b.writes = b.writes[:0]
	b.size = 0
}

// Replay replays the batch contents.
func (b *cacheBatch) Replay(w kvdb.KeyValueWriter) error {
	for _, kv := range b.writes {
		if kv.delete {
			if err := w.Delete(kv.key); err != nil {
				return err
			}
			continue
		}
		if err := w.Put(kv.key, kv.value); err != nil {
			return err
		}
	}
	return nil
}

// NewIterator creates a binary-alphabetical iterator over a subset
// of database content with a particular key prefix, starting at a particular
// initial key (or after, if it does not exist). It merges the not flushed
// cache with the parent DB content.
func (w *Flushable) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	w.lock.Lock()
	defer w.lock.Unlock()

	from := string(append(append([]byte{}, prefix...), start...))
	var keys [][]byte
	var vals [][]byte
	if w.modified != nil {
		for it := w.modified.Iterator(); it.Next(); {
			key := it.Key().(string)
			if key < from || !bytes.HasPrefix([]byte(key), prefix) {
				continue
			}
			keys = append(keys, []byte(key))
			if valI := it.Value(); valI != nil {
				vals = append(vals, *valI.(*[]byte))
			} else {
				vals = append(vals, nil)
			}
		}
	}

	return &iterator{
		under: w.underlying.NewIterator(prefix, start),
		keys:  keys,
		vals:  vals,
	}
}

// iterator merges the not flushed pairs with the parent DB iterator. The not
// flushed pair wins when both sides hold the same key, and a not flushed
// deletion hides the parent pair.
type iterator struct {
	under     kvdb.Iterator
	underOk   bool
	underInit bool

	keys [][]byte
	vals [][]byte // nil means deletion
	i    int

	key, val []byte
}

// Next scans the pair to be returned by Key and Value.
func (it *iterator) Next() bool {
	if !it.underInit {
		it.underOk = it.under.Next()
		it.underInit = true
	}
	for {
		pending := it.i < len(it.keys)
		if !it.underOk && !pending {
			it.key, it.val = nil, nil
			return false
		}

		usePending := !it.underOk
		if it.underOk && pending {
			c := bytes.Compare(it.under.Key(), it.keys[it.i])
			if c > 0 {
				usePending = true
			} else if c == 0 {
				usePending = true
				it.underOk = it.under.Next()
			}
		}

		if !usePending {
			it.key = common.CopyBytes(it.under.Key())
			it.val = common.CopyBytes(it.under.Value())
			it.underOk = it.under.Next()
			return true
		}

		key, val := it.keys[it.i], it.vals[it.i]
		it.i++
		if val == nil {
			continue
		}
		it.key, it.val = key, val
		return true
	}
}

// Error returns the error of the parent iterator, if any.
func (it *iterator) Error() error {
	return it.under.Error()
}

// Key returns the key of the current key-value pair.
func (it *iterator) Key() []byte {
	return it.key
}

// Value returns the value of the current key-value pair.
func (it *iterator) Value() []byte {
	return it.val
}

// Release releases associated resources.
func (it *iterator) Release() {
	it.under.Release()
	it.keys, it.vals = nil, nil
	it.key, it.val = nil, nil
}
