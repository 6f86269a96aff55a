package table

import (
	"reflect"

	"github.com/pkg/errors"

	"github.com/Fantom-foundation/clotho-base/kvdb"
)

// Table wraps the underlying db, so all the table's data is stored with
// a prefix in the underlying db.
type Table struct {
	prefix     []byte
	underlying kvdb.Store
}

var (
	// ErrUnsupportedType is returned if MigrateTables target is not a struct pointer.
	ErrUnsupportedType = errors.New("unsupported type of table struct")
)

// New table over the db with the prefix.
func New(db kvdb.Store, prefix []byte) *Table {
	return &Table{
		prefix:     prefix,
		underlying: db,
	}
}

// NewTable returns a nested table.
func (t *Table) NewTable(prefix []byte) *Table {
	return New(t.underlying, prefixed(prefix, t.prefix))
}

// MigrateTables assigns a prefixed table to each field of the tables struct
// marked with a `table:"prefix"` tag. A nil db resets the fields.
func MigrateTables(tables interface{}, db kvdb.Store) error {
	value := reflect.ValueOf(tables)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return ErrUnsupportedType
	}
	value = value.Elem()
	types := value.Type()

	for i := 0; i < types.NumField(); i++ {
		prefix, ok := types.Field(i).Tag.Lookup("table")
		if !ok {
			continue
		}
		field := value.Field(i)
		if db == nil {
			field.Set(reflect.Zero(field.Type()))
		} else {
			field.Set(reflect.ValueOf(New(db, []byte(prefix))))
		}
	}

	return nil
}

func prefixed(key, prefix []byte) []byte {
	prefixedKey := make([]byte, 0, len(prefix)+len(key))
	prefixedKey = append(prefixedKey, prefix...)
	prefixedKey = append(prefixedKey, key...)
	return prefixedKey
}

func noPrefix(key, prefix []byte) []byte {
	if len(key) < len(prefix) {
		return key
	}
	return key[len(prefix):]
}

/*
 * Store interface implementation:
 */

// Has retrieves if a key is present in the table.
func (t *Table) Has(key []byte) (bool, error) {
	return t.underlying.Has(prefixed(key, t.prefix))
}

// Get retrieves the given key if it's present in the table, or nil.
func (t *Table) Get(key []byte) ([]byte, error) {
	return t.underlying.Get(prefixed(key, t.prefix))
}

// Put inserts the given value into the table.
func (t *Table) Put(key []byte, value []byte) error {
	return t.underlying.Put(prefixed(key, t.prefix), value)
}

// Delete removes the key from the table.
func (t *Table) Delete(key []byte) error {
	return t.underlying.Delete(prefixed(key, t.prefix))
}

// Close does nothing, the table is only a view of the underlying db.
func (t *Table) Close() error {
	return nil
}

// NewBatch creates a write-only buffer over the table.
func (t *Table) NewBatch() kvdb.Batch {
	return &batch{t.underlying.NewBatch(), t.prefix}
}

// NewIterator creates an iterator over a subset of the table's content
// with a particular key prefix, starting at a particular initial key.
func (t *Table) NewIterator(prefix []byte, start []byte) kvdb.Iterator {
	return &iterator{t.underlying.NewIterator(prefixed(prefix, t.prefix), start), t.prefix}
}

/*
 * Batch:
 */

type batch struct {
	batch  kvdb.Batch
	prefix []byte
}

func (b *batch) Put(key, value []byte) error {
	return b.batch.Put(prefixed(key, b.prefix), value)
}

func (b *batch) Delete(key []byte) error {
	return b.batch.Delete(prefixed(key, b.prefix))
}

func (b *batch) ValueSize() int {
	return b.batch.ValueSize()
}

func (b *batch) Write() error {
	return b.batch.Write()
}

func (b *batch) Reset() {
	b.batch.Reset()
}

// Replay replays the batch contents with the table prefix stripped.
func (b *batch) Replay(w kvdb.KeyValueWriter) error {
	return b.batch.Replay(&replayer{w, b.prefix})
}

type replayer struct {
	w      kvdb.KeyValueWriter
	prefix []byte
}

func (r *replayer) Put(key, value []byte) error {
	return r.w.Put(noPrefix(key, r.prefix), value)
}

func (r *replayer) Delete(key []byte) error {
	return r.w.Delete(noPrefix(key, r.prefix))
}

/*
 * Iterator:
 */

type iterator struct {
	it     kvdb.Iterator
	prefix []byte
}

func (it *iterator) Next() bool {
	return it.it.Next()
}

func (it *iterator) Error() error {
	return it.it.Error()
}

// Key returns the key of the current key/value pair, without the table prefix.
func (it *iterator) Key() []byte {
	return noPrefix(it.it.Key(), it.prefix)
}

func (it *iterator) Value() []byte {
	return it.it.Value()
}

func (it *iterator) Release() {
	it.it.Release()
}
