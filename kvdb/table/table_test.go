package table

import (
	"testing"

	"github.com/status-im/keycard-go/hexutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/clotho-base/kvdb"
	"github.com/Fantom-foundation/clotho-base/kvdb/memorydb"
)

func TestTable(t *testing.T) {
	db := memorydb.New()

	t1 := New(db, []byte("t1"))
	t2 := New(db, []byte("t2"))

	require.NoError(t, t1.Put([]byte("key"), []byte("val1")))
	require.NoError(t, t2.Put([]byte("key"), []byte("val2")))

	// tables are isolated
	val, err := t1.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("val1"), val)

	val, err = t2.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("val2"), val)

	// but share the underlying db
	assert.Equal(t, 2, db.Len())
	val, err = db.Get([]byte("t1key"))
	require.NoError(t, err)
	assert.Equal(t, []byte("val1"), val)

	require.NoError(t, t1.Delete([]byte("key")))
	ok, err := t1.Has([]byte("key"))
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = t2.Has([]byte("key"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNestedTable(t *testing.T) {
	db := memorydb.New()

	outer := New(db, []byte("a"))
	inner := outer.NewTable([]byte("b"))

	require.NoError(t, inner.Put([]byte("key"), []byte("val")))

	val, err := db.Get([]byte("abkey"))
	require.NoError(t, err)
	assert.Equal(t, []byte("val"), val)
}

func TestTableIterator(t *testing.T) {
	db := memorydb.New()
	tab := New(db, []byte("t"))

	require.NoError(t, tab.Put(hexutils.HexToBytes("0101"), []byte("a")))
	require.NoError(t, tab.Put(hexutils.HexToBytes("0102"), []byte("b")))
	require.NoError(t, tab.Put(hexutils.HexToBytes("0201"), []byte("c")))
	require.NoError(t, db.Put([]byte("x"), []byte("alien")))

	// keys returned without the table prefix
	it := tab.NewIterator(hexutils.HexToBytes("01"), nil)
	defer it.Release()

	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte{}, it.Key()...))
	}
	require.NoError(t, it.Error())
	assert.Equal(t, [][]byte{hexutils.HexToBytes("0101"), hexutils.HexToBytes("0102")}, keys)
}

func TestTableBatch(t *testing.T) {
	db := memorydb.New()
	tab := New(db, []byte("t"))

	b := tab.NewBatch()
	require.NoError(t, b.Put([]byte("k1"), []byte("v1")))
	require.NoError(t, b.Put([]byte("k2"), []byte("v2")))
	require.NoError(t, b.Write())

	val, err := db.Get([]byte("tk1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), val)

	// replay strips the table prefix
	mirror := memorydb.New()
	require.NoError(t, b.Replay(mirror))
	val, err = mirror.Get([]byte("k2"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), val)
}

func TestMigrateTables(t *testing.T) {
	db := memorydb.New()

	tables := struct {
		Blocks   kvdb.Store `table:"b"`
		Commits  kvdb.Store `table:"c"`
		Untagged kvdb.Store
	}{}

	require.NoError(t, MigrateTables(&tables, db))
	require.NotNil(t, tables.Blocks)
	require.NotNil(t, tables.Commits)
	assert.Nil(t, tables.Untagged)

	require.NoError(t, tables.Blocks.Put([]byte("k"), []byte("v")))
	val, err := db.Get([]byte("bk"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	require.NoError(t, MigrateTables(&tables, nil))
	assert.Nil(t, tables.Blocks)

	assert.Equal(t, ErrUnsupportedType, MigrateTables(tables, db))
}
