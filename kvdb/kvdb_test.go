package kvdb_test

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fantom-foundation/clotho-base/kvdb"
	"github.com/Fantom-foundation/clotho-base/kvdb/leveldb"
	"github.com/Fantom-foundation/clotho-base/kvdb/memorydb"
	"github.com/Fantom-foundation/clotho-base/kvdb/pebble"
)

func TestStores(t *testing.T) {
	openers := map[string]func(dir string) (kvdb.Store, error){
		"memory": func(dir string) (kvdb.Store, error) {
			return memorydb.New(), nil
		},
		"leveldb": func(dir string) (kvdb.Store, error) {
			return leveldb.New(dir, 16, 16)
		},
		"pebble": func(dir string) (kvdb.Store, error) {
			return pebble.New(dir, 16, 16)
		},
	}

	for name, open := range openers {
		open := open
		t.Run(name, func(t *testing.T) {
			dir, err := ioutil.TempDir("", "kvdb-test")
			require.NoError(t, err)
			defer os.RemoveAll(dir)

			db, err := open(dir)
			require.NoError(t, err)
			defer db.Close()

			testStore(t, db)
		})
	}
}

func testStore(t *testing.T, db kvdb.Store) {
	// reads of an absent key
	val, err := db.Get([]byte("absent"))
	require.NoError(t, err)
	assert.Nil(t, val)

	ok, err := db.Has([]byte("absent"))
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Put([]byte{0x01, 0x01}, []byte("a")))
	require.NoError(t, db.Put([]byte{0x01, 0x02}, []byte("b")))
	require.NoError(t, db.Put([]byte{0x02, 0x01}, []byte("c")))

	val, err = db.Get([]byte{0x01, 0x02})
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)

	// a batch is not visible until Write
	b := db.NewBatch()
	require.NoError(t, b.Put([]byte{0x01, 0x03}, []byte("d")))
	require.NoError(t, b.Delete([]byte{0x01, 0x01}))
	assert.True(t, b.ValueSize() > 0)

	ok, err = db.Has([]byte{0x01, 0x03})
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, b.Write())

	ok, err = db.Has([]byte{0x01, 0x01})
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = db.Has([]byte{0x01, 0x03})
	require.NoError(t, err)
	assert.True(t, ok)

	// iteration is ordered and respects prefix
	it := db.NewIterator([]byte{0x01}, nil)
	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte{}, it.Key()...))
	}
	require.NoError(t, it.Error())
	it.Release()
	assert.Equal(t, [][]byte{{0x01, 0x02}, {0x01, 0x03}}, keys)

	// iteration from a start position
	it = db.NewIterator([]byte{0x01}, []byte{0x03})
	keys = nil
	for it.Next() {
		keys = append(keys, append([]byte{}, it.Key()...))
	}
	it.Release()
	assert.Equal(t, [][]byte{{0x01, 0x03}}, keys)

	// replay copies batch contents elsewhere
	b = db.NewBatch()
	require.NoError(t, b.Put([]byte{0x03, 0x01}, []byte("e")))
	require.NoError(t, b.Delete([]byte{0x03, 0x02}))

	mirror := memorydb.New()
	require.NoError(t, mirror.Put([]byte{0x03, 0x02}, []byte("stale")))
	require.NoError(t, b.Replay(mirror))

	val, err = mirror.Get([]byte{0x03, 0x01})
	require.NoError(t, err)
	assert.Equal(t, []byte("e"), val)

	val, err = mirror.Get([]byte{0x03, 0x02})
	require.NoError(t, err)
	assert.Nil(t, val)

	b.Reset()
	assert.Equal(t, 0, b.ValueSize())
}
