package storage

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/anataliocs/do-math/pkg/core/storage/dbconfig"
	"github.com/stretchr/testify/require"
)

type dbSetup struct {
	name   string
	create func(testing.TB) Store
}

type dbTestFunction func(*testing.T, Store)

type keyValue struct {
	Key   []byte
	Value []byte
}

func newBoltStoreForTesting(t testing.TB) Store {
	testFileName := filepath.Join(t.TempDir(), "test_bolt_db")
	boltDBStore, err := NewBoltDBStore(dbconfig.BoltDBOptions{FilePath: testFileName})
	require.NoError(t, err)
	return boltDBStore
}

func newLevelDBForTesting(t testing.TB) Store {
	levelDBStore, err := NewLevelDBStore(dbconfig.LevelDBOptions{DataDirectoryPath: t.TempDir()})
	require.NoError(t, err)
	return levelDBStore
}

func newMemoryStoreForTesting(t testing.TB) Store {
	return NewMemoryStore()
}

func testStoreGetNonExistent(t *testing.T, s Store) {
	_, err := s.Get([]byte("sparse"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func testStorePutGetDelete(t *testing.T, s Store) {
	var (
		key   = []byte("sparse")
		value = []byte("rocks")
	)
	require.NoError(t, s.Put(key, value))
	newVal, err := s.Get(key)
	require.NoError(t, err)
	require.Equal(t, value, newVal)

	require.NoError(t, s.Delete(key))
	_, err = s.Get(key)
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.NoError(t, s.Delete(key))
}

func testStoreSeek(t *testing.T, s Store) {
	kvs := []keyValue{
		{[]byte("10"), []byte("bar")},
		{[]byte("11"), []byte("bara")},
		{[]byte("20"), []byte("barb")},
		{[]byte("21"), []byte("barc")},
		{[]byte("22"), []byte("bard")},
		{[]byte("30"), []byte("bare")},
	}
	for i := len(kvs) - 1; i >= 0; i-- {
		require.NoError(t, s.Put(kvs[i].Key, kvs[i].Value))
	}
	seek := func(prefix []byte, limit int) []keyValue {
		var res []keyValue
		require.NoError(t, s.Seek(prefix, func(k, v []byte) bool {
			res = append(res, keyValue{bytes.Clone(k), bytes.Clone(v)})
			return limit == 0 || len(res) < limit
		}))
		return res
	}
	require.Equal(t, kvs[2:5], seek([]byte("2"), 0))
	require.Equal(t, kvs[2:4], seek([]byte("2"), 2))
	require.Equal(t, kvs, seek(nil, 0))
	require.Nil(t, seek([]byte("4"), 0))
}

func testVersion(t *testing.T, s Store) {
	_, err := Version(s)
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.NoError(t, PutVersion(s, "0.1.0"))
	v, err := Version(s)
	require.NoError(t, err)
	require.Equal(t, "0.1.0", v)
}

func TestAllDBs(t *testing.T) {
	var dbSetups = []dbSetup{
		{"BoltDB", newBoltStoreForTesting},
		{"LevelDB", newLevelDBForTesting},
		{"Memory", newMemoryStoreForTesting},
	}
	var tests = map[string]dbTestFunction{
		"GetNonExistent": testStoreGetNonExistent,
		"PutGetDelete":   testStorePutGetDelete,
		"Seek":           testStoreSeek,
		"Version":        testVersion,
	}
	for _, db := range dbSetups {
		for name, test := range tests {
			t.Run(db.name+"/"+name, func(t *testing.T) {
				s := db.create(t)
				test(t, s)
				require.NoError(t, s.Close())
			})
		}
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore(dbconfig.DBConfiguration{Type: dbconfig.InMemoryDB})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)

	s, err = NewStore(dbconfig.DBConfiguration{
		Type:          dbconfig.BoltDB,
		BoltDBOptions: dbconfig.BoltDBOptions{FilePath: filepath.Join(t.TempDir(), "sub", "txs.db")},
	})
	require.NoError(t, err)
	require.IsType(t, &BoltDBStore{}, s)
	require.NoError(t, s.Close())

	_, err = NewStore(dbconfig.DBConfiguration{Type: "redis"})
	require.Error(t, err)
}
