package storage

import (
	"errors"
	"fmt"

	"github.com/anataliocs/do-math/pkg/core/storage/dbconfig"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// KeyPrefix constants.
const (
	// STPendingTx is used for serialized transactions awaiting to be
	// signed or confirmed.
	STPendingTx KeyPrefix = 0x10
	SYSVersion  KeyPrefix = 0xf0
)

// ErrKeyNotFound is an error returned by Store implementations
// when a certain key is not found.
var ErrKeyNotFound = errors.New("key not found")

type (
	// Store is the underlying KV backend.
	Store interface {
		Get([]byte) ([]byte, error)
		Put(k, v []byte) error
		// Delete removes the key, it's not an error if there is no such key.
		Delete([]byte) error
		// Seek iterates over all keys with the given prefix in ascending
		// order until f returns false. Key and value slices are only valid
		// until the next call to f and should not be modified.
		Seek(prefix []byte, f func(k, v []byte) bool) error
		Close() error
	}

	// KeyPrefix is a constant byte added as a prefix for each key
	// stored.
	KeyPrefix uint8
)

// Bytes returns the bytes representation of KeyPrefix.
func (k KeyPrefix) Bytes() []byte {
	return []byte{byte(k)}
}

func seekRange(prefix []byte) *util.Range {
	return util.BytesPrefix(prefix)
}

// NewStore creates storage with preselected in configuration database type.
func NewStore(cfg dbconfig.DBConfiguration) (Store, error) {
	var store Store
	var err error
	switch cfg.Type {
	case dbconfig.LevelDB:
		store, err = NewLevelDBStore(cfg.LevelDBOptions)
	case dbconfig.InMemoryDB, "":
		store = NewMemoryStore()
	case dbconfig.BoltDB:
		store, err = NewBoltDBStore(cfg.BoltDBOptions)
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	return store, err
}

// Version returns the storage format version.
func Version(s Store) (string, error) {
	version, err := s.Get(SYSVersion.Bytes())
	return string(version), err
}

// PutVersion stores the storage format version.
func PutVersion(s Store, v string) error {
	return s.Put(SYSVersion.Bytes(), []byte(v))
}
