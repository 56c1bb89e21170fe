/*
Package txstore keeps serialized contract invocation transactions between
command runs, so that a transaction built and simulated once can be signed,
sent or polled later.
*/
package txstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/anataliocs/do-math/pkg/core/storage"
	"github.com/google/uuid"
)

// ErrNotFound is returned for unknown transaction IDs.
var ErrNotFound = errors.New("transaction not found")

// Entry is a stored transaction.
type Entry struct {
	ID uuid.UUID `json:"id"`
	// Method is the contract function invoked.
	Method string `json:"method"`
	// Status is the transaction status at the moment it was saved.
	Status  string          `json:"status"`
	Updated time.Time       `json:"updated"`
	Data    json.RawMessage `json:"data"`
}

// Store is a pending transaction storage on top of storage.Store.
type Store struct {
	st storage.Store
}

// New creates a Store using the given backend.
func New(st storage.Store) *Store {
	return &Store{st: st}
}

func key(id uuid.UUID) []byte {
	return append(storage.STPendingTx.Bytes(), id[:]...)
}

// Add saves a new transaction and returns its ID.
func (s *Store) Add(method string, status fmt.Stringer, data []byte) (uuid.UUID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return uuid.Nil, err
	}
	return id, s.Update(id, method, status, data)
}

// Update replaces the transaction with the given ID.
func (s *Store) Update(id uuid.UUID, method string, status fmt.Stringer, data []byte) error {
	if !json.Valid(data) {
		return errors.New("transaction is not a JSON document")
	}
	b, err := json.Marshal(Entry{
		ID:      id,
		Method:  method,
		Status:  status.String(),
		Updated: time.Now().UTC(),
		Data:    data,
	})
	if err != nil {
		return err
	}
	return s.st.Put(key(id), b)
}

// Get returns the transaction with the given ID.
func (s *Store) Get(id uuid.UUID) (*Entry, error) {
	b, err := s.st.Get(key(id))
	if errors.Is(err, storage.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	var e = new(Entry)
	if err := json.Unmarshal(b, e); err != nil {
		return nil, fmt.Errorf("corrupted transaction %s: %w", id, err)
	}
	return e, nil
}

// Delete removes the transaction.
func (s *Store) Delete(id uuid.UUID) error {
	return s.st.Delete(key(id))
}

// List returns all stored transactions, the most recently updated first.
func (s *Store) List() ([]Entry, error) {
	var (
		res  []Entry
		derr error
	)
	err := s.st.Seek(storage.STPendingTx.Bytes(), func(k, v []byte) bool {
		var e Entry
		if derr = json.Unmarshal(v, &e); derr != nil {
			derr = fmt.Errorf("corrupted transaction %x: %w", k[1:], derr)
			return false
		}
		res = append(res, e)
		return true
	})
	if err == nil {
		err = derr
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Updated.After(res[j].Updated) })
	return res, nil
}
