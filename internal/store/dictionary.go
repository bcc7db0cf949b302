package store

import (
	"encoding/binary"
	"fmt"

	"github.com/zeebo/xxh3"
)

// Dictionary is the persistent string dictionary. Strings are identified by a
// dense uint64 id; interning goes through an xxh3-128 hash table so the same
// string always maps to the same id.
type Dictionary struct {
	storage Storage
}

// NewDictionary creates a dictionary over the given storage.
func NewDictionary(storage Storage) *Dictionary {
	return &Dictionary{storage: storage}
}

var metaKeyNextStringID = []byte("next_string_id")

func hashKey(s string) []byte {
	h := xxh3.Hash128([]byte(s))
	key := make([]byte, 16)
	binary.BigEndian.PutUint64(key[0:8], h.Hi)
	binary.BigEndian.PutUint64(key[8:16], h.Lo)
	return key
}

func idKey(id uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, id)
	return key
}

// Lookup returns the string bytes for a dictionary id.
func (d *Dictionary) Lookup(id uint64) (string, error) {
	txn, err := d.storage.Begin(false)
	if err != nil {
		return "", err
	}
	defer txn.Rollback() //nolint:errcheck

	value, err := txn.Get(TableDictStr, idKey(id))
	if err != nil {
		return "", fmt.Errorf("dictionary lookup of id %d: %w", id, err)
	}
	return string(value), nil
}

// LookupIDInTxn returns the id already assigned to s, if any.
func (d *Dictionary) LookupIDInTxn(txn Transaction, s string) (uint64, bool, error) {
	value, err := txn.Get(TableDictHash, hashKey(s))
	if err == ErrNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return binary.BigEndian.Uint64(value), true, nil
}

// Intern returns the id for s, assigning a fresh one if the string has not
// been seen before. Only the load path writes; queries never call Intern.
func (d *Dictionary) Intern(s string) (uint64, error) {
	txn, err := d.storage.Begin(true)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback() //nolint:errcheck

	id, err := d.internInTxn(txn, s)
	if err != nil {
		return 0, err
	}
	return id, txn.Commit()
}

// InternInTxn interns s within an already-open write transaction, so bulk
// loads can batch many strings per commit.
func (d *Dictionary) InternInTxn(txn Transaction, s string) (uint64, error) {
	return d.internInTxn(txn, s)
}

func (d *Dictionary) internInTxn(txn Transaction, s string) (uint64, error) {
	hk := hashKey(s)
	if value, err := txn.Get(TableDictHash, hk); err == nil {
		return binary.BigEndian.Uint64(value), nil
	} else if err != ErrNotFound {
		return 0, err
	}

	id, err := nextSequence(txn, metaKeyNextStringID)
	if err != nil {
		return 0, err
	}
	if err := txn.Set(TableDictStr, idKey(id), []byte(s)); err != nil {
		return 0, err
	}
	if err := txn.Set(TableDictHash, hk, idKey(id)); err != nil {
		return 0, err
	}
	return id, nil
}

// nextSequence bumps a uint64 counter stored in the meta table and returns
// the pre-increment value. Ids start at 1 so id 0 never appears in payloads.
func nextSequence(txn Transaction, key []byte) (uint64, error) {
	next := uint64(1)
	if value, err := txn.Get(TableMeta, key); err == nil {
		next = binary.BigEndian.Uint64(value)
	} else if err != ErrNotFound {
		return 0, err
	}
	if err := txn.Set(TableMeta, key, idKey(next+1)); err != nil {
		return 0, err
	}
	return next, nil
}
