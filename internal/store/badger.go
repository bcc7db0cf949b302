package store

import (
	"bytes"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// Storage is the key-value layer underneath the triple indexes, the string
// dictionary and the persisted catalogs.
type Storage interface {
	Begin(writable bool) (Transaction, error)
	Sync() error
	Close() error
}

// Transaction is a unit of work against Storage.
type Transaction interface {
	Get(table Table, key []byte) ([]byte, error)
	Set(table Table, key, value []byte) error
	Delete(table Table, key []byte) error
	Scan(table Table, start, end []byte) (Iterator, error)
	Commit() error
	Rollback() error
}

// Iterator walks keys in a table in byte order.
type Iterator interface {
	Next() bool
	Key() []byte
	Close() error
}

// BadgerStorage implements Storage using BadgerDB.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens a BadgerDB-backed storage at path.
func NewBadgerStorage(path string) (*BadgerStorage, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// NewInMemoryStorage opens a storage that lives only as long as the process.
// Used by tests and by the CLI when the config selects an in-memory store.
func NewInMemoryStorage() (*BadgerStorage, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory badger db: %w", err)
	}
	return &BadgerStorage{db: db}, nil
}

// Begin starts a new transaction.
func (s *BadgerStorage) Begin(writable bool) (Transaction, error) {
	return &badgerTxn{txn: s.db.NewTransaction(writable), writable: writable}, nil
}

// Sync flushes writes to disk.
func (s *BadgerStorage) Sync() error {
	return s.db.Sync()
}

// Close closes the storage.
func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

type badgerTxn struct {
	txn      *badger.Txn
	writable bool
}

func (t *badgerTxn) Get(table Table, key []byte) ([]byte, error) {
	item, err := t.txn.Get(PrefixKey(table, key))
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var value []byte
	if err := item.Value(func(val []byte) error {
		value = append([]byte{}, val...)
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

func (t *badgerTxn) Set(table Table, key, value []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	return t.txn.Set(PrefixKey(table, key), value)
}

func (t *badgerTxn) Delete(table Table, key []byte) error {
	if !t.writable {
		return ErrTransactionRO
	}
	return t.txn.Delete(PrefixKey(table, key))
}

// Scan iterates over keys in [start, end) within a table. A nil start scans
// from the beginning of the table; a nil end scans to its end.
func (t *badgerTxn) Scan(table Table, start, end []byte) (Iterator, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false

	tablePrefix := TablePrefix(table)
	seekKey := tablePrefix
	if start != nil {
		seekKey = PrefixKey(table, start)
	}
	opts.Prefix = tablePrefix

	var endKey []byte
	if end != nil {
		endKey = PrefixKey(table, end)
	}

	return &badgerIterator{
		it:      t.txn.NewIterator(opts),
		prefix:  tablePrefix,
		seekKey: seekKey,
		endKey:  endKey,
	}, nil
}

func (t *badgerTxn) Commit() error {
	return t.txn.Commit()
}

func (t *badgerTxn) Rollback() error {
	t.txn.Discard()
	return nil
}

type badgerIterator struct {
	it      *badger.Iterator
	prefix  []byte
	seekKey []byte
	endKey  []byte
	started bool
}

func (i *badgerIterator) Next() bool {
	if !i.started {
		i.it.Seek(i.seekKey)
		i.started = true
	} else if i.it.Valid() {
		i.it.Next()
	}
	if !i.it.Valid() {
		return false
	}
	if i.endKey != nil && bytes.Compare(i.it.Item().Key(), i.endKey) >= 0 {
		return false
	}
	return true
}

// Key returns the current key with the table prefix stripped.
func (i *badgerIterator) Key() []byte {
	return i.it.Item().KeyCopy(nil)[len(i.prefix):]
}

func (i *badgerIterator) Close() error {
	i.it.Close()
	return nil
}
