package store

import (
	"encoding/binary"
	"fmt"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

// TripleStore holds dictionary-encoded triples in three index permutations,
// so any combination of bound positions can be answered with one prefix scan.
type TripleStore struct {
	storage Storage
}

// NewTripleStore creates a triple store over the given storage.
func NewTripleStore(storage Storage) *TripleStore {
	return &TripleStore{storage: storage}
}

var metaKeyTripleCount = []byte("triple_count")

// Triple is a subject/predicate/object tuple of encoded terms.
type Triple [3]encoding.ObjectId

func encodeTripleKey(a, b, c encoding.ObjectId) []byte {
	key := make([]byte, 24)
	binary.BigEndian.PutUint64(key[0:8], uint64(a))
	binary.BigEndian.PutUint64(key[8:16], uint64(b))
	binary.BigEndian.PutUint64(key[16:24], uint64(c))
	return key
}

func decodeTripleKey(key []byte) (a, b, c encoding.ObjectId, err error) {
	if len(key) != 24 {
		return 0, 0, 0, fmt.Errorf("malformed triple key of %d bytes", len(key))
	}
	a = encoding.ObjectId(binary.BigEndian.Uint64(key[0:8]))
	b = encoding.ObjectId(binary.BigEndian.Uint64(key[8:16]))
	c = encoding.ObjectId(binary.BigEndian.Uint64(key[16:24]))
	return a, b, c, nil
}

// InsertInTxn writes one triple into all three indexes within an open write
// transaction. Load batches commit many triples at once.
func (s *TripleStore) InsertInTxn(txn Transaction, t Triple) error {
	empty := []byte{}
	if err := txn.Set(TableSPO, encodeTripleKey(t[0], t[1], t[2]), empty); err != nil {
		return err
	}
	if err := txn.Set(TablePOS, encodeTripleKey(t[1], t[2], t[0]), empty); err != nil {
		return err
	}
	return txn.Set(TableOSP, encodeTripleKey(t[2], t[0], t[1]), empty)
}

// Insert writes one triple in its own transaction.
func (s *TripleStore) Insert(t Triple) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() //nolint:errcheck

	if err := s.InsertInTxn(txn, t); err != nil {
		return err
	}
	return txn.Commit()
}

// Pattern is a triple pattern; NullObjectId marks an unbound position.
type Pattern [3]encoding.ObjectId

// selectIndex picks the index permutation whose key order puts the bound
// positions first, and the bound prefix to scan with.
func selectIndex(p Pattern) (table Table, prefix []encoding.ObjectId) {
	s := !p[0].IsNull()
	pr := !p[1].IsNull()
	o := !p[2].IsNull()

	switch {
	case s && pr && o:
		return TableSPO, []encoding.ObjectId{p[0], p[1], p[2]}
	case s && pr:
		return TableSPO, []encoding.ObjectId{p[0], p[1]}
	case s && o:
		return TableOSP, []encoding.ObjectId{p[2], p[0]}
	case s:
		return TableSPO, []encoding.ObjectId{p[0]}
	case pr && o:
		return TablePOS, []encoding.ObjectId{p[1], p[2]}
	case pr:
		return TablePOS, []encoding.ObjectId{p[1]}
	case o:
		return TableOSP, []encoding.ObjectId{p[2]}
	default:
		return TableSPO, nil
	}
}

// Match scans the best index for the pattern. The returned iterator yields
// triples in the scan order of that index, which is deterministic for a
// given store state.
func (s *TripleStore) Match(p Pattern) (*TripleIterator, error) {
	table, boundPrefix := selectIndex(p)

	var start, end []byte
	if len(boundPrefix) > 0 {
		start = make([]byte, 0, len(boundPrefix)*8)
		for _, oid := range boundPrefix {
			var buf [8]byte
			binary.BigEndian.PutUint64(buf[:], uint64(oid))
			start = append(start, buf[:]...)
		}
		end = prefixEnd(start)
	}

	txn, err := s.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	it, err := txn.Scan(table, start, end)
	if err != nil {
		txn.Rollback() //nolint:errcheck
		return nil, err
	}
	return &TripleIterator{txn: txn, it: it, table: table}, nil
}

// prefixEnd returns the smallest key greater than every key starting with
// prefix, or nil when the prefix is all 0xFF.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		if end[i] != 0xFF {
			end[i]++
			return end[:i+1]
		}
	}
	return nil
}

// Count returns the number of triples in the store.
func (s *TripleStore) Count() (uint64, error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return 0, err
	}
	defer txn.Rollback() //nolint:errcheck

	value, err := txn.Get(TableMeta, metaKeyTripleCount)
	if err == ErrNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(value), nil
}

// BumpCount adds n to the persisted triple count within a load transaction.
func (s *TripleStore) BumpCount(txn Transaction, n uint64) error {
	count := uint64(0)
	if value, err := txn.Get(TableMeta, metaKeyTripleCount); err == nil {
		count = binary.BigEndian.Uint64(value)
	} else if err != ErrNotFound {
		return err
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], count+n)
	return txn.Set(TableMeta, metaKeyTripleCount, buf[:])
}

// TripleIterator yields triples from one index scan.
type TripleIterator struct {
	txn   Transaction
	it    Iterator
	table Table
	cur   Triple
	err   error
}

// Next advances the scan. The triple is reordered back to s/p/o regardless
// of which index served it.
func (ti *TripleIterator) Next() bool {
	if ti.err != nil || !ti.it.Next() {
		return false
	}
	a, b, c, err := decodeTripleKey(ti.it.Key())
	if err != nil {
		ti.err = err
		return false
	}
	switch ti.table {
	case TableSPO:
		ti.cur = Triple{a, b, c}
	case TablePOS:
		ti.cur = Triple{c, a, b}
	case TableOSP:
		ti.cur = Triple{b, c, a}
	}
	return true
}

// Triple returns the current triple.
func (ti *TripleIterator) Triple() Triple {
	return ti.cur
}

// Err reports a decoding failure during the scan.
func (ti *TripleIterator) Err() error {
	return ti.err
}

// Close releases the scan and its read transaction.
func (ti *TripleIterator) Close() error {
	if err := ti.it.Close(); err != nil {
		ti.txn.Rollback() //nolint:errcheck
		return err
	}
	return ti.txn.Rollback()
}
