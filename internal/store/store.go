package store

import (
	"fmt"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/pkg/rdf"
)

// Store bundles the storage-backed pieces a query executes against: the
// triple indexes, the string dictionary and the catalogs.
type Store struct {
	storage Storage
	dict    *Dictionary
	catalog *StoreCatalog
	triples *TripleStore
	encoder *Encoder
}

// Open opens (or creates) a store at path.
func Open(path string) (*Store, error) {
	storage, err := NewBadgerStorage(path)
	if err != nil {
		return nil, err
	}
	return newStore(storage)
}

// OpenInMemory creates a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	storage, err := NewInMemoryStorage()
	if err != nil {
		return nil, err
	}
	return newStore(storage)
}

func newStore(storage Storage) (*Store, error) {
	catalog, err := LoadCatalog(storage)
	if err != nil {
		storage.Close() //nolint:errcheck
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	dict := NewDictionary(storage)
	return &Store{
		storage: storage,
		dict:    dict,
		catalog: catalog,
		triples: NewTripleStore(storage),
		encoder: NewEncoder(catalog, dict),
	}, nil
}

// Dictionary returns the persistent string dictionary.
func (s *Store) Dictionary() *Dictionary {
	return s.dict
}

// Catalog returns the prefix/datatype/language catalog.
func (s *Store) Catalog() *StoreCatalog {
	return s.catalog
}

// Triples returns the triple indexes.
func (s *Store) Triples() *TripleStore {
	return s.triples
}

// InsertTriples encodes and inserts a batch of triples in one transaction.
func (s *Store) InsertTriples(triples []*rdf.Triple) error {
	txn, err := s.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() //nolint:errcheck

	var added uint64
	for _, t := range triples {
		subj, err := s.encoder.EncodeTerm(txn, t.Subject)
		if err != nil {
			return fmt.Errorf("encoding subject of %s: %w", t, err)
		}
		pred, err := s.encoder.EncodeTerm(txn, t.Predicate)
		if err != nil {
			return fmt.Errorf("encoding predicate of %s: %w", t, err)
		}
		obj, err := s.encoder.EncodeTerm(txn, t.Object)
		if err != nil {
			return fmt.Errorf("encoding object of %s: %w", t, err)
		}
		// Triples already stored (or repeated in this batch) are not counted again.
		if _, err := txn.Get(TableSPO, encodeTripleKey(subj, pred, obj)); err == nil {
			continue
		} else if err != ErrNotFound {
			return err
		}
		if err := s.triples.InsertInTxn(txn, Triple{subj, pred, obj}); err != nil {
			return err
		}
		added++
	}
	if err := s.triples.BumpCount(txn, added); err != nil {
		return err
	}
	return txn.Commit()
}

// EncodeTermReadOnly encodes a term for use in a query pattern without
// interning anything. found is false when the term is absent from the store
// and therefore cannot match any triple.
func (s *Store) EncodeTermReadOnly(term rdf.Term) (oid encoding.ObjectId, found bool, err error) {
	txn, err := s.storage.Begin(false)
	if err != nil {
		return encoding.NullObjectId, false, err
	}
	defer txn.Rollback() //nolint:errcheck

	return s.encoder.EncodeTermReadOnly(txn, term)
}

// Match scans the best index for a pattern.
func (s *Store) Match(p Pattern) (*TripleIterator, error) {
	return s.triples.Match(p)
}

// Count returns the number of stored triples.
func (s *Store) Count() (uint64, error) {
	return s.triples.Count()
}

// Sync flushes storage to disk.
func (s *Store) Sync() error {
	return s.storage.Sync()
}

// Close closes the underlying storage.
func (s *Store) Close() error {
	return s.storage.Close()
}
