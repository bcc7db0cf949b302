package store

import (
	"fmt"

	"golang.org/x/text/language"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

// StoreCatalog is the persistent catalog of IRI prefixes, datatype IRIs and
// language tags. It is loaded fully into memory when the store opens and is
// read-only during query execution; new entries are only added on the load
// path and written back through to storage.
type StoreCatalog struct {
	storage Storage

	prefixes  []string
	datatypes []string
	languages []string

	prefixIDs   map[string]uint8
	datatypeIDs map[string]uint16
	languageIDs map[string]uint16
}

// LoadCatalog reads the persisted catalog tables into memory. A fresh store
// yields a catalog whose prefix 0 is the empty string, so unprefixed IRIs
// always have a valid prefix id.
func LoadCatalog(storage Storage) (*StoreCatalog, error) {
	c := &StoreCatalog{
		storage:     storage,
		prefixIDs:   make(map[string]uint8),
		datatypeIDs: make(map[string]uint16),
		languageIDs: make(map[string]uint16),
	}

	txn, err := storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer txn.Rollback() //nolint:errcheck

	load := func(table Table, add func(string)) error {
		it, err := txn.Scan(table, nil, nil)
		if err != nil {
			return err
		}
		defer it.Close() //nolint:errcheck
		for it.Next() {
			value, err := txn.Get(table, it.Key())
			if err != nil {
				return err
			}
			add(string(value))
		}
		return nil
	}

	if err := load(TableCatalogPrefix, func(s string) {
		c.prefixIDs[s] = uint8(len(c.prefixes))
		c.prefixes = append(c.prefixes, s)
	}); err != nil {
		return nil, err
	}
	if err := load(TableCatalogDatatype, func(s string) {
		c.datatypeIDs[s] = uint16(len(c.datatypes))
		c.datatypes = append(c.datatypes, s)
	}); err != nil {
		return nil, err
	}
	if err := load(TableCatalogLanguage, func(s string) {
		c.languageIDs[s] = uint16(len(c.languages))
		c.languages = append(c.languages, s)
	}); err != nil {
		return nil, err
	}

	if len(c.prefixes) == 0 {
		if _, err := c.AddPrefix(""); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Prefix resolves an 8-bit prefix id.
func (c *StoreCatalog) Prefix(id uint8) string {
	if int(id) >= len(c.prefixes) {
		return ""
	}
	return c.prefixes[id]
}

// Datatype resolves a 15-bit datatype id.
func (c *StoreCatalog) Datatype(id uint16) string {
	if int(id) >= len(c.datatypes) {
		return ""
	}
	return c.datatypes[id]
}

// Language resolves a 15-bit language id.
func (c *StoreCatalog) Language(id uint16) string {
	if int(id) >= len(c.languages) {
		return ""
	}
	return c.languages[id]
}

// PrefixID returns the id of a known prefix.
func (c *StoreCatalog) PrefixID(prefix string) (uint8, bool) {
	id, ok := c.prefixIDs[prefix]
	return id, ok
}

// DatatypeID returns the id of a known datatype IRI.
func (c *StoreCatalog) DatatypeID(iri string) (uint16, bool) {
	id, ok := c.datatypeIDs[iri]
	return id, ok
}

// LanguageID returns the id of a known language tag.
func (c *StoreCatalog) LanguageID(tag string) (uint16, bool) {
	id, ok := c.languageIDs[tag]
	return id, ok
}

// Prefixes exposes the prefix table for longest-match encoding.
func (c *StoreCatalog) Prefixes() []string {
	return c.prefixes
}

// AddPrefix interns an IRI prefix, persisting it. At most 256 prefixes fit
// the 8-bit id space.
func (c *StoreCatalog) AddPrefix(prefix string) (uint8, error) {
	if id, ok := c.prefixIDs[prefix]; ok {
		return id, nil
	}
	if len(c.prefixes) >= 256 {
		return 0, fmt.Errorf("prefix table full, cannot add %q", prefix)
	}
	id := uint8(len(c.prefixes))
	if err := c.persist(TableCatalogPrefix, uint16(id), prefix); err != nil {
		return 0, err
	}
	c.prefixIDs[prefix] = id
	c.prefixes = append(c.prefixes, prefix)
	return id, nil
}

// AddDatatype interns a datatype IRI. Ids are 15-bit: the high bit is
// reserved for the temp manager.
func (c *StoreCatalog) AddDatatype(iri string) (uint16, error) {
	if id, ok := c.datatypeIDs[iri]; ok {
		return id, nil
	}
	if uint16(len(c.datatypes)) >= encoding.MaskTagManager {
		return 0, fmt.Errorf("datatype table full, cannot add %q", iri)
	}
	id := uint16(len(c.datatypes))
	if err := c.persist(TableCatalogDatatype, id, iri); err != nil {
		return 0, err
	}
	c.datatypeIDs[iri] = id
	c.datatypes = append(c.datatypes, iri)
	return id, nil
}

// AddLanguage interns a BCP47 language tag, validating it first.
func (c *StoreCatalog) AddLanguage(tag string) (uint16, error) {
	if id, ok := c.languageIDs[tag]; ok {
		return id, nil
	}
	if _, err := language.Parse(tag); err != nil {
		return 0, fmt.Errorf("invalid language tag %q: %w", tag, err)
	}
	if uint16(len(c.languages)) >= encoding.MaskTagManager {
		return 0, fmt.Errorf("language table full, cannot add %q", tag)
	}
	id := uint16(len(c.languages))
	if err := c.persist(TableCatalogLanguage, id, tag); err != nil {
		return 0, err
	}
	c.languageIDs[tag] = id
	c.languages = append(c.languages, tag)
	return id, nil
}

func (c *StoreCatalog) persist(table Table, id uint16, value string) error {
	txn, err := c.storage.Begin(true)
	if err != nil {
		return err
	}
	defer txn.Rollback() //nolint:errcheck

	key := []byte{byte(id >> 8), byte(id)}
	if err := txn.Set(table, key, []byte(value)); err != nil {
		return err
	}
	return txn.Commit()
}
