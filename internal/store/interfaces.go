package store

import (
	"io"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

// The stores an executing query reads from. The dictionary and catalogs are
// read-only during execution; the temp manager is per-query and never shared.

// StringDictionary maps persistent string ids to their bytes. Intern is only
// used on the load path.
type StringDictionary interface {
	Lookup(id uint64) (string, error)
	Intern(s string) (uint64, error)
}

// TempManager holds intermediate values produced by expression evaluation
// during a single query. Ids returned by the Intern* methods for datatypes
// and languages carry encoding.MaskTagManager so the printer can tell them
// apart from catalog ids.
type TempManager interface {
	InternString(s string) uint64
	LookupString(id uint64) string
	InternDatatype(iri string) uint16
	InternLanguage(tag string) uint16
	LookupDatatype(id uint16) string
	LookupLanguage(id uint16) string
}

// Catalog resolves the small ids embedded in ObjectId payloads. Datatype and
// language ids are the low 15 bits; the high bit routes to the temp manager
// and never reaches a Catalog.
type Catalog interface {
	Prefix(id uint8) string
	Datatype(id uint16) string
	Language(id uint16) string
}

// NodePrinter and EdgePrinter render path elements for PathManager.Print.
type (
	NodePrinter func(w io.Writer, node encoding.ObjectId) error
	EdgePrinter func(w io.Writer, edge encoding.ObjectId, inverse bool) error
)

// PathManager renders materialized property-path results by id.
type PathManager interface {
	Print(w io.Writer, id uint64, node NodePrinter, edge EdgePrinter) error
}
