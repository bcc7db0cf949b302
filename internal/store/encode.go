package store

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"github.com/quetzaldb/quetzal/internal/encoding"
	"github.com/quetzaldb/quetzal/pkg/rdf"
)

// termResolver supplies the dictionary and catalog ids an encoding needs.
// The load path interns missing entries; the query path only looks them up
// and reports absence, since a term the store has never seen cannot match.
type termResolver interface {
	stringID(s string) (id uint64, ok bool, err error)
	prefixID(prefix string) (id uint8, ok bool, err error)
	datatypeID(iri string) (id uint16, ok bool, err error)
	languageID(tag string) (id uint16, ok bool, err error)
}

type internResolver struct {
	txn     Transaction
	dict    *Dictionary
	catalog *StoreCatalog
}

func (r internResolver) stringID(s string) (uint64, bool, error) {
	id, err := r.dict.InternInTxn(r.txn, s)
	return id, err == nil, err
}

func (r internResolver) prefixID(prefix string) (uint8, bool, error) {
	id, err := r.catalog.AddPrefix(prefix)
	if err != nil {
		// Prefix table full: callers fall back to the empty prefix.
		return 0, false, nil
	}
	return id, true, nil
}

func (r internResolver) datatypeID(iri string) (uint16, bool, error) {
	id, err := r.catalog.AddDatatype(iri)
	return id, err == nil, err
}

func (r internResolver) languageID(tag string) (uint16, bool, error) {
	id, err := r.catalog.AddLanguage(tag)
	return id, err == nil, err
}

type lookupResolver struct {
	txn     Transaction
	dict    *Dictionary
	catalog *StoreCatalog
}

func (r lookupResolver) stringID(s string) (uint64, bool, error) {
	return r.dict.LookupIDInTxn(r.txn, s)
}

func (r lookupResolver) prefixID(prefix string) (uint8, bool, error) {
	id, ok := r.catalog.PrefixID(prefix)
	return id, ok, nil
}

func (r lookupResolver) datatypeID(iri string) (uint16, bool, error) {
	id, ok := r.catalog.DatatypeID(iri)
	return id, ok, nil
}

func (r lookupResolver) languageID(tag string) (uint16, bool, error) {
	id, ok := r.catalog.LanguageID(tag)
	return id, ok, nil
}

// Encoder turns textual RDF terms into their ObjectId encoding. It always
// picks the most compact representation: inline when the value fits the
// category's byte budget, dictionary-backed otherwise.
type Encoder struct {
	catalog *StoreCatalog
	dict    *Dictionary

	anonIDs  map[string]uint64
	nextAnon uint64
}

// NewEncoder creates an encoder over the store's catalog and dictionary.
func NewEncoder(catalog *StoreCatalog, dict *Dictionary) *Encoder {
	return &Encoder{
		catalog: catalog,
		dict:    dict,
		anonIDs: make(map[string]uint64),
	}
}

// EncodeTerm encodes a term within an open write transaction, interning
// dictionary strings and catalog entries as needed.
func (e *Encoder) EncodeTerm(txn Transaction, term rdf.Term) (encoding.ObjectId, error) {
	r := internResolver{txn: txn, dict: e.dict, catalog: e.catalog}
	oid, _, err := e.encode(r, term, true)
	return oid, err
}

// EncodeTermReadOnly encodes a term without interning anything. found is
// false when the term cannot appear in any stored triple.
func (e *Encoder) EncodeTermReadOnly(txn Transaction, term rdf.Term) (oid encoding.ObjectId, found bool, err error) {
	r := lookupResolver{txn: txn, dict: e.dict, catalog: e.catalog}
	return e.encode(r, term, false)
}

func (e *Encoder) encode(r termResolver, term rdf.Term, mint bool) (encoding.ObjectId, bool, error) {
	switch t := term.(type) {
	case *rdf.IRI:
		return e.encodeIRI(r, t.Value)
	case *rdf.BlankNode:
		oid, ok := e.encodeBlankNode(t.ID, mint)
		return oid, ok, nil
	case *rdf.Literal:
		return e.encodeLiteral(r, t)
	default:
		return encoding.NullObjectId, false, fmt.Errorf("unknown term type %T", term)
	}
}

// splitIRI separates an IRI into a namespace ending at the last '#' or '/'
// and a local part. The namespace becomes a catalog prefix.
func splitIRI(iri string) (prefix, local string) {
	if i := strings.LastIndexAny(iri, "#/"); i >= 0 {
		return iri[:i+1], iri[i+1:]
	}
	return "", iri
}

func (e *Encoder) encodeIRI(r termResolver, iri string) (encoding.ObjectId, bool, error) {
	prefix, local := splitIRI(iri)
	prefixID, ok, err := r.prefixID(prefix)
	if err != nil {
		return encoding.NullObjectId, false, err
	}
	if !ok {
		// Unknown or unstorable prefix: the IRI can only live under the
		// empty prefix with the whole IRI as its local part.
		prefixID, local = 0, iri
	}
	prefixBits := encoding.ObjectId(prefixID) << 48

	if encoding.CanInline(local, encoding.IRIInlineBytes) {
		payload := encoding.InlineString(local, encoding.IRIInlineBytes)
		return encoding.MaskIRIInlined | prefixBits | encoding.ObjectId(payload), true, nil
	}

	id, ok, err := r.stringID(local)
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	if id > uint64(encoding.MaskIRIContent) {
		return encoding.NullObjectId, false, fmt.Errorf("dictionary id %d exceeds IRI payload", id)
	}
	return encoding.MaskIRIExtern | prefixBits | encoding.ObjectId(id), true, nil
}

func (e *Encoder) encodeBlankNode(label string, mint bool) (encoding.ObjectId, bool) {
	if num, err := strconv.ParseUint(label, 10, 56); err == nil {
		if num >= e.nextAnon {
			e.nextAnon = num + 1
		}
		return encoding.MaskAnonInlined | encoding.ObjectId(num), true
	}
	id, ok := e.anonIDs[label]
	if !ok {
		if !mint {
			return encoding.NullObjectId, false
		}
		id = e.nextAnon
		e.nextAnon++
		e.anonIDs[label] = id
	}
	return encoding.MaskAnonInlined | encoding.ObjectId(id), true
}

func (e *Encoder) encodeLiteral(r termResolver, lit *rdf.Literal) (encoding.ObjectId, bool, error) {
	if lit.Language != "" {
		return e.encodeLangString(r, lit.Value, lit.Language)
	}
	if lit.Datatype == nil {
		return e.encodeString(r, lit.Value, encoding.MaskStringSimpleInlined, encoding.MaskStringSimpleExtern)
	}

	switch lit.Datatype.Value {
	case rdf.XSDString.Value:
		return e.encodeString(r, lit.Value, encoding.MaskStringXSDInlined, encoding.MaskStringXSDExtern)
	case rdf.XSDInteger.Value:
		if i, err := strconv.ParseInt(lit.Value, 10, 64); err == nil && encoding.CanPackInt(i) {
			return encoding.PackInt(i), true, nil
		}
		return e.encodeDecimal(r, lit.Value)
	case rdf.XSDDecimal.Value:
		return e.encodeDecimal(r, lit.Value)
	case rdf.XSDFloat.Value:
		f, err := strconv.ParseFloat(lit.Value, 32)
		if err != nil {
			return encoding.NullObjectId, false, fmt.Errorf("invalid xsd:float %q: %w", lit.Value, err)
		}
		return encoding.PackFloat(float32(f)), true, nil
	case rdf.XSDDouble.Value:
		d, err := strconv.ParseFloat(lit.Value, 64)
		if err != nil {
			return encoding.NullObjectId, false, fmt.Errorf("invalid xsd:double %q: %w", lit.Value, err)
		}
		return e.encodeDouble(r, d)
	case rdf.XSDBoolean.Value:
		switch lit.Value {
		case "true", "1":
			return encoding.BoolTrue, true, nil
		case "false", "0":
			return encoding.BoolFalse, true, nil
		}
		return encoding.NullObjectId, false, fmt.Errorf("invalid xsd:boolean %q", lit.Value)
	case rdf.XSDDate.Value:
		return e.encodeTemporal(lit.Value, encoding.MaskDTDate)
	case rdf.XSDTime.Value:
		return e.encodeTemporal(lit.Value, encoding.MaskDTTime)
	case rdf.XSDDateTime.Value:
		return e.encodeTemporal(lit.Value, encoding.MaskDTDateTime)
	case rdf.XSDDateTimeStamp.Value:
		return e.encodeTemporal(lit.Value, encoding.MaskDTDateTimeStamp)
	default:
		return e.encodeDatatypeString(r, lit.Value, lit.Datatype.Value)
	}
}

func (e *Encoder) encodeString(r termResolver, s string, inlined, extern encoding.ObjectId) (encoding.ObjectId, bool, error) {
	if encoding.CanInline(s, encoding.StrInlineBytes) {
		return inlined | encoding.ObjectId(encoding.InlineString(s, encoding.StrInlineBytes)), true, nil
	}
	id, ok, err := r.stringID(s)
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	if id > uint64(encoding.ValueMask) {
		return encoding.NullObjectId, false, fmt.Errorf("dictionary id %d exceeds string payload", id)
	}
	return extern | encoding.ObjectId(id), true, nil
}

func (e *Encoder) encodeLangString(r termResolver, s, tag string) (encoding.ObjectId, bool, error) {
	langID, ok, err := r.languageID(tag)
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	return e.encodeTaggedString(r, s, langID,
		encoding.MaskStringLangInlined, encoding.MaskStringLangExtern)
}

func (e *Encoder) encodeDatatypeString(r termResolver, s, datatypeIRI string) (encoding.ObjectId, bool, error) {
	dtID, ok, err := r.datatypeID(datatypeIRI)
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	return e.encodeTaggedString(r, s, dtID,
		encoding.MaskStringDatatypeInlined, encoding.MaskStringDatatypeExtern)
}

// encodeTaggedString packs a string plus a 16-bit catalog id in bits 40-55.
func (e *Encoder) encodeTaggedString(r termResolver, s string, tagID uint16, inlined, extern encoding.ObjectId) (encoding.ObjectId, bool, error) {
	tagBits := encoding.ObjectId(tagID) << 40
	if encoding.CanInline(s, encoding.StrDTInlineBytes) {
		return inlined | tagBits | encoding.ObjectId(encoding.InlineString(s, encoding.StrDTInlineBytes)), true, nil
	}
	id, ok, err := r.stringID(s)
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	if id > uint64(encoding.MaskLiteral) {
		return encoding.NullObjectId, false, fmt.Errorf("dictionary id %d exceeds tagged string payload", id)
	}
	return extern | tagBits | encoding.ObjectId(id), true, nil
}

func (e *Encoder) encodeDouble(r termResolver, d float64) (encoding.ObjectId, bool, error) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(d))
	id, ok, err := r.stringID(string(buf[:]))
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	return encoding.MaskDoubleExtern | encoding.ObjectId(id), true, nil
}

func (e *Encoder) encodeTemporal(lexical string, kind encoding.ObjectId) (encoding.ObjectId, bool, error) {
	dt, err := encoding.ParseDateTime(lexical, kind)
	if err != nil {
		return encoding.NullObjectId, false, err
	}
	return dt.ObjectId(), true, nil
}

func (e *Encoder) encodeDecimal(r termResolver, lexical string) (encoding.ObjectId, bool, error) {
	dec, _, err := apd.NewFromString(lexical)
	if err != nil {
		return encoding.NullObjectId, false, fmt.Errorf("invalid xsd:decimal %q: %w", lexical, err)
	}
	dec.Reduce(dec)

	if neg, significand, scale, ok := decimalComponents(dec); ok {
		return encoding.PackDecimalInlined(neg, significand, scale), true, nil
	}

	id, ok, err := r.stringID(dec.Text('f'))
	if err != nil || !ok {
		return encoding.NullObjectId, false, err
	}
	return encoding.MaskDecimalExtern | encoding.ObjectId(id), true, nil
}

// decimalComponents extracts the inline-layout components of a reduced
// decimal, reporting false when it does not fit.
func decimalComponents(dec *apd.Decimal) (neg bool, significand uint64, scale int, ok bool) {
	if dec.Exponent > 0 {
		// Scale the significand up so the exponent is never positive.
		scaled := new(apd.Decimal)
		if _, err := apd.BaseContext.Quantize(scaled, dec, 0); err != nil {
			return false, 0, 0, false
		}
		dec = scaled
	}
	coeff := dec.Coeff.MathBigInt()
	if !coeff.IsUint64() {
		return false, 0, 0, false
	}
	significand = coeff.Uint64()
	scale = int(-dec.Exponent)
	if !encoding.CanInlineDecimal(significand, scale) {
		return false, 0, 0, false
	}
	return dec.Negative, significand, scale, true
}
