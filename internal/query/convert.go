package query

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cockroachdb/apd/v3"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

// Conversions between ObjectIds and Go values during query execution. Values
// minted here (by expression evaluation) go to the per-query temp store, never
// to the persistent dictionary.

// PackSimpleString encodes a simple string produced by an expression.
func (c *QueryContext) PackSimpleString(s string) encoding.ObjectId {
	if encoding.CanInline(s, encoding.StrInlineBytes) {
		return encoding.MaskStringSimpleInlined | encoding.ObjectId(encoding.InlineString(s, encoding.StrInlineBytes))
	}
	return encoding.MaskStringSimpleTmp | encoding.ObjectId(c.Temp.InternString(s))
}

// StringValue returns the body of any string-flavored term.
func (c *QueryContext) StringValue(oid encoding.ObjectId) (string, error) {
	switch oid.GetType() {
	case encoding.MaskStringSimpleExtern, encoding.MaskStringXSDExtern:
		return c.Dict.Lookup(oid.GetValue())
	case encoding.MaskStringSimpleInlined, encoding.MaskStringXSDInlined:
		return encoding.ExtractInline(oid.GetValue(), encoding.StrInlineBytes), nil
	case encoding.MaskStringSimpleTmp, encoding.MaskStringXSDTmp:
		return c.Temp.LookupString(oid.GetValue()), nil
	case encoding.MaskStringDatatypeExtern, encoding.MaskStringLangExtern:
		return c.Dict.Lookup(uint64(oid & encoding.MaskLiteral))
	case encoding.MaskStringDatatypeInlined, encoding.MaskStringLangInlined:
		return encoding.ExtractInline(uint64(oid&encoding.MaskLiteral), encoding.StrDTInlineBytes), nil
	case encoding.MaskStringDatatypeTmp, encoding.MaskStringLangTmp:
		return c.Temp.LookupString(uint64(oid & encoding.MaskLiteral)), nil
	default:
		return "", fmt.Errorf("%w: string value of tag %#x", ErrEngineBug, uint64(oid.GetType()))
	}
}

// LiteralTagID returns the 16-bit datatype/language id of a tagged string.
func LiteralTagID(oid encoding.ObjectId) uint16 {
	return uint16(uint64(oid&encoding.MaskLiteralTag) >> 40)
}

// DatatypeString resolves a datatype id against the permanent catalog or the
// temp catalog, depending on the MaskTagManager bit.
func (c *QueryContext) DatatypeString(id uint16) string {
	if id&encoding.MaskTagManager != 0 {
		return c.Temp.LookupDatatype(id)
	}
	return c.Catalog.Datatype(id)
}

// LanguageString resolves a language id the same way.
func (c *QueryContext) LanguageString(id uint16) string {
	if id&encoding.MaskTagManager != 0 {
		return c.Temp.LookupLanguage(id)
	}
	return c.Catalog.Language(id)
}

// IRIString reassembles a full IRI from its prefix id and local part.
func (c *QueryContext) IRIString(oid encoding.ObjectId) (string, error) {
	prefix := c.Catalog.Prefix(uint8(uint64(oid&encoding.MaskIRIPrefix) >> 48))
	var local string
	var err error
	switch oid.GetType() {
	case encoding.MaskIRIExtern:
		local, err = c.Dict.Lookup(uint64(oid & encoding.MaskIRIContent))
		if err != nil {
			return "", err
		}
	case encoding.MaskIRIInlined:
		local = encoding.ExtractInline(uint64(oid&encoding.MaskIRIContent), encoding.IRIInlineBytes)
	case encoding.MaskIRITmp:
		local = c.Temp.LookupString(uint64(oid & encoding.MaskIRIContent))
	default:
		return "", fmt.Errorf("%w: IRI value of tag %#x", ErrEngineBug, uint64(oid.GetType()))
	}
	return prefix + local, nil
}

// PackDouble encodes a binary64 value produced by an expression.
func (c *QueryContext) PackDouble(d float64) encoding.ObjectId {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(d))
	return encoding.MaskDoubleTmp | encoding.ObjectId(c.Temp.InternString(string(buf[:])))
}

// UnpackDouble decodes a stored or temp binary64 value.
func (c *QueryContext) UnpackDouble(oid encoding.ObjectId) (float64, error) {
	var raw string
	var err error
	switch oid.GetType() {
	case encoding.MaskDoubleExtern:
		raw, err = c.Dict.Lookup(oid.GetValue())
		if err != nil {
			return 0, err
		}
	case encoding.MaskDoubleTmp:
		raw = c.Temp.LookupString(oid.GetValue())
	default:
		return 0, fmt.Errorf("%w: double value of tag %#x", ErrEngineBug, uint64(oid.GetType()))
	}
	if len(raw) != 8 {
		return 0, fmt.Errorf("%w: double payload of %d bytes", ErrEngineBug, len(raw))
	}
	return math.Float64frombits(binary.LittleEndian.Uint64([]byte(raw))), nil
}

// UnpackDecimal decodes any decimal representation into an apd value.
func (c *QueryContext) UnpackDecimal(oid encoding.ObjectId) (*apd.Decimal, error) {
	switch oid.GetType() {
	case encoding.MaskDecimalInlined:
		d := encoding.NewDecimalInlined(oid.GetValue())
		dec := apd.New(int64(d.Significand), -int32(d.Scale))
		dec.Negative = d.Negative
		return dec, nil
	case encoding.MaskDecimalExtern:
		text, err := c.Dict.Lookup(oid.GetValue())
		if err != nil {
			return nil, err
		}
		dec, _, err := apd.NewFromString(text)
		return dec, err
	case encoding.MaskDecimalTmp:
		dec, _, err := apd.NewFromString(c.Temp.LookupString(oid.GetValue()))
		return dec, err
	default:
		return nil, fmt.Errorf("%w: decimal value of tag %#x", ErrEngineBug, uint64(oid.GetType()))
	}
}

// PackDecimal encodes an expression-produced decimal, inlined when it fits.
func (c *QueryContext) PackDecimal(dec *apd.Decimal) encoding.ObjectId {
	reduced := new(apd.Decimal)
	reduced.Set(dec)
	reduced.Reduce(reduced)

	if neg, significand, scale, ok := inlineDecimalComponents(reduced); ok {
		return encoding.PackDecimalInlined(neg, significand, scale)
	}
	return encoding.MaskDecimalTmp | encoding.ObjectId(c.Temp.InternString(reduced.Text('f')))
}

// PackInteger encodes an integer result, falling back to a decimal when the
// magnitude exceeds the 56-bit integer payload.
func (c *QueryContext) PackInteger(i int64) encoding.ObjectId {
	if encoding.CanPackInt(i) {
		return encoding.PackInt(i)
	}
	return c.PackDecimal(apd.New(i, 0))
}

func inlineDecimalComponents(dec *apd.Decimal) (neg bool, significand uint64, scale int, ok bool) {
	if dec.Exponent > 0 {
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
