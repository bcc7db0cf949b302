package query

import (
	"fmt"
	"io"
	"strconv"

	"github.com/quetzaldb/quetzal/internal/encoding"
)

const (
	xsdStringIRI  = "http://www.w3.org/2001/XMLSchema#string"
	xsdBooleanIRI = "http://www.w3.org/2001/XMLSchema#boolean"
)

// Printer renders ObjectIds in their canonical N-Triples / SPARQL-TSV form.
// Print takes two sinks over the same stream: w receives structural text
// (quotes, angle brackets, datatype suffixes) verbatim, ew receives literal
// bodies and is expected to escape them for the output format.
type Printer struct {
	ctx *QueryContext
}

// NewPrinter creates a printer over a query context.
func NewPrinter(ctx *QueryContext) *Printer {
	return &Printer{ctx: ctx}
}

// Print writes the canonical form of oid. A NULL or unrecognized tag is an
// ErrEngineBug: the caller must filter NULLs before printing.
func (p *Printer) Print(w, ew io.Writer, oid encoding.ObjectId) error {
	switch oid.GetType() {
	case encoding.MaskAnonInlined:
		_, err := fmt.Fprintf(w, "_:b%d", oid.GetValue())
		return err
	case encoding.MaskAnonTmp:
		_, err := fmt.Fprintf(w, "_:c%d", oid.GetValue())
		return err

	case encoding.MaskStringSimpleExtern, encoding.MaskStringSimpleInlined, encoding.MaskStringSimpleTmp:
		return p.printQuoted(w, ew, oid, "")
	case encoding.MaskStringXSDExtern, encoding.MaskStringXSDInlined, encoding.MaskStringXSDTmp:
		return p.printQuoted(w, ew, oid, "^^<"+xsdStringIRI+">")
	case encoding.MaskStringDatatypeExtern, encoding.MaskStringDatatypeInlined, encoding.MaskStringDatatypeTmp:
		iri := p.ctx.DatatypeString(LiteralTagID(oid))
		return p.printQuoted(w, ew, oid, "^^<"+iri+">")
	case encoding.MaskStringLangExtern, encoding.MaskStringLangInlined, encoding.MaskStringLangTmp:
		tag := p.ctx.LanguageString(LiteralTagID(oid))
		return p.printQuoted(w, ew, oid, "@"+tag)

	case encoding.MaskIRIExtern, encoding.MaskIRIInlined, encoding.MaskIRITmp:
		iri, err := p.ctx.IRIString(oid)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "<%s>", iri)
		return err

	case encoding.MaskPositiveInt, encoding.MaskNegativeInt:
		_, err := io.WriteString(w, strconv.FormatInt(encoding.UnpackInt(oid), 10))
		return err
	case encoding.MaskFloat:
		_, err := io.WriteString(w, strconv.FormatFloat(float64(encoding.UnpackFloat(oid)), 'E', -1, 32))
		return err
	case encoding.MaskDoubleExtern, encoding.MaskDoubleTmp:
		d, err := p.ctx.UnpackDouble(oid)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, strconv.FormatFloat(d, 'E', -1, 64))
		return err

	case encoding.MaskBool:
		text := "false"
		if oid == encoding.BoolTrue {
			text = "true"
		}
		_, err := io.WriteString(w, text+"^^<"+xsdBooleanIRI+">")
		return err

	case encoding.MaskDecimalInlined:
		_, err := io.WriteString(w, encoding.NewDecimalInlined(oid.GetValue()).ValueString())
		return err
	case encoding.MaskDecimalExtern, encoding.MaskDecimalTmp:
		dec, err := p.ctx.UnpackDecimal(oid)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, dec.Text('f'))
		return err

	case encoding.MaskDTDate, encoding.MaskDTTime, encoding.MaskDTDateTime, encoding.MaskDTDateTimeStamp:
		dt := encoding.NewDateTime(oid)
		if _, err := io.WriteString(w, `"`); err != nil {
			return err
		}
		if _, err := io.WriteString(ew, dt.ValueString()); err != nil {
			return err
		}
		_, err := io.WriteString(w, `"^^<`+dt.DatatypeIRI()+`>`)
		return err

	case encoding.MaskPath:
		if _, err := io.WriteString(w, "["); err != nil {
			return err
		}
		if err := p.ctx.Paths.Print(w, oid.GetValue(), p.pathNode(ew), p.pathEdge(ew)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "]")
		return err

	default:
		return fmt.Errorf("%w: printing tag %#x", ErrEngineBug, uint64(oid.GetType()))
	}
}

func (p *Printer) printQuoted(w, ew io.Writer, oid encoding.ObjectId, suffix string) error {
	body, err := p.ctx.StringValue(oid)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, `"`); err != nil {
		return err
	}
	if _, err := io.WriteString(ew, body); err != nil {
		return err
	}
	_, err = io.WriteString(w, `"`+suffix)
	return err
}

func (p *Printer) pathNode(ew io.Writer) func(io.Writer, encoding.ObjectId) error {
	return func(w io.Writer, node encoding.ObjectId) error {
		return p.Print(w, ew, node)
	}
}

// Path edges print space-separated; inverse edges carry a caret.
func (p *Printer) pathEdge(ew io.Writer) func(io.Writer, encoding.ObjectId, bool) error {
	return func(w io.Writer, edge encoding.ObjectId, inverse bool) error {
		sep := " "
		if inverse {
			sep = " ^"
		}
		if _, err := io.WriteString(w, sep); err != nil {
			return err
		}
		if err := p.Print(w, ew, edge); err != nil {
			return err
		}
		_, err := io.WriteString(w, " ")
		return err
	}
}
