package nt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/quetzaldb/quetzal/pkg/rdf"
)

// Parser reads N-Triples: one subject/predicate/object statement per line,
// terminated by a dot, with # comments and blank lines allowed.
type Parser struct {
	scanner *bufio.Scanner
	lineNo  int

	line string
	pos  int
}

// NewParser creates a parser over r. Lines up to 1 MiB are accepted, which
// covers long literal values in bulk exports.
func NewParser(r io.Reader) *Parser {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Parser{scanner: sc}
}

// Next returns the next triple, or io.EOF when the input is exhausted.
func (p *Parser) Next() (*rdf.Triple, error) {
	for p.scanner.Scan() {
		p.lineNo++
		p.line = p.scanner.Text()
		p.pos = 0

		p.skipSpace()
		if p.pos >= len(p.line) || p.line[p.pos] == '#' {
			continue
		}

		t, err := p.parseStatement()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.lineNo, err)
		}
		return t, nil
	}
	if err := p.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// ParseTerm parses a single standalone term: an IRI, a blank node, or a
// literal.
func ParseTerm(s string) (rdf.Term, error) {
	p := &Parser{line: strings.TrimSpace(s)}
	term, err := p.parseObject()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.line) {
		return nil, fmt.Errorf("trailing content after term")
	}
	return term, nil
}

// ParseAll reads every triple from r.
func ParseAll(r io.Reader) ([]*rdf.Triple, error) {
	p := NewParser(r)
	var out []*rdf.Triple
	for {
		t, err := p.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
}

func (p *Parser) parseStatement() (*rdf.Triple, error) {
	subject, err := p.parseSubject()
	if err != nil {
		return nil, fmt.Errorf("subject: %w", err)
	}
	p.skipSpace()

	predicate, err := p.parseIRIRef()
	if err != nil {
		return nil, fmt.Errorf("predicate: %w", err)
	}
	p.skipSpace()

	object, err := p.parseObject()
	if err != nil {
		return nil, fmt.Errorf("object: %w", err)
	}
	p.skipSpace()

	if p.pos >= len(p.line) || p.line[p.pos] != '.' {
		return nil, fmt.Errorf("expected '.' at column %d", p.pos+1)
	}
	p.pos++
	p.skipSpace()
	if p.pos < len(p.line) && p.line[p.pos] != '#' {
		return nil, fmt.Errorf("trailing content after '.' at column %d", p.pos+1)
	}
	return rdf.NewTriple(subject, predicate, object), nil
}

func (p *Parser) parseSubject() (rdf.Term, error) {
	if p.pos >= len(p.line) {
		return nil, fmt.Errorf("unexpected end of line")
	}
	switch p.line[p.pos] {
	case '<':
		return p.parseIRIRef()
	case '_':
		return p.parseBlankNode()
	}
	return nil, fmt.Errorf("unexpected character %q", p.line[p.pos])
}

func (p *Parser) parseObject() (rdf.Term, error) {
	if p.pos >= len(p.line) {
		return nil, fmt.Errorf("unexpected end of line")
	}
	switch p.line[p.pos] {
	case '<':
		return p.parseIRIRef()
	case '_':
		return p.parseBlankNode()
	case '"':
		return p.parseLiteral()
	}
	return nil, fmt.Errorf("unexpected character %q", p.line[p.pos])
}

func (p *Parser) parseIRIRef() (*rdf.IRI, error) {
	if p.pos >= len(p.line) || p.line[p.pos] != '<' {
		return nil, fmt.Errorf("expected '<'")
	}
	p.pos++
	start := p.pos
	for p.pos < len(p.line) && p.line[p.pos] != '>' {
		p.pos++
	}
	if p.pos >= len(p.line) {
		return nil, fmt.Errorf("unclosed IRI")
	}
	raw := p.line[start:p.pos]
	p.pos++
	if strings.ContainsRune(raw, '\\') {
		unescaped, err := unescape(raw)
		if err != nil {
			return nil, err
		}
		raw = unescaped
	}
	return rdf.NewIRI(raw), nil
}

func (p *Parser) parseBlankNode() (*rdf.BlankNode, error) {
	if p.pos+1 >= len(p.line) || p.line[p.pos] != '_' || p.line[p.pos+1] != ':' {
		return nil, fmt.Errorf("expected '_:'")
	}
	p.pos += 2
	start := p.pos
	for p.pos < len(p.line) && !isTermEnd(p.line[p.pos]) {
		p.pos++
	}
	if p.pos == start {
		return nil, fmt.Errorf("empty blank node label")
	}
	return rdf.NewBlankNode(p.line[start:p.pos]), nil
}

func (p *Parser) parseLiteral() (*rdf.Literal, error) {
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.line) {
		c := p.line[p.pos]
		if c == '"' {
			break
		}
		if c != '\\' {
			sb.WriteByte(c)
			p.pos++
			continue
		}
		if p.pos+1 >= len(p.line) {
			return nil, fmt.Errorf("truncated escape sequence")
		}
		consumed, err := appendEscape(&sb, p.line[p.pos:])
		if err != nil {
			return nil, err
		}
		p.pos += consumed
	}
	if p.pos >= len(p.line) {
		return nil, fmt.Errorf("unclosed string literal")
	}
	p.pos++
	value := sb.String()

	if p.pos < len(p.line) && p.line[p.pos] == '@' {
		p.pos++
		start := p.pos
		for p.pos < len(p.line) && !isTermEnd(p.line[p.pos]) {
			p.pos++
		}
		if p.pos == start {
			return nil, fmt.Errorf("empty language tag")
		}
		return rdf.NewLiteralWithLanguage(value, p.line[start:p.pos]), nil
	}
	if p.pos+1 < len(p.line) && p.line[p.pos] == '^' && p.line[p.pos+1] == '^' {
		p.pos += 2
		dt, err := p.parseIRIRef()
		if err != nil {
			return nil, fmt.Errorf("datatype: %w", err)
		}
		return rdf.NewLiteralWithDatatype(value, dt), nil
	}
	return rdf.NewLiteral(value), nil
}

// appendEscape decodes one backslash escape at the start of s and reports
// how many input bytes it consumed.
func appendEscape(sb *strings.Builder, s string) (int, error) {
	switch s[1] {
	case 't':
		sb.WriteByte('\t')
	case 'n':
		sb.WriteByte('\n')
	case 'r':
		sb.WriteByte('\r')
	case 'b':
		sb.WriteByte('\b')
	case 'f':
		sb.WriteByte('\f')
	case '"':
		sb.WriteByte('"')
	case '\'':
		sb.WriteByte('\'')
	case '\\':
		sb.WriteByte('\\')
	case 'u', 'U':
		digits := 4
		if s[1] == 'U' {
			digits = 8
		}
		if len(s) < 2+digits {
			return 0, fmt.Errorf("truncated \\%c escape", s[1])
		}
		code, err := strconv.ParseUint(s[2:2+digits], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid \\%c escape: %w", s[1], err)
		}
		sb.WriteRune(rune(code))
		return 2 + digits, nil
	default:
		return 0, fmt.Errorf("unknown escape \\%c", s[1])
	}
	return 2, nil
}

func unescape(s string) (string, error) {
	var sb strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '\\' {
			sb.WriteByte(s[i])
			i++
			continue
		}
		if i+1 >= len(s) {
			return "", fmt.Errorf("truncated escape sequence")
		}
		consumed, err := appendEscape(&sb, s[i:])
		if err != nil {
			return "", err
		}
		i += consumed
	}
	return sb.String(), nil
}

func isTermEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '.' || c == '<' || c == '"'
}

func (p *Parser) skipSpace() {
	for p.pos < len(p.line) && (p.line[p.pos] == ' ' || p.line[p.pos] == '\t') {
		p.pos++
	}
}
