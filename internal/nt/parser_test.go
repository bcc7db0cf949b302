package nt

import (
	"strings"
	"testing"

	"github.com/quetzaldb/quetzal/pkg/rdf"
)

func TestParseBasicTriples(t *testing.T) {
	input := `# people
<http://example.org/alice> <http://example.org/knows> <http://example.org/bob> .

<http://example.org/alice> <http://example.org/name> "Alice" .
_:b1 <http://example.org/age> "33"^^<http://www.w3.org/2001/XMLSchema#integer> . # trailing comment
<http://example.org/bob> <http://example.org/greets> "bonjour"@fr .
`
	triples, err := ParseAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	if len(triples) != 4 {
		t.Fatalf("parsed %d triples, want 4", len(triples))
	}

	if s, ok := triples[0].Subject.(*rdf.IRI); !ok || s.Value != "http://example.org/alice" {
		t.Errorf("subject = %v", triples[0].Subject)
	}
	if o, ok := triples[1].Object.(*rdf.Literal); !ok || o.Value != "Alice" || o.Language != "" || o.Datatype != nil {
		t.Errorf("object = %v", triples[1].Object)
	}
	if b, ok := triples[2].Subject.(*rdf.BlankNode); !ok || b.ID != "b1" {
		t.Errorf("blank subject = %v", triples[2].Subject)
	}
	if o, ok := triples[2].Object.(*rdf.Literal); !ok || !o.Datatype.Equals(rdf.XSDInteger) {
		t.Errorf("typed object = %v", triples[2].Object)
	}
	if o, ok := triples[3].Object.(*rdf.Literal); !ok || o.Language != "fr" {
		t.Errorf("lang object = %v", triples[3].Object)
	}
}

func TestParseEscapes(t *testing.T) {
	input := `<http://example.org/s> <http://example.org/p> "tab\there\nquote\"backslash\\ café \U0001F600" .`
	triples, err := ParseAll(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseAll: %v", err)
	}
	got := triples[0].Object.(*rdf.Literal).Value
	want := "tab\there\nquote\"backslash\\ café \U0001F600"
	if got != want {
		t.Errorf("literal = %q, want %q", got, want)
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"missing dot", `<http://a> <http://b> <http://c>`},
		{"unclosed iri", `<http://a <http://b> <http://c> .`},
		{"unclosed literal", `<http://a> <http://b> "oops .`},
		{"literal subject", `"nope" <http://b> <http://c> .`},
		{"bad escape", `<http://a> <http://b> "\q" .`},
		{"trailing content", `<http://a> <http://b> <http://c> . <http://d>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseAll(strings.NewReader(tc.input)); err == nil {
				t.Errorf("input %q parsed without error", tc.input)
			}
		})
	}
}

func TestNextReportsLineNumbers(t *testing.T) {
	input := "<http://a> <http://b> <http://c> .\nbroken\n"
	p := NewParser(strings.NewReader(input))
	if _, err := p.Next(); err != nil {
		t.Fatalf("first triple: %v", err)
	}
	_, err := p.Next()
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("err = %v, want line 2 position info", err)
	}
}
